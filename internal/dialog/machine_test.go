package dialog

import (
	"testing"

	"burovik/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		BaseRate:    2900,
		DefaultBand: catalog.DepthBand{Min: 30, Max: 70},
		Districts: []catalog.District{
			{Name: "Видное", Bands: []catalog.DepthBand{{Min: 20, Max: 30}}},
			{Name: "Бронницы", Bands: []catalog.DepthBand{{Min: 45, Max: 65}}},
			{Name: "Волоколамский район", Bands: []catalog.DepthBand{{Min: 30, Max: 60}}},
		},
		Sets: []catalog.EquipmentSet{
			{Name: "Адаптер №1", Components: []catalog.Component{
				{Name: "насос", Price: 25000},
				{Name: "колонка", Price: 8000},
			}},
		},
		ServiceList: []catalog.Service{
			{Name: "Монтаж кессона", Price: 19000},
			{Name: "Анализ воды", Price: 5000},
		},
	}
}

func apply(t *testing.T, m *Machine, st *State, ev Event) *Render {
	t.Helper()
	r, err := m.Apply(st, ev)
	require.NoError(t, err)
	return r
}

func TestStartShowsDistricts(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)

	r := apply(t, m, st, Event{Kind: EventStart})

	assert.Equal(t, StageDistrict, st.Stage)
	assert.Contains(t, r.Text, "Выберите район")

	// Three districts chunked two per row.
	require.Len(t, r.Keyboard, 2)
	assert.Len(t, r.Keyboard[0], 2)
	assert.Len(t, r.Keyboard[1], 1)
	assert.Equal(t, "district:0", r.Keyboard[0][0].Data)
	assert.Equal(t, "Видное", r.Keyboard[0][0].Text)
}

func TestDepthSelection(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})

	require.Equal(t, StageDepth, st.Stage)

	t.Run("Accepted", func(t *testing.T) {
		r := apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
		assert.Equal(t, StageEquipment, st.Stage)
		assert.Equal(t, 25, st.Depth)
		assert.Contains(t, r.Text, "72 500")
	})
}

func TestDepthOutOfRange(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})

	r := apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 999})

	assert.Equal(t, StageDepth, st.Stage)
	assert.Equal(t, 0, st.Depth)
	assert.Contains(t, r.Text, "недоступна")
	assert.NotEmpty(t, r.Keyboard)
}

func TestSetSelectionThenToggle(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})

	apply(t, m, st, Event{Kind: EventSelectSet, Name: "Адаптер №1"})
	assert.Equal(t, StageServices, st.Stage)
	assert.Equal(t, "Адаптер №1", st.EquipmentSet)
	assert.Equal(t, []string{"насос", "колонка"}, st.SelectedEquipment)

	// Toggling a component off a set-derived selection edits it as a
	// plain component list.
	r := apply(t, m, st, Event{Kind: EventToggleEquipment, Name: "насос"})
	assert.Empty(t, st.EquipmentSet)
	assert.Equal(t, []string{"колонка"}, st.SelectedEquipment)
	assert.Contains(t, r.Text, "8 000")
}

func TestCustomEquipmentFlow(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})

	r := apply(t, m, st, Event{Kind: EventCustomEquipment})
	assert.Equal(t, StageEquipment, st.Stage)
	assert.True(t, st.CustomEquipment)
	assert.Contains(t, r.Text, "Ничего не выбрано")

	r = apply(t, m, st, Event{Kind: EventToggleEquipment, Name: "насос"})
	assert.Equal(t, []string{"насос"}, st.SelectedEquipment)
	assert.Contains(t, r.Keyboard[0][0].Text, "✅")

	apply(t, m, st, Event{Kind: EventEquipmentDone})
	assert.Equal(t, StageServices, st.Stage)
}

func TestToggleIsIdempotentPair(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
	apply(t, m, st, Event{Kind: EventCustomEquipment})
	apply(t, m, st, Event{Kind: EventEquipmentDone})

	apply(t, m, st, Event{Kind: EventToggleService, Name: "Анализ воды"})
	assert.Equal(t, []string{"Анализ воды"}, st.SelectedServices)

	apply(t, m, st, Event{Kind: EventToggleService, Name: "Анализ воды"})
	assert.Empty(t, st.SelectedServices)
}

func TestFullFlowTotal(t *testing.T) {
	cat := &catalog.Catalog{
		BaseRate:    2900,
		DefaultBand: catalog.DepthBand{Min: 30, Max: 70},
		Districts:   []catalog.District{{Name: "Район", Bands: []catalog.DepthBand{{Min: 30, Max: 60}}}},
		Sets: []catalog.EquipmentSet{
			{Name: "К", Components: []catalog.Component{{Name: "A", Price: 1000}}},
		},
		ServiceList: []catalog.Service{{Name: "B", Price: 500}},
	}
	m := NewMachine(cat)
	st := NewState(1)

	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Район"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 40})
	apply(t, m, st, Event{Kind: EventCustomEquipment})
	apply(t, m, st, Event{Kind: EventToggleEquipment, Name: "A"})
	apply(t, m, st, Event{Kind: EventEquipmentDone})
	apply(t, m, st, Event{Kind: EventToggleService, Name: "B"})
	r := apply(t, m, st, Event{Kind: EventServicesDone})

	require.Equal(t, StageFinal, st.Stage)
	// 40*2900 + 1000 + 500
	assert.Contains(t, r.Text, "117 500")
	assert.True(t, r.Markdown)
	require.Len(t, r.Keyboard, 1)
	assert.Equal(t, "new_calc", r.Keyboard[0][0].Data)
}

func TestStaleEventsDoNotMutate(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
	apply(t, m, st, Event{Kind: EventSelectSet, Name: "Адаптер №1"})

	before := *st

	// A tap on the old district keyboard re-prompts the current screen.
	r := apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Бронницы"})
	assert.Equal(t, before.Stage, st.Stage)
	assert.Equal(t, before.District, st.District)
	assert.Contains(t, r.Text, "услуги")

	// Same for an old depth button.
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 30})
	assert.Equal(t, 25, st.Depth)
}

func TestNewCalculationResets(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
	apply(t, m, st, Event{Kind: EventSelectSet, Name: "Адаптер №1"})
	apply(t, m, st, Event{Kind: EventServicesDone})

	r := apply(t, m, st, Event{Kind: EventNewCalculation})

	assert.Equal(t, StageDistrict, st.Stage)
	assert.Empty(t, st.District)
	assert.Zero(t, st.Depth)
	assert.Empty(t, st.SelectedEquipment)
	assert.Empty(t, st.SelectedServices)
	assert.Contains(t, r.Text, "Начинаем заново")
}

func TestApplyErrors(t *testing.T) {
	m := NewMachine(fixtureCatalog())

	t.Run("NilState", func(t *testing.T) {
		_, err := m.Apply(nil, Event{Kind: EventStart})
		assert.Error(t, err)
	})

	t.Run("UnknownDistrict", func(t *testing.T) {
		st := NewState(1)
		apply(t, m, st, Event{Kind: EventStart})
		_, err := m.Apply(st, Event{Kind: EventSelectDistrict, Name: "Нет такого"})
		assert.Error(t, err)
		assert.Empty(t, st.District)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		st := NewState(1)
		_, err := m.Apply(st, Event{Kind: EventKind("bogus")})
		assert.Error(t, err)
	})
}

func TestCatalogSwapKeepsSelections(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
	apply(t, m, st, Event{Kind: EventSelectSet, Name: "Адаптер №1"})

	next := fixtureCatalog()
	next.BaseRate = 3000
	m.SetCatalog(next)

	r := apply(t, m, st, Event{Kind: EventServicesDone})
	assert.Equal(t, StageFinal, st.Stage)
	// 25*3000 + 33000
	assert.Contains(t, r.Text, "108 000")
}
