package pricing

import (
	"testing"

	"burovik/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		BaseRate:    2900,
		DefaultBand: catalog.DepthBand{Min: 30, Max: 70},
		Districts: []catalog.District{
			{Name: "Видное", Bands: []catalog.DepthBand{{Min: 20, Max: 30}}},
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

func TestDrillingCost(t *testing.T) {
	e := NewEngine(testCatalog())
	assert.Equal(t, 72500, e.DrillingCost(25))
	assert.Equal(t, 0, e.DrillingCost(0))
}

func TestEquipmentCost(t *testing.T) {
	e := NewEngine(testCatalog())

	t.Run("Set", func(t *testing.T) {
		sel := Selection{EquipmentSet: "Адаптер №1"}
		assert.Equal(t, 33000, e.EquipmentCost(sel))
	})

	t.Run("Components", func(t *testing.T) {
		sel := Selection{Equipment: []string{"колонка"}}
		assert.Equal(t, 8000, e.EquipmentCost(sel))
	})

	t.Run("UnknownSetFallsBackToComponents", func(t *testing.T) {
		sel := Selection{EquipmentSet: "Нет такого", Equipment: []string{"насос"}}
		assert.Equal(t, 25000, e.EquipmentCost(sel))
	})

	t.Run("UnknownComponentIsZero", func(t *testing.T) {
		sel := Selection{Equipment: []string{"нет такого", "колонка"}}
		assert.Equal(t, 8000, e.EquipmentCost(sel))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, e.EquipmentCost(Selection{}))
	})
}

func TestServicesCost(t *testing.T) {
	e := NewEngine(testCatalog())
	sel := Selection{Services: []string{"Монтаж кессона", "Анализ воды", "нет такой"}}
	assert.Equal(t, 24000, e.ServicesCost(sel))
}

func TestTotalCost(t *testing.T) {
	e := NewEngine(testCatalog())
	sel := Selection{
		District:     "Видное",
		Depth:        25,
		EquipmentSet: "Адаптер №1",
		Services:     []string{"Монтаж кессона"},
	}
	// 25*2900 + 33000 + 19000
	assert.Equal(t, 124500, e.TotalCost(sel))
}

func TestTotalCostIsPure(t *testing.T) {
	e := NewEngine(testCatalog())
	sel := Selection{Depth: 25, Equipment: []string{"насос"}, Services: []string{"Анализ воды"}}

	first := e.TotalCost(sel)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, e.TotalCost(sel))
	}
	assert.Equal(t, []string{"насос"}, sel.Equipment)
}
