package dialog

import (
	"testing"

	"burovik/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "0"},
		{500, "500"},
		{8000, "8 000"},
		{72500, "72 500"},
		{117500, "117 500"},
		{1250000, "1 250 000"},
		{-72500, "-72 500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatPrice(tt.in), "input: %d", tt.in)
	}
}

func TestSampleDepths(t *testing.T) {
	t.Run("NarrowBandUsesMinimumStep", func(t *testing.T) {
		depths := sampleDepths([]catalog.DepthBand{{Min: 20, Max: 30}})
		assert.Equal(t, []int{20, 25, 30}, depths)
	})

	t.Run("WideBandQuarters", func(t *testing.T) {
		depths := sampleDepths([]catalog.DepthBand{{Min: 40, Max: 100}})
		assert.Equal(t, []int{40, 55, 70, 85, 100}, depths)
	})

	t.Run("EdgesAlwaysIncluded", func(t *testing.T) {
		depths := sampleDepths([]catalog.DepthBand{{Min: 15, Max: 42}})
		assert.Equal(t, 15, depths[0])
		assert.Equal(t, 42, depths[len(depths)-1])
	})

	t.Run("OverlappingBandsDeduplicated", func(t *testing.T) {
		depths := sampleDepths([]catalog.DepthBand{{Min: 20, Max: 30}, {Min: 30, Max: 60}})
		seen := make(map[int]bool)
		for _, d := range depths {
			assert.False(t, seen[d], "depth %d repeated", d)
			seen[d] = true
		}
	})
}

func TestDepthRenderShowsHorizons(t *testing.T) {
	cat := fixtureCatalog()
	cat.Districts[0].Horizons = &catalog.HorizonInfo{
		PI1: &catalog.DepthBand{Min: 20, Max: 30},
	}
	m := NewMachine(cat)
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})

	r := apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	assert.Contains(t, r.Text, "ПИ1: 20–30 м")
}

func TestServicesRenderMarksSelected(t *testing.T) {
	m := NewMachine(fixtureCatalog())
	st := NewState(1)
	apply(t, m, st, Event{Kind: EventStart})
	apply(t, m, st, Event{Kind: EventSelectDistrict, Name: "Видное"})
	apply(t, m, st, Event{Kind: EventSelectDepth, Depth: 25})
	apply(t, m, st, Event{Kind: EventSelectSet, Name: "Адаптер №1"})

	r := apply(t, m, st, Event{Kind: EventToggleService, Name: "Монтаж кессона"})
	assert.Contains(t, r.Keyboard[0][0].Text, "✅")
	assert.NotContains(t, r.Keyboard[1][0].Text, "✅")
}
