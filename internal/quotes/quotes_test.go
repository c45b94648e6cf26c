package quotes

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "quotes.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndList(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	q := &Quote{
		UserID:        42,
		District:      "Видное",
		Depth:         25,
		EquipmentSet:  "Адаптер №1",
		Equipment:     []string{"насос", "колонка"},
		Services:      []string{"Анализ воды"},
		DrillingCost:  72500,
		EquipmentCost: 33000,
		ServicesCost:  5000,
		TotalCost:     110500,
	}
	require.NoError(t, s.Save(ctx, q))
	assert.NotZero(t, q.ID)
	assert.False(t, q.CreatedAt.IsZero())

	list, err := s.ListByUser(ctx, 42, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, q.ID, got.ID)
	assert.Equal(t, "Видное", got.District)
	assert.Equal(t, 25, got.Depth)
	assert.Equal(t, []string{"насос", "колонка"}, got.Equipment)
	assert.Equal(t, []string{"Анализ воды"}, got.Services)
	assert.Equal(t, 110500, got.TotalCost)
}

func TestListIsPerUser(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	require.NoError(t, s.Save(ctx, &Quote{UserID: 1, District: "Видное", Depth: 25, TotalCost: 72500}))
	require.NoError(t, s.Save(ctx, &Quote{UserID: 2, District: "Бронницы", Depth: 50, TotalCost: 145000}))

	list, err := s.ListByUser(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Видное", list[0].District)

	list, err = s.ListByUser(ctx, 3, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestListLimit(t *testing.T) {
	ctx := context.Background()
	s := testStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Save(ctx, &Quote{UserID: 1, District: "Видное", Depth: 20 + i}))
	}

	list, err := s.ListByUser(ctx, 1, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	// Newest first.
	assert.Equal(t, 24, list[0].Depth)
}

func TestExportExcel(t *testing.T) {
	data, err := ExportExcel([]Quote{
		{
			ID:        1,
			UserID:    42,
			District:  "Видное",
			Depth:     25,
			Equipment: []string{"насос"},
			Services:  []string{"Анализ воды"},
			TotalCost: 110500,
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// xlsx is a zip container.
	assert.Equal(t, byte('P'), data[0])
	assert.Equal(t, byte('K'), data[1])
}

func TestQuoteRowValues(t *testing.T) {
	q := &Quote{
		ID:            7,
		UserID:        42,
		District:      "Видное",
		Depth:         25,
		EquipmentSet:  "Адаптер №1",
		Equipment:     []string{"насос", "колонка"},
		Services:      []string{"Анализ воды"},
		DrillingCost:  72500,
		EquipmentCost: 33000,
		ServicesCost:  5000,
		TotalCost:     110500,
	}
	values := quoteRowValues(q)
	require.Len(t, values, 12)
	assert.Equal(t, int64(7), values[0])
	assert.Equal(t, "насос, колонка", values[6])
	assert.Equal(t, 110500, values[11])
}
