package dialog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	err := s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, StageStart, st.Stage)
		st.Stage = StageDistrict
		st.District = "Видное"
		return nil
	})
	require.NoError(t, err)

	err = s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, "Видное", st.District)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		st.District = "Видное"
		st.SelectedServices = []string{"Анализ воды"}
		return nil
	}))
	require.NoError(t, s.Update(ctx, 2, func(st *State) error {
		st.District = "Бронницы"
		return nil
	}))

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, "Видное", st.District)
		assert.Equal(t, []string{"Анализ воды"}, st.SelectedServices)
		assert.Equal(t, int64(1), st.UserID)
		return nil
	}))
}

func TestMemoryStoreSerializesSameUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Update(ctx, 1, func(st *State) error {
				st.Depth++
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, n, st.Depth)
		return nil
	}))
}

func TestMemoryStoreErrorDiscardsNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		st.District = "Видное"
		return nil
	}))

	err := s.Update(ctx, 1, func(st *State) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, "Видное", st.District)
		return nil
	}))
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(0)

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		st.Stage = StageFinal
		return nil
	}))
	require.NoError(t, s.Reset(ctx, 1))

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, StageStart, st.Stage)
		return nil
	}))
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10 * time.Millisecond)

	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		st.Stage = StageServices
		st.District = "Видное"
		return nil
	}))

	time.Sleep(30 * time.Millisecond)

	// An expired dialog restarts transparently on the next event.
	require.NoError(t, s.Update(ctx, 1, func(st *State) error {
		assert.Equal(t, StageStart, st.Stage)
		assert.Empty(t, st.District)
		return nil
	}))
}

func TestMemoryStoreEviction(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(10 * time.Millisecond)

	require.NoError(t, s.Update(ctx, 1, func(*State) error { return nil }))
	require.NoError(t, s.Update(ctx, 2, func(*State) error { return nil }))
	assert.Equal(t, 2, s.Len())

	time.Sleep(30 * time.Millisecond)
	s.evictExpired()
	assert.Equal(t, 0, s.Len())
}
