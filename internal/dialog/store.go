package dialog

import (
	"context"
	"sync"
	"time"
)

// Store keeps conversation states keyed by user ID. Update runs fn with
// the user's state while holding that user's lock, so events from the
// same user are applied strictly one at a time; different users never
// block each other on anything but the brief index lookup.
type Store interface {
	// Update locks the user's entry, creating it at the start stage on
	// first use, and runs fn against it. Mutations made by fn are
	// persisted when fn returns nil.
	Update(ctx context.Context, userID int64, fn func(*State) error) error

	// Reset discards the user's state so the next update starts fresh.
	Reset(ctx context.Context, userID int64) error
}

type entry struct {
	mu    sync.Mutex
	state *State
}

// MemoryStore is the default in-process Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[int64]*entry
	timeout time.Duration
}

// NewMemoryStore creates a store whose idle states expire after timeout.
// A non-positive timeout disables expiry.
func NewMemoryStore(timeout time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[int64]*entry),
		timeout: timeout,
	}
}

func (s *MemoryStore) get(userID int64) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{state: NewState(userID)}
		s.entries[userID] = e
	}
	return e
}

// Update implements Store.
func (s *MemoryStore) Update(ctx context.Context, userID int64, fn func(*State) error) error {
	e := s.get(userID)
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.timeout > 0 && e.state.IsExpired(s.timeout) {
		e.state = NewState(userID)
	}
	if err := fn(e.state); err != nil {
		return err
	}
	e.state.UpdatedAt = time.Now()
	return nil
}

// Reset implements Store.
func (s *MemoryStore) Reset(ctx context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

// Len returns the number of tracked users.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cleanup drops expired entries every interval until ctx is done.
func (s *MemoryStore) Cleanup(ctx context.Context, interval time.Duration) {
	if s.timeout <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *MemoryStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.entries {
		if e.mu.TryLock() {
			expired := e.state.IsExpired(s.timeout)
			e.mu.Unlock()
			if expired {
				delete(s.entries, id)
			}
		}
	}
}
