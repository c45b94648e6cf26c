package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps conversation states in Redis so the bot can restart
// without dropping active dialogs. Per-user serialization is provided by
// local keyed mutexes: a single bot instance owns its users' dialogs, so
// no distributed lock is needed.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewRedisStore creates a Redis-backed Store. States expire after ttl;
// a non-positive ttl keeps them until reset.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = "dialog"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		locks:  make(map[int64]*sync.Mutex),
	}
}

func (s *RedisStore) key(userID int64) string {
	return fmt.Sprintf("%s:state:%d", s.prefix, userID)
}

func (s *RedisStore) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	return l
}

// Update implements Store.
func (s *RedisStore) Update(ctx context.Context, userID int64, fn func(*State) error) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	st, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	st.UpdatedAt = time.Now()
	return s.save(ctx, st)
}

// Reset implements Store.
func (s *RedisStore) Reset(ctx context.Context, userID int64) error {
	l := s.userLock(userID)
	l.Lock()
	defer l.Unlock()

	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("reset state %d: %w", userID, err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, userID int64) (*State, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return NewState(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %d: %w", userID, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		// A corrupt snapshot should not wedge the dialog forever.
		return NewState(userID), nil
	}
	return &st, nil
}

func (s *RedisStore) save(ctx context.Context, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state %d: %w", st.UserID, err)
	}
	if err := s.client.Set(ctx, s.key(st.UserID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save state %d: %w", st.UserID, err)
	}
	return nil
}
