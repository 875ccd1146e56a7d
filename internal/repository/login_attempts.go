package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptStore counts failed logins per key inside a rolling window.
type LoginAttemptStore interface {
	// Failures returns the failures recorded for key in the current window.
	Failures(ctx context.Context, key string) (int, error)
	// RecordFailure increments the failure count and returns the new total.
	RecordFailure(ctx context.Context, key string, window time.Duration) (int, error)
	// Reset clears the failures for key.
	Reset(ctx context.Context, key string) error
}

const loginAttemptPrefix = "login_failures:"

type redisLoginAttemptStore struct {
	client *redis.Client
}

// NewRedisLoginAttemptStore returns a Redis-backed store.
func NewRedisLoginAttemptStore(client *redis.Client) LoginAttemptStore {
	return &redisLoginAttemptStore{client: client}
}

func (s *redisLoginAttemptStore) Failures(ctx context.Context, key string) (int, error) {
	n, err := s.client.Get(ctx, loginAttemptPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *redisLoginAttemptStore) RecordFailure(ctx context.Context, key string, window time.Duration) (int, error) {
	redisKey := loginAttemptPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

func (s *redisLoginAttemptStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, loginAttemptPrefix+key).Err()
}

type attemptWindow struct {
	count     int
	expiresAt time.Time
}

// MemoryLoginAttemptStore is a process-local LoginAttemptStore.
type MemoryLoginAttemptStore struct {
	mu      sync.Mutex
	windows map[string]attemptWindow
	now     func() time.Time
}

// NewMemoryLoginAttemptStore returns an empty store using clock; nil means time.Now.
func NewMemoryLoginAttemptStore(clock func() time.Time) *MemoryLoginAttemptStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryLoginAttemptStore{windows: make(map[string]attemptWindow), now: clock}
}

func (s *MemoryLoginAttemptStore) Failures(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current(key).count, nil
}

func (s *MemoryLoginAttemptStore) RecordFailure(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.current(key)
	if w.count == 0 {
		w.expiresAt = s.now().Add(window)
	}
	w.count++
	s.windows[key] = w
	return w.count, nil
}

func (s *MemoryLoginAttemptStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

func (s *MemoryLoginAttemptStore) current(key string) attemptWindow {
	w, ok := s.windows[key]
	if !ok {
		return attemptWindow{}
	}
	if !s.now().Before(w.expiresAt) {
		delete(s.windows, key)
		return attemptWindow{}
	}
	return w
}
