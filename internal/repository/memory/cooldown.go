// Package memory holds process-local stores for single-instance deployments.
package memory

import (
	"context"
	"sync"
	"time"
)

// CooldownStore keeps last-sent times in a map guarded by a mutex
type CooldownStore struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewCooldownStore creates an empty store
func NewCooldownStore() *CooldownStore {
	return &CooldownStore{lastSent: make(map[string]time.Time)}
}

// Acquire checks and records under one lock
func (s *CooldownStore) Acquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastSent[key]; ok && now.Sub(last) < window {
		return false, nil
	}
	s.lastSent[key] = now
	return true, nil
}

// Record stores at for key
func (s *CooldownStore) Record(ctx context.Context, key string, at time.Time) error {
	s.mu.Lock()
	s.lastSent[key] = at
	s.mu.Unlock()
	return nil
}

// Reset forgets keys, or everything when no key is given
func (s *CooldownStore) Reset(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(keys) == 0 {
		s.lastSent = make(map[string]time.Time)
		return nil
	}
	for _, k := range keys {
		delete(s.lastSent, k)
	}
	return nil
}

// LastSent returns the recorded time for key
func (s *CooldownStore) LastSent(key string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.lastSent[key]
	return t, ok
}
