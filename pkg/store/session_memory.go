package store

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	value  string
	expiry time.Time
}

// MemorySessionStore keeps session keys in-process (single instance only).
// Expiry is evaluated against the injected clock on every read.
type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	now     func() time.Time
}

// NewMemorySessionStore builds an in-memory session store. A nil clock uses time.Now.
func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	if now == nil {
		now = time.Now
	}
	return &MemorySessionStore{
		entries: make(map[string]sessionEntry),
		now:     now,
	}
}

// Set stores value under key until ttl elapses.
func (s *MemorySessionStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	s.entries[key] = sessionEntry{value: value, expiry: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

// Get returns the value for key; expired keys are dropped and reported absent.
func (s *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(entry.expiry) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Delete removes key; absent keys are not an error.
func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Ping always succeeds.
func (s *MemorySessionStore) Ping(_ context.Context) error {
	return nil
}
