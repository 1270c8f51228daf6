package denylist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Lapsed entries stay until
// PurgeExpired is called.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Entry)}
}

func (s *MemoryStore) Insert(_ context.Context, entry Entry) (bool, error) {
	if entry.Token == "" {
		return false, ErrEmptyToken
	}
	key := Digest(entry.Token)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	s.entries[key] = entry
	return true, nil
}

func (s *MemoryStore) Find(_ context.Context, token string) (Entry, bool, error) {
	if token == "" {
		return Entry{}, false, ErrEmptyToken
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[Digest(token)]
	return entry, ok, nil
}

// PurgeExpired drops entries whose token expired before cutoff and returns
// how many were removed. Pass a cutoff at least the verifier's leeway in
// the past, or a revoked token could verify again.
func (s *MemoryStore) PurgeExpired(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.ExpiresAt.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
