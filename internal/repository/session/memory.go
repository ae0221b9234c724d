package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process, synchronized append-only log of recently
// seen product identifiers, capped at max entries. Appends from concurrent
// requests serialize on the mutex.
type MemoryStore struct {
	mu  sync.Mutex
	max int
	ids []string // most recent first
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore(max int) *MemoryStore {
	if max < 1 {
		max = 1
	}
	return &MemoryStore{max: max}
}

// Append records identifiers as the most recently seen.
func (s *MemoryStore) Append(_ context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Newest first, preserving the order within one append.
	for i := len(ids) - 1; i >= 0; i-- {
		s.ids = append([]string{ids[i]}, s.ids...)
	}
	if len(s.ids) > s.max {
		s.ids = s.ids[:s.max]
	}
	return nil
}

// Recent returns up to n identifiers, most recent first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n > len(s.ids) {
		n = len(s.ids)
	}
	out := make([]string, n)
	copy(out, s.ids[:n])
	return out, nil
}
