package ledger

import (
	"context"
	"slices"
	"sync"
)

type entryKey struct {
	run   string
	index int
}

// MemoryStore keeps entries in a sync.Map for the life of the process.
type MemoryStore struct {
	entries sync.Map // Key: entryKey, Value: Entry
}

// NewMemoryStore creates a new, empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init implements Store.
func (s *MemoryStore) Init(context.Context) error { return nil }

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, e Entry) error {
	s.entries.Store(entryKey{run: e.RunID, index: e.DesignIndex}, e)
	return nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, runID string) ([]Entry, error) {
	var out []Entry
	s.entries.Range(func(k, v any) bool {
		if k.(entryKey).run == runID {
			out = append(out, v.(Entry))
		}
		return true
	})
	slices.SortFunc(out, func(a, b Entry) int { return a.DesignIndex - b.DesignIndex })
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
