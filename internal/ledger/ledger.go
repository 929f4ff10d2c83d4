// Package ledger records the outcome of every design in a batch, keyed by run
// and design index. The batch summary is read back from it.
package ledger

import (
	"context"
	"fmt"
	"time"
)

// Status is the outcome of a design.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusSkipped   Status = "skipped"
)

// Entry is one ledger row.
type Entry struct {
	RunID       string
	DesignIndex int
	Status      Status
	Path        string
	Seed        int64
	Seconds     float64
	RecordedAt  time.Time
}

// Store persists ledger entries. Recording the same (run, index) twice
// replaces the earlier entry.
type Store interface {
	Init(ctx context.Context) error
	Record(ctx context.Context, e Entry) error
	// List returns the entries of a run ordered by design index.
	List(ctx context.Context, runID string) ([]Entry, error)
	Close() error
}

// NewStore returns the backend selected by kind.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported ledger backend: %s", kind)
	}
}

// Count tallies entries by status.
func Count(entries []Entry) map[Status]int {
	out := make(map[Status]int)
	for _, e := range entries {
		out[e.Status]++
	}
	return out
}
