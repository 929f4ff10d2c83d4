package ledger

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	memory, err := NewStore("memory", "")
	require.NoError(t, err)

	out := map[string]Store{"memory": memory, "sqlite": sqlite}
	for _, s := range out {
		require.NoError(t, s.Init(context.Background()))
		t.Cleanup(func() { _ = s.Close() })
	}
	return out
}

func TestStore_RecordAndList(t *testing.T) {
	when := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Record(ctx, Entry{RunID: "r1", DesignIndex: 2, Status: StatusCompleted, Path: "out_00002.pdb", Seed: 7, Seconds: 1.25, RecordedAt: when}))
			require.NoError(t, s.Record(ctx, Entry{RunID: "r1", DesignIndex: 0, Status: StatusSkipped, Path: "out_00000.pdb", RecordedAt: when}))
			require.NoError(t, s.Record(ctx, Entry{RunID: "other", DesignIndex: 1, Status: StatusCompleted, RecordedAt: when}))

			entries, err := s.List(ctx, "r1")
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, 0, entries[0].DesignIndex)
			assert.Equal(t, StatusSkipped, entries[0].Status)
			assert.Equal(t, Entry{RunID: "r1", DesignIndex: 2, Status: StatusCompleted, Path: "out_00002.pdb", Seed: 7, Seconds: 1.25, RecordedAt: when}, entries[1])
		})
	}
}

func TestStore_RecordReplaces(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Record(ctx, Entry{RunID: "r", DesignIndex: 1, Status: StatusSkipped, RecordedAt: time.Now()}))
			require.NoError(t, s.Record(ctx, Entry{RunID: "r", DesignIndex: 1, Status: StatusCompleted, RecordedAt: time.Now()}))

			entries, err := s.List(ctx, "r")
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, StatusCompleted, entries[0].Status)
		})
	}
}

func TestMemoryStore_ConcurrentRecords(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Record(ctx, Entry{RunID: "r", DesignIndex: i, Status: StatusCompleted})
		}(i)
	}
	wg.Wait()

	entries, err := s.List(ctx, "r")
	require.NoError(t, err)
	require.Len(t, entries, 50)
	for i, e := range entries {
		assert.Equal(t, i, e.DesignIndex)
	}
}

func TestSQLiteStore_RequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "x.db"))
	assert.Error(t, s.Record(context.Background(), Entry{}))
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestNewStore_Unknown(t *testing.T) {
	_, err := NewStore("redis", "")
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	got := Count([]Entry{{Status: StatusCompleted}, {Status: StatusSkipped}, {Status: StatusCompleted}})
	assert.Equal(t, map[Status]int{StatusCompleted: 2, StatusSkipped: 1}, got)
}
