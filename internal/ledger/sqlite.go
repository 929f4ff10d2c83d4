package ledger

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the ledger in a SQLite database so it survives restarts
// and can be shared by successive runs writing to the same prefix.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for the database at path. Init opens it.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init implements Store.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS designs (
			run_id TEXT NOT NULL,
			design_index INTEGER NOT NULL,
			status TEXT NOT NULL,
			path TEXT NOT NULL,
			seed INTEGER NOT NULL,
			seconds REAL NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (run_id, design_index)
		)
	`); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite ledger not initialized")
	}
	return s.db, nil
}

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO designs (run_id, design_index, status, path, seed, seconds, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, design_index) DO UPDATE SET
			status = excluded.status,
			path = excluded.path,
			seed = excluded.seed,
			seconds = excluded.seconds,
			recorded_at = excluded.recorded_at
	`, e.RunID, e.DesignIndex, string(e.Status), e.Path, e.Seed, e.Seconds, e.RecordedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, runID string) ([]Entry, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT design_index, status, path, seed, seconds, recorded_at
		FROM designs WHERE run_id = ? ORDER BY design_index
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e := Entry{RunID: runID}
		var status, recorded string
		if err := rows.Scan(&e.DesignIndex, &status, &e.Path, &e.Seed, &e.Seconds, &recorded); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		if e.RecordedAt, err = time.Parse(time.RFC3339Nano, recorded); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
