// Package localstore is the client's device-local key/value store.
//
// It plays the role browser localStorage plays for a web front end: a few
// string entries that survive restarts of the CLI. The gate keeps its unlock
// flag here under "userEmail".
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed string map.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the store at path. Parent directories are created
// as needed. ":memory:" gives a throwaway store for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("localstore: creating directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("localstore: opening %s: %w", path, err)
	}
	// One process, one user: a single connection avoids lock contention and
	// keeps ":memory:" stores coherent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("localstore: creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key. ok is false when the key is absent.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("localstore: get %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes key, replacing any previous value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("localstore: set %s: %w", key, err)
	}
	return nil
}

// Clear removes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("localstore: clear: %w", err)
	}
	return nil
}
