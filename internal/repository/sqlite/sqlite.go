// Package sqlite implements the repository interfaces on top of SQLite.
//
// The driver is modernc.org/sqlite, a pure Go port of SQLite: no CGo, no C
// toolchain, and cross-compilation keeps working. The same driver backs the
// client's local store (internal/client/localstore).
//
// DATABASE/SQL RECAP:
//   - sql.DB is a connection pool, not a single connection
//   - QueryRowContext / QueryContext / ExecContext run statements
//   - rows must always be closed, and rows.Err() checked after iterating
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps the connection pool and implements repository.UserRepository.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/feedback.db" → file-based database (persistent)
//   - ":memory:"         → in-memory database, used by the tests
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every new connection to ":memory:" gets its own empty database, so the
	// pool must never open a second one.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers (GET /api/users) proceed while a capture is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Concurrent captures would otherwise fail fast with SQLITE_BUSY.
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting busy timeout: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Callers should defer it right after New.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by /healthz.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// migrate creates the schema. CREATE ... IF NOT EXISTS keeps it idempotent.
//
// The UNIQUE index on email is what enforces "one record per address": the
// insert path relies on the constraint instead of a lookup beforehand, so
// two concurrent captures of the same address cannot both succeed in
// writing a row.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			email      TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);
		CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	return nil
}
