package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/ui-feedback/internal/apperror"
	"github.com/sakif/ui-feedback/internal/emailaddr"
	"github.com/sakif/ui-feedback/internal/model"
	"github.com/sakif/ui-feedback/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// Create inserts a new user.
//
// The email is normalized here, at the storage layer, so every caller gets
// the same uniqueness key no matter how it spelled the address. ID and
// CreatedAt are filled in on the passed struct.
//
// There is no SELECT before the INSERT: if the address exists
// the unique index rejects the row and we return apperror.Conflict. The
// service layer treats that as the "already exists" success path.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	email := emailaddr.Normalize(user.Email)
	if email == "" {
		return apperror.ValidationFailed("email", "Email is required")
	}

	id := xid.New().String()
	createdAt := time.Now().UTC()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (id, email, created_at) VALUES (?, ?, ?)`,
		id, email, createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user", email)
		}
		return fmt.Errorf("sqlite: inserting user: %w", err)
	}

	user.ID = id
	user.Email = email
	user.CreatedAt = createdAt
	return nil
}

// GetByEmail looks a user up by address (normalized before the query).
// Returns apperror.ErrNotFound if nobody has captured that address.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = emailaddr.Normalize(email)

	var u model.User
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, email, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}

	return &u, nil
}

// List returns all users, newest first. rowid breaks ties between rows
// written within the same clock tick.
func (db *DB) List(ctx context.Context) ([]model.User, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, email, created_at FROM users ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating user rows: %w", err)
	}

	return users, nil
}

// isUniqueViolation reports whether err is SQLite rejecting a duplicate key.
// The driver returns extended result codes; the message check covers
// builds that only report the primary SQLITE_CONSTRAINT code.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed: users.email")
	}
	return false
}
