// Package model defines the data structures used throughout the application.
package model

import "time"

// User is one captured email address.
//
// Email is always stored normalized (trimmed, lowercased) and is the
// uniqueness key. ID is an internal xid so the primary key never depends on
// user input.
type User struct {
	ID        string    `json:"-"         db:"id"`
	Email     string    `json:"email"     db:"email"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
