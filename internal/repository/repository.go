package repository

import (
	"context"

	"github.com/sakif/ui-feedback/internal/model"
)

// UserRepository persists captured users.
//
// Create normalizes user.Email before writing and returns an error matching
// apperror.ErrConflict when the normalized address is already stored.
// List returns every user, newest first.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Ping(ctx context.Context) error
}
