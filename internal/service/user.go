// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// The service receives a repository.UserRepository (interface), never a
// concrete *sqlite.DB, so tests pass an in-memory fake and main.go decides
// which storage to use.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/ui-feedback/internal/apperror"
	"github.com/sakif/ui-feedback/internal/cache"
	"github.com/sakif/ui-feedback/internal/emailaddr"
	"github.com/sakif/ui-feedback/internal/model"
	"github.com/sakif/ui-feedback/internal/repository"
)

// UserListCache stores the result of ListUsers between captures.
// internal/cache provides a Redis implementation and a no-op one.
type UserListCache interface {
	Get(ctx context.Context) ([]model.User, bool, error)
	Set(ctx context.Context, users []model.User) error
	Invalidate(ctx context.Context) error
}

// UserService implements the capture contract: create-if-absent by
// normalized email, and list everything captured so far.
type UserService struct {
	repo   repository.UserRepository
	cache  UserListCache
	logger *slog.Logger
}

// NewUserService creates a UserService. A nil cache means no caching.
func NewUserService(repo repository.UserRepository, listCache UserListCache, logger *slog.Logger) *UserService {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	return &UserService{
		repo:   repo,
		cache:  listCache,
		logger: logger,
	}
}

// CaptureResult reports what CreateUser did. Created is false when the address
// had already been captured; both outcomes are successes.
type CaptureResult struct {
	User    *model.User
	Created bool
}

// CreateUser records an email address.
//
// The shape check runs here as well as in the client: any caller of the
// capture endpoint gets the same rules, not only the bundled client.
//
// Idempotency comes from the storage unique index. The repository reports a
// duplicate as apperror.ErrConflict and we turn that into Created=false.
// There is no lookup before the insert, so two concurrent submissions of
// the same address produce one row and two successes.
func (s *UserService) CreateUser(ctx context.Context, rawEmail string) (*CaptureResult, error) {
	email, err := emailaddr.Validate(rawEmail)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email}
	err = s.repo.Create(ctx, user)
	switch {
	case err == nil:
		s.logger.Info("email captured",
			slog.String("id", user.ID),
			slog.String("email", user.Email),
		)
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.Warn("failed to invalidate user list cache", slog.String("error", err.Error()))
		}
		return &CaptureResult{User: user, Created: true}, nil

	case errors.Is(err, apperror.ErrConflict):
		s.logger.Info("email already captured", slog.String("email", emailaddr.Normalize(email)))
		existing, getErr := s.repo.GetByEmail(ctx, email)
		if getErr != nil {
			// The row exists; failing to read it back does not change the outcome.
			s.logger.Warn("failed to load existing user",
				slog.String("email", emailaddr.Normalize(email)),
				slog.String("error", getErr.Error()),
			)
			existing = &model.User{Email: emailaddr.Normalize(email)}
		}
		return &CaptureResult{User: existing, Created: false}, nil

	default:
		s.logger.Error("failed to capture email",
			slog.String("email", emailaddr.Normalize(email)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("capturing email: %w", err)
	}
}

// ListUsers returns every captured user, newest first.
// Cache errors are logged and the database is used instead.
func (s *UserService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, ok, err := s.cache.Get(ctx)
	if err != nil {
		s.logger.Warn("user list cache read failed", slog.String("error", err.Error()))
	}
	if ok {
		return users, nil
	}

	users, err = s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing users: %w", err)
	}

	if err := s.cache.Set(ctx, users); err != nil {
		s.logger.Warn("user list cache write failed", slog.String("error", err.Error()))
	}
	return users, nil
}

// Ping checks the storage backend.
func (s *UserService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
