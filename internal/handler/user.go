package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/ui-feedback/internal/apperror"
	"github.com/sakif/ui-feedback/internal/auth"
	"github.com/sakif/ui-feedback/internal/model"
	"github.com/sakif/ui-feedback/internal/service"
)

const (
	msgCreated       = "Email saved successfully"
	msgAlreadyExists = "Email already exists"
	msgInvalidBody   = "Invalid JSON body"
)

// UserService is what UserHandler needs from the service layer.
// *service.UserService satisfies it; tests pass a fake.
type UserService interface {
	CreateUser(ctx context.Context, rawEmail string) (*service.CaptureResult, error)
	ListUsers(ctx context.Context) ([]model.User, error)
}

// UserHandler serves the capture endpoint and the operator listing.
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

type captureRequest struct {
	Email string `json:"email"`
}

// userView is the listing shape. The internal id is not exposed.
type userView struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandleCapture records an email address.
//
// HTTP: POST / and POST /api/users
// REQUEST BODY: {"email": "someone@example.com"}
//
// 201 when a record was created, 200 when the address was already known.
// Both are successes: the client unlocks either way.
func (h *UserHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid capture JSON", slog.String("error", err.Error()))
		writeError(w, apperror.Invalid("body", apperror.CodeInvalidBody, err, msgInvalidBody))
		return
	}

	result, err := h.service.CreateUser(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			h.logger.Error("capture failed", slog.String("error", err.Error()))
		}
		writeError(w, err)
		return
	}

	if !result.Created {
		writeJSON(w, http.StatusOK, Envelope{Success: true, Message: msgAlreadyExists})
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Message: msgCreated})
}

// HandleList returns every captured address, newest first.
//
// HTTP: GET /api/users (operator token required)
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	if op, ok := auth.OperatorFromContext(r.Context()); ok {
		h.logger.Info("users listed", slog.String("operator", op), slog.Int("count", len(users)))
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, userView{Email: u.Email, CreatedAt: u.CreatedAt})
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: views})
}
