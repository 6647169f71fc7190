// Run with: go test ./internal/apperror/ -v
package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var errReason = errors.New("reason")

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("user", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("email", "email is required"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("user", "a@b.co"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid("email", CodeInvalidFormat, errReason, "bad"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps its reason",
			err:       Invalid("email", CodeInvalidFormat, errReason, "bad"),
			target:    errReason,
			wantMatch: true,
		},
		{
			name:      "Transport wraps ErrTransport",
			err:       Transport(errors.New("dial tcp: refused")),
			target:    ErrTransport,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("token required"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "Server does NOT match ErrTransport",
			err:       Server("boom"),
			target:    ErrTransport,
			wantMatch: false,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("user", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("user", "abc123"),
			wantMessage: "user not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("email", "Email is required"),
			wantMessage: "Email is required",
		},
		{
			name:        "Transport uses the generic network message",
			err:         Transport(errors.New("eof")),
			wantMessage: "Network error. Please check your connection and try again.",
		},
		{
			name:        "Server keeps the remote message",
			err:         Server("quota exceeded"),
			wantMessage: "quota exceeded",
		},
		{
			name:        "Server falls back to a default",
			err:         Server(""),
			wantMessage: "Failed to submit email. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("user", "abc123")
	if unwrapped := err.Unwrap(); unwrapped != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, ErrNotFound)
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("submitting: %w", Invalid("email", CodeRequired, errReason, "Email is required"))
	if got := CodeOf(wrapped); got != CodeRequired {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeRequired)
	}
	if got := CodeOf(Transport(errors.New("x"))); got != CodeNetworkError {
		t.Errorf("CodeOf(Transport) = %q, want %q", got, CodeNetworkError)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
}

func TestInvalidField(t *testing.T) {
	err := Invalid("email", CodeInvalidFormat, errReason, "Please enter a valid email")

	if err.Field != "email" {
		t.Errorf("Field = %q, want %q", err.Field, "email")
	}
	if err.Code != CodeInvalidFormat {
		t.Errorf("Code = %q, want %q", err.Code, CodeInvalidFormat)
	}
}
