package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrTransport    = errors.New("transport")
	ErrServer       = errors.New("server error")
)

// Machine-readable codes carried by AppError.Code.
const (
	CodeRequired      = "required"
	CodeInvalidFormat = "invalid-format"
	CodeInvalidBody   = "invalid-body"
	CodeNetworkError  = "network-error"
	CodeServerError   = "server-error"
)

type AppError struct {
	Err     error  // actual error
	Code    string // Optional: machine-readable reason, e.g. "invalid-format"
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Invalid is a validation failure that also carries a reason sentinel, so
// callers can match either ErrValidation or the specific reason.
func Invalid(field, code string, reason error, message string) *AppError {
	return &AppError{
		Err:     errors.Join(ErrValidation, reason),
		Code:    code,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Unauthorized means no valid credentials were presented. Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Transport wraps a failed round trip (unreachable host, non-2xx status).
func Transport(cause error) *AppError {
	return &AppError{
		Err:     errors.Join(ErrTransport, cause),
		Code:    CodeNetworkError,
		Message: "Network error. Please check your connection and try again.",
	}
}

// Server reports a failure the remote side described in its payload.
func Server(message string) *AppError {
	if message == "" {
		message = "Failed to submit email. Please try again."
	}
	return &AppError{
		Err:     ErrServer,
		Code:    CodeServerError,
		Message: message,
	}
}

// CodeOf returns the Code of the first AppError in err's chain, or "".
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
