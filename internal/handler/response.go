package handler

// RESPONSE HELPERS:
// Every response from the capture API shares one envelope:
//
//	success: {"success": true,  "message": "..."}  or  {"success": true, "data": [...]}
//	failure: {"success": false, "error": "...", "code": "invalid-format"}
//
// The client only ever looks at `success`, `message` and `error`, so the
// envelope must not drift between handlers. writeJSON and writeError are the
// only two places that write bodies.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/ui-feedback/internal/apperror"
)

// msgInternal is shown for any error we cannot classify. Raw error text
// may contain SQL or file paths and never reaches the client.
const msgInternal = "Server error. Please try again later."

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before WriteHeader; anything set afterwards is dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends the failure
// envelope.
//
// errors.Is walks the whole chain, so a service error like
// fmt.Errorf("capturing email: %w", apperror.Invalid(...)) still maps to 400.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, Envelope{
			Error: msgInternal,
			Code:  apperror.CodeServerError,
		})
		return
	}

	status := http.StatusInternalServerError
	message := appErr.Message
	code := appErr.Code

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
	default:
		message = msgInternal
		code = apperror.CodeServerError
	}

	writeJSON(w, status, Envelope{
		Error: message,
		Code:  code,
	})
}

// WriteUnauthorized is the deny handler for auth.RequireOperator.
func WriteUnauthorized(w http.ResponseWriter, r *http.Request) {
	writeError(w, apperror.Unauthorized("valid operator token required"))
}
