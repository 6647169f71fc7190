// Package emailaddr holds the email shape rules shared by the client gate
// and the capture service, so both boundaries reject the same inputs.
package emailaddr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/sakif/ui-feedback/internal/apperror"
)

var (
	ErrRequired      = errors.New("email required")
	ErrInvalidFormat = errors.New("email has invalid format")
)

// One "@", no whitespace, and at least one "." after the "@". RE2's \s is
// ASCII only, so Unicode separators, \v and U+FEFF are listed explicitly.
var shape = regexp.MustCompile(`^[^\p{Z}\s\v\x{FEFF}@]+@[^\p{Z}\s\v\x{FEFF}@]+\.[^\p{Z}\s\v\x{FEFF}@]+$`)

// Validate trims raw and checks its shape. It returns the trimmed address;
// case is preserved.
func Validate(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", apperror.Invalid("email", apperror.CodeRequired, ErrRequired, "Email is required")
	}
	if !shape.MatchString(email) {
		return "", apperror.Invalid("email", apperror.CodeInvalidFormat, ErrInvalidFormat, "Please enter a valid email")
	}
	return email, nil
}

// Normalize returns the uniqueness key for an address.
func Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
