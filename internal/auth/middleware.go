package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// contextKey is unexported so no other package can read or shadow values
// stored under it.
type contextKey string

const operatorKey contextKey = "operator"

// Validator checks a bearer token and returns the operator it names.
// *TokenService satisfies it.
type Validator interface {
	Validate(token string) (string, error)
}

var errNoBearer = errors.New("auth: missing bearer token")

// RequireOperator rejects requests without a valid operator token.
//
// The token comes from "Authorization: Bearer <jwt>". On failure it calls
// deny and stops the chain; on success the operator name is stored in the
// request context for handlers and logs.
func RequireOperator(tokens Validator, deny http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator, err := extractOperator(r, tokens)
			if err != nil {
				deny(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OperatorFromContext returns the operator set by RequireOperator.
func OperatorFromContext(ctx context.Context) (string, bool) {
	op, ok := ctx.Value(operatorKey).(string)
	return op, ok && op != ""
}

func extractOperator(r *http.Request, tokens Validator) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errNoBearer
	}
	return tokens.Validate(strings.TrimSpace(token))
}
