// Package auth issues and checks operator tokens.
//
// Captured emails are only listed to operators. An operator token is a JWT
// signed with the server's JWT_SECRET:
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:    {"alg":"HS256","typ":"JWT"}
//	- Payload:   {"sub":"<operator>","iss":"ui-feedback","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secret)
//
// Tokens are minted offline (`feedback token`) by whoever holds the secret;
// the server never stores them, it only verifies the signature and expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer = "ui-feedback"

	// DefaultTTL is the lifetime of a token when the caller does not pick one.
	DefaultTTL = 24 * time.Hour

	minSecretLength = 16
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret.
// A non-positive ttl falls back to DefaultTTL.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", minSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate signs a token for operator using the service's TTL.
func (s *TokenService) Generate(operator string) (string, error) {
	return s.GenerateWithDuration(operator, s.ttl)
}

// GenerateWithDuration signs a token with a custom lifetime. Tests use it to
// produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(operator string, d time.Duration) (string, error) {
	if operator == "" {
		return "", errors.New("auth: operator name must not be empty")
	}

	now := time.Now()
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   operator,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate verifies a token and returns the operator it was issued to.
//
// Checks: HS256 only (no "none" or RSA confusion), issuer, expiry present
// and in the future, non-empty subject.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
