// Package auth verifies bearer tokens from the hosted auth service and
// decides admin access.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	// ErrMissingToken is returned when a request carries no bearer token.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when a token fails verification.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated user behind a token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Verifier validates an access token and returns its identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrMissingToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Allowlist holds the admin email addresses. Comparison is case-insensitive.
type Allowlist struct {
	emails map[string]struct{}
}

// NewAllowlist builds an allowlist. An empty list admits nobody.
func NewAllowlist(emails []string) *Allowlist {
	a := &Allowlist{emails: make(map[string]struct{}, len(emails))}
	for _, e := range emails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			a.emails[e] = struct{}{}
		}
	}
	return a
}

// Allowed reports whether email may use admin endpoints.
func (a *Allowlist) Allowed(email string) bool {
	if email == "" {
		return false
	}
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Len returns the number of admin emails.
func (a *Allowlist) Len() int {
	return len(a.emails)
}
