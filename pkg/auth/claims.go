// Package auth consumes the identity boundary: it validates bearer
// tokens issued by the company auth service and exposes the acting
// (user, role) pair through the request context. The engine never
// manages users or sessions itself.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/apperrors"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// IdentityKey is the context key for storing the validated identity.
const IdentityKey contextKey = "identity"

// Staff roles. Anything else is read-only and rejected by the
// mutation endpoints.
const (
	RoleAgent   = "agent"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// Claims is the JWT claims structure issued by the auth service.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role,omitempty"`
}

// Identity is the acting (user, role) pair extracted from a validated
// token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// Staff reports whether the identity may perform pipeline mutations.
func (id Identity) Staff() bool {
	switch id.Role {
	case RoleAgent, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// GetIdentity retrieves the identity from the request context.
// Returns false if the request was not authenticated.
func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// SetIdentity stores the identity in the context. Exposed for tests and
// for non-HTTP callers of the services.
func SetIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// RequireStaff extracts the identity and verifies staff privileges.
// Returns ErrNotAuthenticated when no identity is present and
// ErrForbidden when the role is insufficient.
func RequireStaff(ctx context.Context) (Identity, error) {
	id, ok := GetIdentity(ctx)
	if !ok {
		return Identity{}, apperrors.ErrNotAuthenticated
	}
	if !id.Staff() {
		return Identity{}, fmt.Errorf("%w: role %q", apperrors.ErrForbidden, id.Role)
	}
	return id, nil
}

// ParseToken validates an HS256 bearer token and returns the identity
// it carries.
func ParseToken(secret []byte, tokenStr string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return Identity{}, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid subject in token: %w", err)
	}

	return Identity{UserID: userID, Role: claims.Role}, nil
}
