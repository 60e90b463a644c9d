package testhelpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/auth"
)

// TestSecret signs tokens issued by SignTestToken. Handler tests
// configure their middleware with the same value.
var TestSecret = []byte("test-secret")

// SignTestToken issues an HS256 token for the given user and role,
// valid for one hour.
func SignTestToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: role,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TestSecret)
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}
	return token
}
