package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Middleware provides HTTP authentication middleware. It is thin: token
// parsing lives in ParseToken, role checks live in the services.
type Middleware struct {
	secret []byte
	logger *zap.Logger
}

// NewMiddleware creates auth middleware validating tokens against the
// given HMAC secret.
func NewMiddleware(secret []byte, logger *zap.Logger) *Middleware {
	return &Middleware{secret: secret, logger: logger}
}

// RequireAuth validates the bearer token and stores the identity in the
// request context. Role enforcement happens in the service layer so the
// services stay independently testable.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			m.unauthorized(w, "Authentication required")
			return
		}

		identity, err := ParseToken(m.secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.logger.Debug("Token validation failed", zap.Error(err))
			m.unauthorized(w, "Invalid token")
			return
		}

		next(w, r.WithContext(SetIdentity(r.Context(), identity)))
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	}); err != nil {
		m.logger.Error("Failed to write unauthorized response", zap.Error(err))
	}
}
