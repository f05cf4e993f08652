package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/manish-raj-kamal/Chat-Application-Logger/internal/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// AuthMiddleware verifies Bearer session tokens on protected routes.
type AuthMiddleware struct {
	issuer *auth.TokenIssuer
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(issuer *auth.TokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{issuer: issuer}
}

// RequireAuth rejects requests without a valid session token and puts
// the verified claims on the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		claims, err := m.issuer.Verify(token)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetIdentityFromContext returns the authenticated claims, or nil.
func GetIdentityFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(identityContextKey).(*auth.Claims)
	return claims
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
