package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/curecircle/curecircle-server/internal/domain"
	"github.com/curecircle/curecircle-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the authenticated identity.
const identityKey ctxKey = "identity"

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	if !ok || identity.UserID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return identity.UserID, nil
}

// GetIdentity returns the full authenticated identity from context.
func GetIdentity(ctx context.Context) (*domain.Identity, error) {
	identity, ok := ctx.Value(identityKey).(*domain.Identity)
	if !ok || identity.UserID == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	return identity, nil
}

// setIdentity stores the identity in context.
func setIdentity(ctx context.Context, identity *domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// authMiddleware returns a middleware that validates Bearer tokens and stores
// the identity in context. If no token is present or invalid, continues
// without an identity; handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := auth.VerifyAccess(authHeader[7:])
			if err != nil {
				// Invalid token, continue without identity (handler will
				// reject if auth is required).
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setIdentity(r.Context(), identity)))
		})
	}
}
