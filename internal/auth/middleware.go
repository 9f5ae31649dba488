package auth

import (
	"context"
	"net/http"

	"campus-hub/internal/models"
)

type contextKey string

const identityKey contextKey = "identity"

// Middleware verifies the bearer token and places the resolved Identity in
// the request context. Missing or invalid credentials end the request with
// 401 before any handler runs.
func Middleware(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawToken, err := ExtractTokenFromRequest(r)
			if err != nil {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			identity, err := issuer.Verify(rawToken)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a route subtree with an explicit allow-set. It assumes
// Middleware already ran; an absent identity is treated as unauthenticated.
func RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFrom(r.Context())
			if !ok {
				http.Error(w, "missing or invalid credentials", http.StatusUnauthorized)
				return
			}
			if !identity.HasRole(allowed...) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom extracts the caller identity placed by Middleware.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(models.Identity)
	return identity, ok
}

// WithIdentity is used by tests to seed a context without running the
// middleware.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
