package middleware

import (
	"context"
	"net/http"

	"contest_arena/internal/common"
	"contest_arena/internal/common/security"
	"contest_arena/internal/domain/model"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// Authenticator resolves the Bearer token into a model.Identity. Every failure
// is answered with the same UNAUTHORIZED envelope.
func Authenticator(guard *security.Guard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := guard.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				common.RespondWithError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole rejects authenticated callers whose role differs.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, _ := IdentityFromContext(r.Context())
			if err := security.RequireRole(identity, role); err != nil {
				common.RespondWithError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// Helper to get the caller from context
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(model.Identity)
	return identity, ok
}
