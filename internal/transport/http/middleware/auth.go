package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"wagebook/internal/domain/auth"
	"wagebook/internal/requestctx"
	"wagebook/internal/transport/http/api"
)

// ScopeLoader resolves the current authorization scope of a user.
type ScopeLoader interface {
	ScopeFor(ctx context.Context, userID int64) (auth.Scope, error)
}

// Auth attaches the caller's scope to the request when a valid bearer token is
// present. With a nil loader the scope is built from the token claims alone.
// Requests without a usable token pass through unauthenticated.
func Auth(secret string, loader ScopeLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, parts[1])
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			scope := auth.Scope{UserID: claims.UserID, Username: claims.Username, IsAdmin: claims.IsAdmin}
			if loader != nil {
				scope, err = loader.ScopeFor(r.Context(), claims.UserID)
				if err != nil {
					slog.Warn("scope lookup failed", "userId", claims.UserID, "err", err)
					next.ServeHTTP(w, r)
					return
				}
			}

			ctx := requestctx.WithScope(r.Context(), scope)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated scope.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetScope(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetScope(ctx context.Context) (auth.Scope, bool) {
	return requestctx.GetScope(ctx)
}
