// Package requestctx carries per-request values shared by middleware and
// handlers.
package requestctx

import (
	"context"

	"wagebook/internal/domain/auth"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	scopeKey     ctxKey = "scope"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithScope(ctx context.Context, scope auth.Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

func GetScope(ctx context.Context) (auth.Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(auth.Scope)
	return scope, ok
}
