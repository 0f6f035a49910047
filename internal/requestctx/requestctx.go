// Package requestctx carries per-request values shared by the middleware
// chain, the handlers and the audit trail.
package requestctx

import (
	"context"

	"esocial/internal/domain/auth"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey).(string)
	return value
}

func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(userKey).(auth.UserContext)
	return user, ok
}

// TenantID is empty for anonymous requests.
func TenantID(ctx context.Context) string {
	user, _ := GetUser(ctx)
	return user.TenantID
}
