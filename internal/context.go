package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	roleKey   ctxKey = "role"
	traceKey  ctxKey = "traceID"
)

const defaultTimeout = 5 * time.Second

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// UserIDFromContext returns the caller set by the auth middleware, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// RoleFromContext returns the role claimed by the caller's token. It identifies, it does not authorize.
func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, roleKey)
}

func ContextWithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey, role)
}

func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceKey, traceID)
}

// TraceIDFromContext returns the id the request middleware assigned, or "".
func TraceIDFromContext(ctx context.Context) string {
	return stringValue(ctx, traceKey)
}

// WithTimeout bounds ctx by duration, or by five seconds when duration is not positive.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = defaultTimeout
	}
	return context.WithTimeout(ctx, duration)
}
