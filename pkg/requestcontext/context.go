// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets values; services read them without importing net/http. Tests
// inject a fixed time via WithTime so verification timestamps and revocation
// times are deterministic.
package requestcontext

import (
	"context"
	"time"
)

type requestIDKey struct{}
type timeKey struct{}

// WithRequestID stores the correlation id for the current request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the correlation id, or "" when none was set.
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithTime pins the request clock. Only tests and replay tooling should use
// this; production code lets Now fall back to the wall clock.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the pinned request time when present, otherwise time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
