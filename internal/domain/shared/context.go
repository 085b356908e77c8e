// Package shared carries request-scoped values across layer boundaries.
package shared

import "context"

type contextKey string

const (
	correlationIDKey contextKey = "correlation_id"
	callerIDKey      contextKey = "caller_id"
)

// WithCorrelationID returns a context carrying the request correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID or "".
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// WithCallerID returns a context carrying the authenticated account ID.
func WithCallerID(ctx context.Context, accountID int64) context.Context {
	return context.WithValue(ctx, callerIDKey, accountID)
}

// CallerIDFromContext returns the authenticated account ID, if any.
func CallerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(callerIDKey).(int64)
	return id, ok
}
