package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	userCtxKey          contextKey = "username"
	operationCtxKey     contextKey = "operation"
)

// Attribute keys used in log records.
const (
	CorrelationIDKey = "correlation_id"
	UserKey          = "username"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

// WithCorrelationID adds a correlation ID to the context.
// If id is empty, a new UUID is generated.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) string {
	return stringValue(ctx, correlationIDCtxKey)
}

// WithUser records the name of the signed-in user.
func WithUser(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, userCtxKey, username)
}

// UserFromContext returns the signed-in user's name, or "".
func UserFromContext(ctx context.Context) string {
	return stringValue(ctx, userCtxKey)
}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, operationCtxKey, operation)
}

// OperationFromContext extracts the operation name from context.
func OperationFromContext(ctx context.Context) string {
	return stringValue(ctx, operationCtxKey)
}

// NewCommandContext starts the context of one command invocation with a
// fresh correlation ID and the operation name.
func NewCommandContext(ctx context.Context, operation string) context.Context {
	ctx = WithCorrelationID(ctx, "")
	if operation != "" {
		ctx = WithOperation(ctx, operation)
	}
	return ctx
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
