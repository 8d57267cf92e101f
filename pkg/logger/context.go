package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a context carrying a child logger extended with fields.
// Request-scoped attributes (trace id, caller id) accumulate this way.
func With(ctx context.Context, fields ...any) context.Context {
	child := From(ctx).With(fields...)
	return context.WithValue(ctx, ctxKey{}, child)
}

// From returns the logger stored in ctx, falling back to the process logger.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
