package internal

import (
	"context"
	"time"
)

type ctxKey string

const ContextCallerKey ctxKey = "caller"

// Caller is the resolved identity of the current request. A zero Caller is
// anonymous; handlers behind the session gate always see a bound one.
type Caller struct {
	UserID    string
	Username  string
	IsPremium bool
}

func (c Caller) Anonymous() bool {
	return c.UserID == ""
}

func CallerFromContext(ctx context.Context) (Caller, bool) {
	if ctx == nil {
		return Caller{}, false
	}
	if caller, ok := ctx.Value(ContextCallerKey).(Caller); ok {
		return caller, true
	}
	return Caller{}, false
}

func ContextWithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, ContextCallerKey, caller)
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
