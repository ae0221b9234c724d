package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// WithContext stores a request-scoped logger in the context.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext extracts the request-scoped logger, falling back to a nop
// logger so call sites never need a nil check.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := TryFromContext(ctx); ok {
		return l
	}
	return zap.NewNop()
}

// TryFromContext extracts the request-scoped logger and reports whether one
// was stored.
func TryFromContext(ctx context.Context) (*zap.Logger, bool) {
	l, ok := ctx.Value(ctxKey{}).(*zap.Logger)
	return l, ok
}
