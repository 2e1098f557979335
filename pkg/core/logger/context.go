package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

var nopLogger = zap.NewNop()

// Get returns the logger stored in ctx, or a no-op logger.
func Get(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return nopLogger
	}
	if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return nopLogger
}

// GetOr returns the logger stored in ctx, or fallback.
func GetOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(contextKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return fallback
}

// With returns a copy of ctx carrying log.
func With(ctx context.Context, log *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, log)
}
