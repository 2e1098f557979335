// Package correlation carries the human-facing correlation id through a request or an event chain.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// NewID returns a fresh correlation id.
func NewID() string {
	return uuid.NewString()
}

// WithID stores id in ctx. An empty id leaves ctx unchanged.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the correlation id stored in ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok && id != ""
}

// Ensure returns ctx with a correlation id, generating one when absent.
func Ensure(ctx context.Context) (context.Context, string) {
	if id, ok := FromContext(ctx); ok {
		return ctx, id
	}
	id := NewID()
	return WithID(ctx, id), id
}
