// Package tracecontext carries a distributed-trace identity (trace id, span id, sampled flag)
// inside event payloads, because message headers are not a reliable carrier on every hop.
package tracecontext

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// TraceContext identifies one unit of work inside a distributed trace.
//
// TraceID stays constant for the whole causal chain. SpanID is replaced on every hop
// and the previous span id is not kept, so consumers can only group spans by trace.
type TraceContext struct {
	TraceID   trace.TraceID
	SpanID    trace.SpanID
	Sampled   bool
	RequestID string
}

// IsValid reports whether both identifiers are non-zero.
func (tc TraceContext) IsValid() bool {
	return tc.TraceID.IsValid() && tc.SpanID.IsValid()
}

// Flags renders the sampling flag in its wire form.
func (tc TraceContext) Flags() string {
	if tc.Sampled {
		return flagSampled
	}
	return flagNotSampled
}

// NewRoot starts a new trace. It is used at the origin of a causal chain
// and by consumers that receive an event without trace context.
func NewRoot(requestID string) TraceContext {
	return newRootWith(defaultGenerator, requestID)
}

func newRootWith(gen IDGenerator, requestID string) TraceContext {
	traceID, spanID := gen.NewIDs(context.Background())
	return TraceContext{
		TraceID:   traceID,
		SpanID:    spanID,
		Sampled:   true,
		RequestID: requestID,
	}
}

// Child returns the context for the next hop: same trace id, new span id.
func (tc TraceContext) Child() TraceContext {
	return tc.childWith(defaultGenerator)
}

func (tc TraceContext) childWith(gen IDGenerator) TraceContext {
	next := tc
	next.SpanID = gen.NewSpanID(context.Background(), tc.TraceID)
	return next
}

// ChildOf keeps the trace id and sampling flag of tc but takes the span id of a live span,
// so the event carries the span that actually produced it. A span from another trace, or one that
// still carries tc's own span id (a non-recording tracer echoes its parent), falls back to Child.
func (tc TraceContext) ChildOf(sc trace.SpanContext) TraceContext {
	if !sc.IsValid() || sc.TraceID() != tc.TraceID || sc.SpanID() == tc.SpanID {
		return tc.Child()
	}
	next := tc
	next.SpanID = sc.SpanID()
	return next
}

// SpanContext converts tc into a remote OpenTelemetry span context usable as a parent.
func (tc TraceContext) SpanContext() trace.SpanContext {
	var flags trace.TraceFlags
	if tc.Sampled {
		flags = trace.FlagsSampled
	}
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    tc.TraceID,
		SpanID:     tc.SpanID,
		TraceFlags: flags,
		Remote:     true,
	})
}

// FromSpanContext builds a TraceContext from an OpenTelemetry span context.
func FromSpanContext(sc trace.SpanContext, requestID string) (TraceContext, bool) {
	if !sc.IsValid() {
		return TraceContext{}, false
	}
	return TraceContext{
		TraceID:   sc.TraceID(),
		SpanID:    sc.SpanID(),
		Sampled:   sc.IsSampled(),
		RequestID: requestID,
	}, true
}

type contextKey struct{}

// WithContext stores tc in ctx.
func WithContext(ctx context.Context, tc TraceContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext returns the TraceContext stored by WithContext.
func FromContext(ctx context.Context) (TraceContext, bool) {
	if ctx == nil {
		return TraceContext{}, false
	}
	tc, ok := ctx.Value(contextKey{}).(TraceContext)
	return tc, ok
}
