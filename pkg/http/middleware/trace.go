package middleware

import (
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in and out. It doubles as the correlation id of the events
// the request produces.
const RequestIDHeader = "X-Request-ID"

// traceOriginMiddleware starts the trace of the event chain. It continues a live server span or a
// W3C traceparent when present and mints a root otherwise. The TraceContext, the correlation id and
// a request logger are stored in the request context.
func traceOriginMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	propagator := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = correlation.NewID()
			}

			tc := originTrace(r, propagator, requestID)

			ctx := tracecontext.WithContext(r.Context(), tc)
			ctx = correlation.WithID(ctx, requestID)
			ctx = logger.With(ctx, log.With(tc.LogFields(requestID, "")...))

			w.Header().Set(RequestIDHeader, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func originTrace(r *http.Request, propagator propagation.TextMapPropagator, requestID string) tracecontext.TraceContext {
	// a live server span already is this hop
	if tc, ok := tracecontext.FromSpanContext(trace.SpanContextFromContext(r.Context()), requestID); ok {
		return tc
	}

	remote := trace.SpanContextFromContext(propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header)))
	if tc, ok := tracecontext.FromSpanContext(remote, requestID); ok {
		return tc.Child()
	}
	return tracecontext.NewRoot(requestID)
}

func TraceOriginModule(priority int) fx.Option {
	return Provide(func(log *zap.Logger) Middleware {
		return Middleware{Priority: priority, Handler: traceOriginMiddleware(log)}
	})
}
