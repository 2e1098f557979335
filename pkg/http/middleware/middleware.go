// Package middleware holds the net/http middleware chain shared by every service.
//
// Execution order (by priority, lower = outer):
//
//	10 - Recovery     - catches panics
//	20 - Tracing      - otelhttp server span (provided by the tracing module when enabled)
//	30 - TraceOrigin  - trace context, request id, request logger
//	40 - RateLimit    - limits requests/second
//	50 - Logger       - logs requests
package middleware

import (
	"net/http"
	"slices"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Middleware is a net/http middleware with priority. A nil Handler is skipped.
type Middleware struct {
	Priority int
	Handler  func(http.Handler) http.Handler
}

// Params collects every middleware registered in the "http_mw" group.
type Params struct {
	fx.In
	Middlewares []Middleware `group:"http_mw"`
}

// Chain wraps h so that the lowest priority runs first.
func Chain(h http.Handler, mws []Middleware) http.Handler {
	sorted := slices.Clone(mws)
	slices.SortStableFunc(sorted, func(a, b Middleware) int { return a.Priority - b.Priority })

	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i].Handler != nil {
			h = sorted[i].Handler(h)
		}
	}
	return h
}

// Provide registers constructor's Middleware in the "http_mw" group.
func Provide(constructor any) fx.Option {
	return fx.Provide(fx.Annotate(constructor, fx.ResultTags(`group:"http_mw"`)))
}

// NewMiddlewareModule provides the default chain.
func NewMiddlewareModule() fx.Option {
	return fx.Options(
		RecoveryModule(10),
		TraceOriginModule(30),
		RateLimitModule(40),
		LoggerModule(50),
	)
}

func requestFields(r *http.Request) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("query", r.URL.RawQuery),
		zap.String("client_ip", r.RemoteAddr),
	}
}

// statusRecorder remembers the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}
