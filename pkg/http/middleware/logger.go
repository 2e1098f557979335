package middleware

import (
	"net/http"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// loggerMiddleware logs incoming HTTP requests.
func loggerMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}

			next.ServeHTTP(rec, r)

			fields := append(requestFields(r),
				zap.Int("status", rec.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("user_agent", r.UserAgent()),
			)
			l := logger.GetOr(r.Context(), log)
			if rec.status >= http.StatusInternalServerError {
				l.Warn("request failed", fields...)
				return
			}
			l.Debug("incoming request", fields...)
		})
	}
}

func LoggerModule(priority int) fx.Option {
	return Provide(func(log *zap.Logger) Middleware {
		return Middleware{Priority: priority, Handler: loggerMiddleware(log)}
	})
}
