package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/problems"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// recoveryMiddleware handles panics and converts them to 500 errors.
func recoveryMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					fields := append(requestFields(r),
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					logger.GetOr(r.Context(), log).Error("panic recovered", fields...)
					problems.Write(w, r, problems.New(http.StatusInternalServerError, "internal server error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func RecoveryModule(priority int) fx.Option {
	return Provide(func(log *zap.Logger) Middleware {
		return Middleware{Priority: priority, Handler: recoveryMiddleware(log)}
	})
}
