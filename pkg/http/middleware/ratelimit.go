package middleware

import (
	"net/http"
	"strings"

	"github.com/Sokol111/ecommerce-choreography/pkg/http/problems"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/server"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

// NewRateLimitMiddleware rejects requests above the configured rate with 429. Health checks are exempt.
func NewRateLimitMiddleware(conf server.RateLimitConfig, priority int) Middleware {
	if !conf.Enabled {
		return Middleware{Priority: priority}
	}

	limiter := rate.NewLimiter(rate.Limit(conf.RequestsPerSecond), conf.Burst)

	return Middleware{
		Priority: priority,
		Handler: func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if strings.HasPrefix(r.URL.Path, "/health/") {
					next.ServeHTTP(w, r)
					return
				}
				if !limiter.Allow() {
					problems.Write(w, r, problems.New(http.StatusTooManyRequests, "rate limit exceeded, please try again later"))
					return
				}
				next.ServeHTTP(w, r)
			})
		},
	}
}

func RateLimitModule(priority int) fx.Option {
	return Provide(func(conf server.Config) Middleware {
		return NewRateLimitMiddleware(conf.RateLimit, priority)
	})
}
