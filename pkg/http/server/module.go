package server

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type serverOptions struct {
	config *Config
}

type Option func(*serverOptions)

// WithServerConfig skips viper and uses cfg.
func WithServerConfig(cfg Config) Option {
	return func(opts *serverOptions) {
		opts.config = &cfg
	}
}

// NewHTTPServerModule provides Config and the *http.ServeMux routes register on, and serves the
// http.Handler found in the container.
func NewHTTPServerModule(opts ...Option) fx.Option {
	cfg := &serverOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(provideConfig),
		fx.Provide(http.NewServeMux),
		fx.Invoke(startHTTPServer),
	)
}

func startHTTPServer(lc fx.Lifecycle, log *zap.Logger, conf Config, handler http.Handler, readiness health.ComponentManager, shutdowner fx.Shutdowner) {
	srv := newServer(log.With(zap.String("component", "http-server")), conf, handler)
	markReady := readiness.AddComponent("http-server")

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Serve(markReady); err != nil {
					log.Error("HTTP server failed, shutting down application", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, conf.Connection.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
