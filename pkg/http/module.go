package http

import (
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/http/health"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/middleware"
	"github.com/Sokol111/ecommerce-choreography/pkg/http/server"
	"go.uber.org/fx"
)

type httpOptions struct {
	serverConfig *server.Config
}

type Option func(*httpOptions)

// WithServerConfig skips viper and uses cfg.
func WithServerConfig(cfg server.Config) Option {
	return func(opts *httpOptions) {
		opts.serverConfig = &cfg
	}
}

// NewHTTPModule provides the server, the middleware chain and the health routes.
// Services register their routes on the provided *http.ServeMux.
func NewHTTPModule(opts ...Option) fx.Option {
	cfg := &httpOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		serverModule(cfg),
		middleware.NewMiddlewareModule(),
		health.NewHealthRoutesModule(),
		fx.Provide(func(mux *http.ServeMux, p middleware.Params) http.Handler {
			return middleware.Chain(mux, p.Middlewares)
		}),
	)
}

func serverModule(cfg *httpOptions) fx.Option {
	if cfg.serverConfig != nil {
		return server.NewHTTPServerModule(server.WithServerConfig(*cfg.serverConfig))
	}
	return server.NewHTTPServerModule()
}
