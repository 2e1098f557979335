package modules

import (
	apphttp "github.com/Sokol111/ecommerce-choreography/pkg/http"
	"go.uber.org/fx"
)

// NewHTTPModule provides the server, the middleware chain and the health routes.
func NewHTTPModule() fx.Option {
	return apphttp.NewHTTPModule()
}
