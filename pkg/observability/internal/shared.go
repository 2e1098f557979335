package internal

import (
	"context"
	"net/http"
	"strings"

	appconfig "github.com/Sokol111/ecommerce-choreography/pkg/core/config"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// ExcludedPaths are never traced or measured.
var ExcludedPaths = []string{"/health"}

// NewResource describes the running service.
func NewResource(ctx context.Context, appCfg appconfig.AppConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(appCfg.ServiceName),
			semconv.ServiceVersionKey.String(appCfg.ServiceVersion),
			semconv.DeploymentEnvironmentNameKey.String(string(appCfg.Environment)),
		),
	)
}

// FilterPaths reports whether r should be instrumented.
func FilterPaths(r *http.Request) bool {
	return !lo.SomeBy(ExcludedPaths, func(excluded string) bool {
		return strings.HasPrefix(r.URL.Path, excluded)
	})
}
