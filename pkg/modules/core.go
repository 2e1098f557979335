// Package modules bundles the infrastructure every choreography service runs on.
package modules

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/core"
	"go.uber.org/fx"
)

// NewCoreModule provides config, logger, readiness and workers for serviceName.
// An empty configPath falls back to CONFIG_FILE.
func NewCoreModule(serviceName, configPath string) fx.Option {
	opts := []core.Option{core.WithServiceName(serviceName)}
	if configPath != "" {
		opts = append(opts, core.WithConfigFile(configPath))
	}
	return core.NewCoreModule(opts...)
}
