package modules

import "go.uber.org/fx"

// NewServiceModule is the full stack of an HTTP-facing service that produces and consumes events.
func NewServiceModule(serviceName, configPath string, service fx.Option) fx.Option {
	return fx.Options(
		NewCoreModule(serviceName, configPath),
		NewObservabilityModule(),
		NewMessagingModule(),
		NewPersistenceModule(),
		NewHTTPModule(),
		service,
	)
}
