// Package observability provides the OpenTelemetry tracer and meter providers used by the producer,
// the consumer loops, the mongo monitor and the HTTP middleware. Both fall back to noop providers
// when disabled.
package observability

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/observability/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/observability/metrics"
	"github.com/Sokol111/ecommerce-choreography/pkg/observability/tracing"
	"go.uber.org/fx"
)

type observabilityOptions struct {
	config         *config.Config
	disableTracing bool
	disableMetrics bool
}

type Option func(*observabilityOptions)

// WithConfig skips viper and uses cfg.
func WithConfig(cfg config.Config) Option {
	return func(opts *observabilityOptions) {
		opts.config = &cfg
	}
}

// WithoutTracing forces the noop tracer provider.
func WithoutTracing() Option {
	return func(opts *observabilityOptions) {
		opts.disableTracing = true
	}
}

// WithoutMetrics forces the noop meter provider.
func WithoutMetrics() Option {
	return func(opts *observabilityOptions) {
		opts.disableMetrics = true
	}
}

// NewObservabilityModule provides trace.TracerProvider and metric.MeterProvider.
func NewObservabilityModule(opts ...Option) fx.Option {
	cfg := &observabilityOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		configModule(cfg),
		tracing.NewTracingModule(),
		metrics.NewMetricsModule(),
	)
}

func configModule(opts *observabilityOptions) fx.Option {
	var configOpts []config.Option

	if opts.config != nil {
		configOpts = append(configOpts, config.WithConfig(*opts.config))
	}
	if opts.disableTracing {
		configOpts = append(configOpts, config.WithDisableTracing())
	}
	if opts.disableMetrics {
		configOpts = append(configOpts, config.WithDisableMetrics())
	}

	return config.NewObservabilityConfigModule(configOpts...)
}
