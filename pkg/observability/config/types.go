package config

import "time"

const (
	DefaultMetricsInterval = 10 * time.Second
	DefaultSampleRatio     = 1.0
	DefaultShutdownTimeout = 5 * time.Second

	// DefaultRuntimeStatsInterval is the minimum interval between runtime memstats reads.
	DefaultRuntimeStatsInterval = time.Second

	// Component names registered with readiness.
	TracingComponentName = "tracing"
	MetricsComponentName = "metrics"
)

// Config holds all observability configuration.
type Config struct {
	OtelCollectorEndpoint string        `mapstructure:"otel-collector-endpoint"`
	Tracing               TracingConfig `mapstructure:"tracing"`
	Metrics               MetricsConfig `mapstructure:"metrics"`
}

type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// SampleRatio applies to root spans only; child spans follow their parent.
	SampleRatio float64 `mapstructure:"sample-ratio"`
}

type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}
