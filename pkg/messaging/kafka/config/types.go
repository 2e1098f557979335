package config

import "time"

// Config represents the main Kafka configuration.
type Config struct {
	Brokers         string          `mapstructure:"brokers"`          // Comma-separated list of Kafka broker addresses (e.g., "localhost:9092,localhost:9093")
	ConsumersConfig ConsumersConfig `mapstructure:"consumers-config"` // Global and individual consumer configurations
	ProducerConfig  ProducerConfig  `mapstructure:"producer-config"`  // Producer-specific configuration
}

// ConsumersConfig holds global default settings and individual consumer configurations.
type ConsumersConfig struct {
	DefaultGroupID         string           `mapstructure:"default-group-id"`          // Default consumer group ID (applied to consumers without explicit group-id)
	DefaultAutoOffsetReset string           `mapstructure:"default-auto-offset-reset"` // Default offset reset policy: "earliest" or "latest"
	ConsumerConfig         []ConsumerConfig `mapstructure:"consumers"`                 // Individual consumer configurations
}

// ConsumerConfig represents configuration for an individual consumer loop.
type ConsumerConfig struct {
	Name            string        `mapstructure:"name"`              // Unique consumer name/identifier (required)
	Topic           string        `mapstructure:"topic"`             // Topic to consume from (required)
	GroupID         string        `mapstructure:"group-id"`          // Consumer group ID (defaults to DefaultGroupID)
	AutoOffsetReset string        `mapstructure:"auto-offset-reset"` // "earliest" or "latest" (defaults to DefaultAutoOffsetReset)
	BatchSize       int           `mapstructure:"batch-size"`        // Messages pulled per loop iteration (1-1000, default 10)
	PollTimeout     time.Duration `mapstructure:"poll-timeout"`      // Wait for the first message of a batch (default 1s)
	ConnectTimeout  time.Duration `mapstructure:"connect-timeout"`   // Bound for the topic metadata check on connect (default 10s)
	ReconnectDelay  time.Duration `mapstructure:"reconnect-delay"`   // Delay between failed connect attempts (default 5s)
	PullErrorDelay  time.Duration `mapstructure:"pull-error-delay"`  // Delay after a failed pull (default 1s)
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`  // Wait for in-flight handlers on stop (default 30s)
}

// ProducerConfig represents configuration for the event producer.
type ProducerConfig struct {
	ConnectTimeout time.Duration `mapstructure:"connect-timeout"` // Bound for one connect attempt (default 10s)
	RetryDelay     time.Duration `mapstructure:"retry-delay"`     // Delay between background connect attempts (default 5s)
	FlushTimeout   time.Duration `mapstructure:"flush-timeout"`   // Bound for the flush after each emit (default 100ms)
	Acks           string        `mapstructure:"acks"`            // "all", "1" or "0" (default "all")
}
