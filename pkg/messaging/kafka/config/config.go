package config

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewKafkaConfigModule provides Config loaded from the "kafka" section.
func NewKafkaConfigModule() fx.Option {
	return fx.Provide(newConfig)
}

func newConfig(v *viper.Viper, logger *zap.Logger) (Config, error) {
	var cfg Config
	sub := v.Sub("kafka")
	if sub == nil {
		return cfg, fmt.Errorf("kafka config section is missing")
	}
	if err := sub.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to load kafka config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return cfg, fmt.Errorf("invalid kafka config: %w", err)
	}

	logger.Info("loaded kafka config", zap.Any("config", cfg))
	return cfg, nil
}

// ConsumerByName returns the consumer configuration registered under name.
func (c Config) ConsumerByName(name string) (ConsumerConfig, error) {
	for _, consumer := range c.ConsumersConfig.ConsumerConfig {
		if consumer.Name == name {
			return consumer, nil
		}
	}
	return ConsumerConfig{}, fmt.Errorf("no consumer config found for consumer name: %s", name)
}
