package payment

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultDelay              = 1 * time.Second
	DefaultFailureProbability = 0.1
)

// Config tunes the payment simulation. It is read from the optional "payment" section.
type Config struct {
	Delay              time.Duration `mapstructure:"delay"`
	FailureProbability float64       `mapstructure:"failure-probability"`
}

func DefaultConfig() Config {
	return Config{Delay: DefaultDelay, FailureProbability: DefaultFailureProbability}
}

func (c Config) Validate() error {
	if c.Delay < 0 {
		return fmt.Errorf("payment delay must not be negative, got: %v", c.Delay)
	}
	if c.FailureProbability < 0 || c.FailureProbability > 1 {
		return fmt.Errorf("payment failure probability must be between 0 and 1, got: %v", c.FailureProbability)
	}
	return nil
}

func newConfig(v *viper.Viper, log *zap.Logger) (Config, error) {
	cfg := DefaultConfig()
	// keys left out keep their defaults, so an explicit zero is honored
	if sub := v.Sub("payment"); sub != nil {
		if err := sub.Unmarshal(&cfg); err != nil {
			return cfg, fmt.Errorf("failed to load payment config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	log.Info("loaded payment config", zap.Any("config", cfg))
	return cfg, nil
}
