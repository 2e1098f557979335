package config

import (
	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type dotenvConfig struct {
	path string
}

// DotEnvOption configures NewDotEnvModule.
type DotEnvOption func(*dotenvConfig)

// WithDotEnvPath loads path instead of ".env".
func WithDotEnvPath(path string) DotEnvOption {
	return func(cfg *dotenvConfig) {
		cfg.path = path
	}
}

// NewDotEnvModule loads an optional .env file into the process environment.
// Loading happens when the module is built, so env-backed providers see the values.
func NewDotEnvModule(opts ...DotEnvOption) fx.Option {
	cfg := &dotenvConfig{path: ".env"}
	for _, opt := range opts {
		opt(cfg)
	}

	err := godotenv.Load(cfg.path)

	return fx.Module("dotenv",
		fx.Invoke(func(log *zap.Logger) {
			if err != nil {
				log.Debug("no .env file loaded", zap.String("path", cfg.path))
				return
			}
			log.Info("loaded .env file", zap.String("path", cfg.path))
		}),
	)
}
