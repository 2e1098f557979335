package logger

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/config"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

type moduleOptions struct {
	config *Config
}

// Option configures the logging module.
type Option func(*moduleOptions)

// WithLoggerConfig uses cfg instead of the "logger" viper section.
func WithLoggerConfig(cfg Config) Option {
	return func(o *moduleOptions) {
		o.config = &cfg
	}
}

// NewZapLoggingModule provides *zap.Logger and zap.AtomicLevel and routes fx events through zap.
func NewZapLoggingModule(opts ...Option) fx.Option {
	o := &moduleOptions{}
	for _, opt := range opts {
		opt(o)
	}

	configProvider := fx.Provide(newConfig)
	if o.config != nil {
		configProvider = fx.Supply(*o.config)
	}

	return fx.Options(
		configProvider,
		fx.Provide(provideLogger),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
	)
}

func provideLogger(lc fx.Lifecycle, conf Config, app config.AppConfig) (*zap.Logger, zap.AtomicLevel, error) {
	log, level, err := newLogger(conf)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("failed to create logger: %w", err)
	}
	log = log.With(
		zap.String("service", app.ServiceName),
		zap.String("env", string(app.Environment)),
	)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return syncLogger(log)
		},
	})
	return log, level, nil
}

// syncLogger ignores the EINVAL returned when syncing stderr on some platforms.
func syncLogger(log *zap.Logger) error {
	err := log.Sync()
	var pathErr *os.PathError
	if errors.As(err, &pathErr) && pathErr.Err.Error() == "invalid argument" {
		return nil
	}
	return err
}
