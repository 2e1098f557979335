package mongo

import (
	"context"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type mongoOptions struct {
	config *Config
}

type Option func(*mongoOptions)

// WithMongoConfig skips viper and uses cfg.
func WithMongoConfig(cfg Config) Option {
	return func(opts *mongoOptions) {
		opts.config = &cfg
	}
}

// NewMongoModule provides Mongo, connected on start and disconnected on stop.
func NewMongoModule(opts ...Option) fx.Option {
	cfg := &mongoOptions{}
	for _, opt := range opts {
		opt(cfg)
	}

	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			provideConfig,
			provideMongo,
		),
	)
}

func provideMongo(lc fx.Lifecycle, log *zap.Logger, conf Config, readiness health.ComponentManager, tp trace.TracerProvider) (Mongo, error) {
	m, err := newMongo(log.With(zap.String("component", "mongo")), conf, tp)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("mongo")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := m.connect(ctx); err != nil {
				return err
			}
			markReady()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return m.disconnect(ctx)
		},
	})

	return m, nil
}
