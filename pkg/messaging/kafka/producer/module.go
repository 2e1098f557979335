package producer

import (
	"context"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	"github.com/Sokol111/ecommerce-choreography/pkg/core/worker"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewProducerModule provides the shared *Producer as an Emitter and runs its connector in the background.
// A broker outage at startup does not fail the application; the readiness component turns ready
// on the first successful connect.
func NewProducerModule() fx.Option {
	return fx.Options(
		fx.Provide(
			provideProducer,
			func(p *Producer) Emitter { return p },
			worker.Register[*Producer]("kafka-producer"),
		),
	)
}

func provideProducer(
	lc fx.Lifecycle,
	log *zap.Logger,
	conf config.Config,
	readiness health.ComponentManager,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Producer, error) {
	markReady := readiness.AddComponent("kafka-producer")

	p, err := New(conf, log.With(zap.String("component", "producer")),
		WithOnConnect(markReady),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			p.Close()
			return nil
		},
	})
	return p, nil
}
