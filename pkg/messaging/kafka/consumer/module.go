package consumer

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/core/health"
	"github.com/Sokol111/ecommerce-choreography/pkg/core/worker"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// RegisterHandlerAndConsumer wires the consumer named consumerName in the kafka config to the Handler
// built by handlerConstructor, and runs its loop as a background worker. A loop that fails or panics
// shuts the application down instead of leaving the topic unconsumed.
func RegisterHandlerAndConsumer(consumerName string, handlerConstructor any) fx.Option {
	return fx.Module(
		consumerName,
		fx.Provide(
			fx.Annotate(
				handlerConstructor,
				fx.As(new(Handler)),
			),
			func(log *zap.Logger, conf config.Config, handler Handler, readiness health.ComponentManager,
				tp trace.TracerProvider, mp metric.MeterProvider,
			) (*Loop, error) {
				return provideLoop(consumerName, log, conf, handler, readiness, tp, mp)
			},
			fx.Private,
		),
		fx.Provide(worker.Register[*Loop]("consumer-"+consumerName, worker.WithShutdown())),
	)
}

func provideLoop(
	consumerName string,
	log *zap.Logger,
	conf config.Config,
	handler Handler,
	readiness health.ComponentManager,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) (*Loop, error) {
	consumerConf, err := conf.ConsumerByName(consumerName)
	if err != nil {
		return nil, err
	}

	markReady := readiness.AddComponent("kafka-consumer-" + consumerName)
	return New(conf.Brokers, consumerConf, handler,
		log.With(
			zap.String("component", "consumer"),
			zap.String("consumer_name", consumerConf.Name),
			zap.String("topic", consumerConf.Topic),
			zap.String("group_id", consumerConf.GroupID),
		),
		WithOnSubscribed(markReady),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)
}
