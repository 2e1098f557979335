package payment

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ConsumerName is the kafka consumer entry that feeds OrderCreatedHandler.
const ConsumerName = "order-created"

// NewPaymentModule consumes order.created, publishes payment.completed and serves the payment read routes.
func NewPaymentModule() fx.Option {
	return fx.Module("payment",
		fx.Provide(
			fx.Private,
			newConfig,
			func(m mongo.Mongo) (*repository, error) {
				return newRepository(m.GetCollection(collectionName))
			},
			func(r *repository) Repository { return r },
			newRoutes,
		),
		consumer.RegisterHandlerAndConsumer(ConsumerName, provideHandler),
		fx.Invoke(func(lc fx.Lifecycle, r *repository, h *routes, mux *http.ServeMux) {
			h.register(mux)
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error { return r.ensureIndexes(ctx) },
			})
		}),
	)
}

func provideHandler(repo Repository, emitter producer.Emitter, log *zap.Logger, conf Config, mp metric.MeterProvider) (*OrderCreatedHandler, error) {
	return NewOrderCreatedHandler(repo, emitter, log, WithConfig(conf), WithMeterProvider(mp))
}
