package order

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.uber.org/fx"
)

// ConsumerName is the kafka consumer entry that feeds UserCreatedHandler.
const ConsumerName = "user-created"

// NewOrderModule consumes user.created, publishes order.created and serves the order read routes.
func NewOrderModule() fx.Option {
	return fx.Module("order",
		fx.Provide(
			fx.Private,
			func(m mongo.Mongo) (*repository, error) {
				return newRepository(m.GetCollection(collectionName))
			},
			func(r *repository) Repository { return r },
			newRoutes,
		),
		consumer.RegisterHandlerAndConsumer(ConsumerName, NewUserCreatedHandler),
		fx.Invoke(func(lc fx.Lifecycle, r *repository, h *routes, mux *http.ServeMux) {
			h.register(mux)
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error { return r.ensureIndexes(ctx) },
			})
		}),
	)
}
