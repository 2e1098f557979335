package user

import (
	"context"
	"net/http"

	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.uber.org/fx"
)

// NewUserModule serves POST /users and GET /users/{id} and publishes user.created.
// It needs a mongo.Mongo, a producer.Emitter and the *http.ServeMux in the container.
func NewUserModule() fx.Option {
	return fx.Module("user",
		fx.Provide(
			fx.Private,
			func(m mongo.Mongo) (*repository, error) {
				return newRepository(m.GetCollection(collectionName))
			},
			func(r *repository) Repository { return r },
			NewService,
			newHandler,
		),
		fx.Invoke(func(lc fx.Lifecycle, r *repository, h *handler, mux *http.ServeMux) {
			h.register(mux)
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error { return r.ensureIndexes(ctx) },
			})
		}),
	)
}
