package modules

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence/mongo"
	"go.uber.org/fx"
)

// NewPersistenceModule provides the mongo client.
func NewPersistenceModule() fx.Option {
	return mongo.NewMongoModule()
}
