package modules

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"go.uber.org/fx"
)

// NewMessagingModule provides the kafka config and the shared producer.
// Consumers are registered by the services with consumer.RegisterHandlerAndConsumer.
func NewMessagingModule() fx.Option {
	return fx.Options(
		config.NewKafkaConfigModule(),
		producer.NewProducerModule(),
	)
}
