package producer

import (
	"fmt"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// client is the subset of *kafka.Producer used by Producer.
type client interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
	Flush(timeoutMs int) int
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	Events() chan kafka.Event
	Close()
}

type clientFactory func(conf config.Config) (client, error)

func newKafkaClient(conf config.Config) (client, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":       conf.Brokers,
		"acks":                    conf.ProducerConfig.Acks,
		"socket.keepalive.enable": true,
		"go.logs.channel.enable":  false,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}
	return p, nil
}
