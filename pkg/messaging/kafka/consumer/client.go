package consumer

import (
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// client is the subset of *kafka.Consumer used by Loop.
type client interface {
	SubscribeTopics(topics []string, rebalanceCb kafka.RebalanceCb) error
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	StoreMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	GetMetadata(topic *string, allTopics bool, timeoutMs int) (*kafka.Metadata, error)
	Close() error
}

type clientFactory func(brokers string, conf config.ConsumerConfig) (client, error)

// newKafkaClient stores offsets explicitly and lets auto-commit ship them.
func newKafkaClient(brokers string, conf config.ConsumerConfig) (client, error) {
	c, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":        brokers,
		"group.id":                 conf.GroupID,
		"enable.auto.commit":       true,
		"enable.auto.offset.store": false,
		"auto.commit.interval.ms":  1000,
		"auto.offset.reset":        conf.AutoOffsetReset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer %s: %w", conf.Name, err)
	}
	return c, nil
}
