package consumer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type readResult struct {
	msg *kafka.Message
	err error
}

// mockClient is a test implementation of client fed from a scripted queue.
type mockClient struct {
	metadataFunc  func(topic string) (*kafka.Metadata, error)
	subscribeFunc func(topics []string) error

	mu         sync.Mutex
	queue      []readResult
	stored     []*kafka.Message
	subscribed []string
	closed     atomic.Bool
}

func newMockClient(results ...readResult) *mockClient {
	return &mockClient{queue: results}
}

func (m *mockClient) push(results ...readResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

func (m *mockClient) SubscribeTopics(topics []string, _ kafka.RebalanceCb) error {
	if m.subscribeFunc != nil {
		if err := m.subscribeFunc(topics); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribed = append(m.subscribed, topics...)
	return nil
}

func (m *mockClient) ReadMessage(timeout time.Duration) (*kafka.Message, error) {
	m.mu.Lock()
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.mu.Unlock()
		return next.msg, next.err
	}
	m.mu.Unlock()

	time.Sleep(min(timeout, 2*time.Millisecond))
	return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
}

func (m *mockClient) StoreMessage(msg *kafka.Message) ([]kafka.TopicPartition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored = append(m.stored, msg)
	return []kafka.TopicPartition{msg.TopicPartition}, nil
}

func (m *mockClient) GetMetadata(topic *string, _ bool, _ int) (*kafka.Metadata, error) {
	if m.metadataFunc != nil {
		return m.metadataFunc(*topic)
	}
	return &kafka.Metadata{
		Topics: map[string]kafka.TopicMetadata{
			*topic: {Topic: *topic, Partitions: []kafka.PartitionMetadata{{ID: 0}}},
		},
	}, nil
}

func (m *mockClient) Close() error {
	m.closed.Store(true)
	return nil
}

func (m *mockClient) storedOffsets() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	offsets := make([]int64, 0, len(m.stored))
	for _, msg := range m.stored {
		offsets = append(offsets, int64(msg.TopicPartition.Offset))
	}
	return offsets
}

// mockFactory hands out clients in order; errs[i] fails the i-th call.
type mockFactory struct {
	calls   atomic.Int32
	clients []*mockClient
	errs    []error
}

func (f *mockFactory) newClient(string, config.ConsumerConfig) (client, error) {
	i := int(f.calls.Add(1)) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.clients) {
		return f.clients[i], nil
	}
	return newMockClient(), nil
}
