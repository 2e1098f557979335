package producer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/headers"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// mockClient is a test implementation of client.
type mockClient struct {
	produceFunc  func(msg *kafka.Message) error
	metadataFunc func() (*kafka.Metadata, error)

	mu            sync.Mutex
	produced      []*kafka.Message
	flushTimeouts []int
	events        chan kafka.Event
	closeOnce     sync.Once
	closed        atomic.Bool
}

func newMockClient() *mockClient {
	return &mockClient{events: make(chan kafka.Event, 16)}
}

func (m *mockClient) Produce(msg *kafka.Message, _ chan kafka.Event) error {
	if m.produceFunc != nil {
		if err := m.produceFunc(msg); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.produced = append(m.produced, msg)
	return nil
}

func (m *mockClient) Flush(timeoutMs int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushTimeouts = append(m.flushTimeouts, timeoutMs)
	return 0
}

func (m *mockClient) GetMetadata(*string, bool, int) (*kafka.Metadata, error) {
	if m.metadataFunc != nil {
		return m.metadataFunc()
	}
	return &kafka.Metadata{Brokers: []kafka.BrokerMetadata{{ID: 1, Host: "localhost", Port: 9092}}}, nil
}

func (m *mockClient) Events() chan kafka.Event {
	return m.events
}

func (m *mockClient) Close() {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		close(m.events)
	})
}

func (m *mockClient) messages() []*kafka.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*kafka.Message(nil), m.produced...)
}

// countingFactory hands out the given clients in order and counts calls.
type countingFactory struct {
	calls   atomic.Int32
	clients []*mockClient
	errs    []error
}

func (f *countingFactory) newClient(config.Config) (client, error) {
	i := int(f.calls.Add(1)) - 1
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.clients) {
		return f.clients[i], nil
	}
	return newMockClient(), nil
}

func testConfig() config.Config {
	cfg := config.Config{
		Brokers: "localhost:9092",
		ProducerConfig: config.ProducerConfig{
			ConnectTimeout: time.Second,
			RetryDelay:     10 * time.Millisecond,
		},
	}
	config.ApplyDefaults(&cfg)
	return cfg
}

func newTestProducer(t *testing.T, f *countingFactory, opts ...Option) *Producer {
	t.Helper()
	p, err := New(testConfig(), zap.NewNop(), append([]Option{withClientFactory(f.newClient)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func testTraceContext(t *testing.T) tracecontext.TraceContext {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("deadbeefdeadbeefdeadbeefdeadbeef")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)
	return tracecontext.TraceContext{TraceID: traceID, SpanID: spanID, Sampled: true}
}

func TestEmit_PublishesMergedPayload(t *testing.T) {
	mc := newMockClient()
	p := newTestProducer(t, &countingFactory{clients: []*mockClient{mc}})
	tc := testTraceContext(t)
	event := events.UserCreated{UserID: "u1", Email: "a@b.com", Name: "A", CreatedAt: "2024-01-01T00:00:00.000Z"}
	ctx := correlation.WithID(context.Background(), "corr-1")

	err := p.Emit(ctx, events.TopicUserCreated, event, tc)

	require.NoError(t, err)
	msgs := mc.messages()
	require.Len(t, msgs, 1)
	msg := msgs[0]
	assert.Equal(t, events.TopicUserCreated, *msg.TopicPartition.Topic)
	assert.Equal(t, "u1", string(msg.Key))
	assert.Equal(t, events.TypeUserCreated, headers.Get(msg.Headers, headers.EventType))
	assert.Equal(t, "corr-1", headers.Get(msg.Headers, headers.CorrelationID))
	assert.True(t, strings.HasPrefix(headers.Get(msg.Headers, "traceparent"), "00-deadbeefdeadbeefdeadbeefdeadbeef-"))

	rest, got, found, err := tracecontext.DecodeBytes(msg.Value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, tc.TraceID, got.TraceID)
	assert.Equal(t, tc.SpanID, got.SpanID)

	decoded, err := events.Unmarshal[events.UserCreated](rest)
	require.NoError(t, err)
	assert.Equal(t, event, *decoded)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &raw))
	assert.Len(t, raw, 5)
	assert.Equal(t, []int{100}, mc.flushTimeouts, "emit waits at most the configured flush timeout")
}

func TestEmit_InvalidTraceStartsNewRoot(t *testing.T) {
	mc := newMockClient()
	p := newTestProducer(t, &countingFactory{clients: []*mockClient{mc}})

	err := p.Emit(context.Background(), "t", map[string]any{"a": 1}, tracecontext.TraceContext{})

	require.NoError(t, err)
	require.Len(t, mc.messages(), 1)
	_, got, found, err := tracecontext.DecodeBytes(mc.messages()[0].Value)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, got.IsValid())
}

func TestEmit_Unavailable(t *testing.T) {
	tests := []struct {
		name    string
		factory *countingFactory
	}{
		{
			name:    "client creation fails",
			factory: &countingFactory{errs: []error{errors.New("no config")}},
		},
		{
			name: "metadata request fails",
			factory: &countingFactory{clients: []*mockClient{{
				events: make(chan kafka.Event, 1),
				metadataFunc: func() (*kafka.Metadata, error) {
					return nil, kafka.NewError(kafka.ErrTransport, "connection refused", false)
				},
			}}},
		},
		{
			name: "no brokers in metadata",
			factory: &countingFactory{clients: []*mockClient{{
				events:       make(chan kafka.Event, 1),
				metadataFunc: func() (*kafka.Metadata, error) { return &kafka.Metadata{}, nil },
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProducer(t, tt.factory)

			err := p.Emit(context.Background(), events.TopicUserCreated, events.UserCreated{UserID: "u1"}, testTraceContext(t))

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrProducerUnavailable)
			assert.False(t, p.IsConnected())
			for _, c := range tt.factory.clients {
				assert.Empty(t, c.messages())
				assert.True(t, c.closed.Load(), "failed client must be closed")
			}
		})
	}
}

func TestEmit_ProduceErrorIsNotRetried(t *testing.T) {
	var attempts atomic.Int32
	mc := newMockClient()
	mc.produceFunc = func(*kafka.Message) error {
		attempts.Add(1)
		return kafka.NewError(kafka.ErrQueueFull, "queue full", false)
	}
	p := newTestProducer(t, &countingFactory{clients: []*mockClient{mc}})

	err := p.Emit(context.Background(), "t", map[string]any{"a": 1}, testTraceContext(t))

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProducerUnavailable)
	var kafkaErr kafka.Error
	assert.True(t, errors.As(err, &kafkaErr))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestEmit_RejectsNonObjectPayload(t *testing.T) {
	mc := newMockClient()
	p := newTestProducer(t, &countingFactory{clients: []*mockClient{mc}})

	err := p.Emit(context.Background(), "t", []int{1, 2}, testTraceContext(t))

	require.Error(t, err)
	assert.ErrorIs(t, err, tracecontext.ErrNotJSONObject)
	assert.Empty(t, mc.messages())
}

func TestEmit_RecordsProducerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	mc := newMockClient()
	p := newTestProducer(t, &countingFactory{clients: []*mockClient{mc}}, WithTracerProvider(tp))
	tc := testTraceContext(t)

	require.NoError(t, p.Emit(context.Background(), events.TopicOrderCreated, events.OrderCreated{OrderID: "o1"}, tc))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, trace.SpanKindProducer, spans[0].SpanKind())
	assert.Equal(t, tc.TraceID, spans[0].SpanContext().TraceID())
	assert.Equal(t, tc.SpanID, spans[0].Parent().SpanID())

	traceparent := headers.Get(mc.messages()[0].Headers, "traceparent")
	assert.Contains(t, traceparent, spans[0].SpanContext().SpanID().String())
}

func TestConnect(t *testing.T) {
	t.Run("is idempotent", func(t *testing.T) {
		f := &countingFactory{}
		p := newTestProducer(t, f)

		require.NoError(t, p.Connect(context.Background()))
		require.NoError(t, p.Connect(context.Background()))

		assert.Equal(t, int32(1), f.calls.Load())
		assert.True(t, p.IsConnected())
	})

	t.Run("concurrent callers share one attempt", func(t *testing.T) {
		release := make(chan struct{})
		mc := newMockClient()
		mc.metadataFunc = func() (*kafka.Metadata, error) {
			<-release
			return &kafka.Metadata{Brokers: []kafka.BrokerMetadata{{ID: 1}}}, nil
		}
		f := &countingFactory{clients: []*mockClient{mc}}
		p := newTestProducer(t, f)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, p.Connect(context.Background()))
			}()
		}
		time.Sleep(20 * time.Millisecond)
		close(release)
		wg.Wait()

		assert.Equal(t, int32(1), f.calls.Load())
	})

	t.Run("calls on-connect hook once", func(t *testing.T) {
		var hooks atomic.Int32
		p := newTestProducer(t, &countingFactory{}, WithOnConnect(func() { hooks.Add(1) }))

		require.NoError(t, p.Connect(context.Background()))
		require.NoError(t, p.Connect(context.Background()))

		assert.Equal(t, int32(1), hooks.Load())
	})

	t.Run("fails after close", func(t *testing.T) {
		p := newTestProducer(t, &countingFactory{})
		p.Close()

		assert.Error(t, p.Connect(context.Background()))
	})
}

func TestRun(t *testing.T) {
	t.Run("retries until connected", func(t *testing.T) {
		f := &countingFactory{errs: []error{errors.New("down"), errors.New("down")}}
		p := newTestProducer(t, f)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)

		go func() { done <- p.Run(ctx) }()

		assert.Eventually(t, p.IsConnected, time.Second, 5*time.Millisecond)
		assert.Equal(t, int32(3), f.calls.Load())

		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("Run did not return in time")
		}
	})

	t.Run("reconnects after brokers go down", func(t *testing.T) {
		first := newMockClient()
		f := &countingFactory{clients: []*mockClient{first}}
		p := newTestProducer(t, f)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = p.Run(ctx) }()
		require.Eventually(t, p.IsConnected, time.Second, 5*time.Millisecond)

		first.events <- kafka.NewError(kafka.ErrAllBrokersDown, "all brokers down", false)

		assert.Eventually(t, func() bool { return f.calls.Load() == 2 && p.IsConnected() }, time.Second, 5*time.Millisecond)
		assert.Eventually(t, first.closed.Load, time.Second, 5*time.Millisecond)
	})

	t.Run("returns when cancelled before connecting", func(t *testing.T) {
		p := newTestProducer(t, &countingFactory{errs: []error{errors.New("down")}})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		assert.NoError(t, p.Run(ctx))
	})
}

func TestClose(t *testing.T) {
	t.Run("safe when never connected", func(t *testing.T) {
		p, err := New(testConfig(), zap.NewNop(), withClientFactory((&countingFactory{}).newClient))
		require.NoError(t, err)

		assert.NotPanics(t, p.Close)
		assert.NotPanics(t, p.Close)
	})

	t.Run("flushes and closes the client", func(t *testing.T) {
		mc := newMockClient()
		p, err := New(testConfig(), zap.NewNop(), withClientFactory((&countingFactory{clients: []*mockClient{mc}}).newClient))
		require.NoError(t, err)
		require.NoError(t, p.Connect(context.Background()))

		p.Close()

		assert.True(t, mc.closed.Load())
		assert.Len(t, mc.flushTimeouts, 1)
		assert.False(t, p.IsConnected())
	})
}
