// Package producer publishes domain events to Kafka with the trace context embedded in the payload.
package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/headers"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrProducerUnavailable is returned by Emit when no broker session could be established.
// Nothing is published in that case.
var ErrProducerUnavailable = errors.New("kafka producer unavailable")

var errClosed = errors.New("producer is closed")

const closeFlushTimeout = 5 * time.Second

// Emitter publishes one event to one topic.
type Emitter interface {
	Emit(ctx context.Context, topic string, payload any, tc tracecontext.TraceContext) error
}

// Option configures a Producer.
type Option func(*Producer)

// WithOnConnect registers fn to run once, after the first successful connect.
func WithOnConnect(fn func()) Option {
	return func(p *Producer) {
		p.onConnect = fn
	}
}

// WithTracerProvider sets the provider for producer spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Producer) {
		p.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider for producer counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Producer) {
		p.meterProvider = mp
	}
}

func withClientFactory(f clientFactory) Option {
	return func(p *Producer) {
		p.newClient = f
	}
}

// Producer owns one Kafka producer session and reconnects it when the brokers go away.
type Producer struct {
	conf           config.Config
	log            *zap.Logger
	newClient      clientFactory
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	metrics        *producerMetrics
	propagator     propagation.TextMapPropagator
	onConnect      func()
	connectOnce    sync.Once

	group  singleflight.Group
	mu     sync.RWMutex
	client client
	closed bool
	lost   chan struct{}
	drains conc.WaitGroup
}

// New creates a disconnected Producer. Call Connect or Run to open the session.
func New(conf config.Config, log *zap.Logger, opts ...Option) (*Producer, error) {
	p := &Producer{
		conf:           conf,
		log:            log,
		newClient:      newKafkaClient,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
		propagator:     propagation.TraceContext{},
		lost:           make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.tracer = p.tracerProvider.Tracer("kafka-producer")
	metrics, err := newProducerMetrics(p.meterProvider.Meter("kafka-producer"))
	if err != nil {
		return nil, err
	}
	p.metrics = metrics
	return p, nil
}

// IsConnected reports whether a verified broker session is open.
func (p *Producer) IsConnected() bool {
	return p.currentClient() != nil
}

func (p *Producer) currentClient() client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Connect opens the broker session if it is not open yet.
// Concurrent callers share a single in-flight attempt.
func (p *Producer) Connect(ctx context.Context) error {
	if p.IsConnected() {
		return nil
	}
	_, err, _ := p.group.Do("connect", func() (any, error) {
		if p.IsConnected() {
			return nil, nil
		}
		return nil, p.connect(ctx)
	})
	return err
}

func (p *Producer) connect(ctx context.Context) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return errClosed
	}

	c, err := p.newClient(p.conf)
	if err != nil {
		return err
	}
	if err := checkBrokers(ctx, c, p.conf.ProducerConfig.ConnectTimeout); err != nil {
		c.Close()
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		c.Close()
		return errClosed
	}
	p.client = c
	p.mu.Unlock()

	p.drains.Go(func() { p.drainEvents(c) })
	p.log.Info("kafka producer connected", zap.String("brokers", p.conf.Brokers))

	if p.onConnect != nil {
		p.connectOnce.Do(p.onConnect)
	}
	return nil
}

// Run keeps the session open until ctx is cancelled.
// Failed attempts are retried after the configured retry delay; Run itself never fails.
func (p *Producer) Run(ctx context.Context) error {
	retry := backoff.NewConstantBackOff(p.conf.ProducerConfig.RetryDelay)
	for {
		if err := p.Connect(ctx); err != nil {
			if ctx.Err() != nil || errors.Is(err, errClosed) {
				return nil
			}
			delay := retry.NextBackOff()
			p.log.Warn("kafka producer connect failed, retrying",
				zap.Duration("retry_in", delay),
				zap.Error(err))
			if !sleep(ctx, delay) {
				return nil
			}
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-p.lost:
		}
	}
}

// Emit publishes payload to topic with tc merged under the reserved trace key.
// A disconnected producer tries one synchronous connect first and returns
// ErrProducerUnavailable if that fails. Send failures are returned, not retried.
//
// After the hand-off Emit flushes for at most flush-timeout (100ms by default) and then returns
// even if messages are still queued; delivery reports are drained by Run. The flush waits on the
// whole client queue, so concurrent callers may each spend up to that bound.
func (p *Producer) Emit(ctx context.Context, topic string, payload any, tc tracecontext.TraceContext) error {
	attrs := metric.WithAttributes(attribute.String("topic", topic))

	if err := p.Connect(ctx); err != nil {
		p.metrics.failed.Add(ctx, 1, attrs)
		return fmt.Errorf("%w: %v", ErrProducerUnavailable, err)
	}
	c := p.currentClient()
	if c == nil {
		p.metrics.failed.Add(ctx, 1, attrs)
		return ErrProducerUnavailable
	}

	if !tc.IsValid() {
		tc = tracecontext.NewRoot(tc.RequestID)
		p.log.Debug("emitting without trace context, started a new trace", zap.String("topic", topic))
	}

	body, err := tracecontext.Merge(payload, tc)
	if err != nil {
		p.metrics.failed.Add(ctx, 1, attrs)
		return fmt.Errorf("failed to encode payload for topic %s: %w", topic, err)
	}

	ctx, span := p.tracer.Start(trace.ContextWithRemoteSpanContext(ctx, tc.SpanContext()), topic+" publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", topic),
		),
	)
	defer span.End()

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          body,
		Headers:        p.messageHeaders(ctx, span.SpanContext(), tc, payload),
	}
	if e, ok := payload.(events.Event); ok {
		msg.Key = []byte(e.Key())
	}

	if err := c.Produce(msg, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.metrics.failed.Add(ctx, 1, attrs)
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}
	if queued := c.Flush(int(p.conf.ProducerConfig.FlushTimeout.Milliseconds())); queued > 0 {
		p.log.Debug("flush window elapsed with messages still queued", zap.Int("queued", queued))
	}

	p.metrics.emitted.Add(ctx, 1, attrs)
	return nil
}

func (p *Producer) messageHeaders(ctx context.Context, sc trace.SpanContext, tc tracecontext.TraceContext, payload any) []kafka.Header {
	var hs []kafka.Header
	if e, ok := payload.(events.Event); ok {
		hs = append(hs, kafka.Header{Key: headers.EventType, Value: []byte(e.EventType())})
	}
	if id, ok := correlation.FromContext(ctx); ok {
		hs = append(hs, kafka.Header{Key: headers.CorrelationID, Value: []byte(id)})
	}

	if !sc.IsValid() {
		sc = tc.SpanContext()
	}
	carrier := propagation.MapCarrier{}
	p.propagator.Inject(trace.ContextWithSpanContext(ctx, sc), carrier)
	return headers.FromCarrier(hs, carrier)
}

func (p *Producer) drainEvents(c client) {
	for ev := range c.Events() {
		switch e := ev.(type) {
		case *kafka.Message:
			if e.TopicPartition.Error == nil {
				continue
			}
			topic := ""
			if e.TopicPartition.Topic != nil {
				topic = *e.TopicPartition.Topic
			}
			p.log.Error("failed to deliver message",
				zap.String("topic", topic),
				zap.Error(e.TopicPartition.Error))
			p.metrics.failed.Add(context.Background(), 1, metric.WithAttributes(attribute.String("topic", topic)))
		case kafka.Error:
			if e.IsFatal() || e.Code() == kafka.ErrAllBrokersDown {
				p.log.Warn("kafka producer lost broker connection", zap.Error(e))
				p.disconnect(c)
				continue
			}
			p.log.Warn("kafka producer error", zap.Error(e))
		}
	}
}

// disconnect drops c if it is still the active client and wakes up Run.
func (p *Producer) disconnect(c client) {
	p.mu.Lock()
	if p.client != c {
		p.mu.Unlock()
		return
	}
	p.client = nil
	p.mu.Unlock()

	// Close blocks until the events channel is closed, which the caller is still draining.
	p.drains.Go(c.Close)

	select {
	case p.lost <- struct{}{}:
	default:
	}
}

// Close flushes pending messages and closes the session. It is safe to call when never connected.
func (p *Producer) Close() {
	p.mu.Lock()
	p.closed = true
	c := p.client
	p.client = nil
	p.mu.Unlock()

	if c != nil {
		if queued := c.Flush(int(closeFlushTimeout.Milliseconds())); queued > 0 {
			p.log.Warn("closing producer with undelivered messages", zap.Int("queued", queued))
		}
		c.Close()
	}
	p.drains.Wait()
	p.log.Info("kafka producer closed")
}
