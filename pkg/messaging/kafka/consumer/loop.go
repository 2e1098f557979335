// Package consumer runs one pull loop per subscribed topic and dispatches each message to a Handler.
package consumer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/config"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/cenkalti/backoff/v4"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

var errAlreadyStarted = errors.New("consumer loop already started")

// Option configures a Loop.
type Option func(*Loop)

// WithOnSubscribed registers fn to run once, after the first successful subscription.
func WithOnSubscribed(fn func()) Option {
	return func(l *Loop) {
		l.onSubscribed = fn
	}
}

// WithTracerProvider sets the provider for consumer spans.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(l *Loop) {
		l.tracerProvider = tp
	}
}

// WithMeterProvider sets the provider for consumer counters.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(l *Loop) {
		l.meterProvider = mp
	}
}

func withClientFactory(f clientFactory) Option {
	return func(l *Loop) {
		l.newClient = f
	}
}

// Loop consumes one topic. It owns its broker client; only the Run goroutine touches it.
//
// Offsets are stored as soon as a message is handed to its handler goroutine, before the
// handler finishes. A crash in between loses that message's side effect; in exchange a slow
// handler never holds up the partition.
type Loop struct {
	brokers        string
	conf           config.ConsumerConfig
	handler        Handler
	log            *zap.Logger
	throttler      *logger.LogThrottler
	newClient      clientFactory
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
	tracer         trace.Tracer
	metrics        *consumerMetrics
	topicAttr      metric.MeasurementOption
	onSubscribed   func()
	subscribedOnce sync.Once

	state    atomic.Int32
	inflight conc.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Loop for conf.Topic. It does not connect until Run is called.
func New(brokers string, conf config.ConsumerConfig, handler Handler, log *zap.Logger, opts ...Option) (*Loop, error) {
	l := &Loop{
		brokers:        brokers,
		conf:           conf,
		handler:        handler,
		log:            log,
		throttler:      logger.NewLogThrottler(log, 0),
		newClient:      newKafkaClient,
		tracerProvider: tracenoop.NewTracerProvider(),
		meterProvider:  metricnoop.NewMeterProvider(),
		topicAttr:      metric.WithAttributes(attribute.String("topic", conf.Topic)),
	}
	for _, opt := range opts {
		opt(l)
	}

	l.tracer = l.tracerProvider.Tracer("kafka-consumer")
	metrics, err := newConsumerMetrics(l.meterProvider.Meter("kafka-consumer"))
	if err != nil {
		return nil, err
	}
	l.metrics = metrics
	return l, nil
}

// State may be read from any goroutine.
func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) setState(s State) {
	if prev := State(l.state.Swap(int32(s))); prev != s {
		l.log.Debug("consumer state changed", zap.Stringer("from", prev), zap.Stringer("to", s))
	}
}

// Run connects, subscribes and consumes until ctx is cancelled or Stop is called.
// Broker failures are retried forever. Run returns only after in-flight handlers finished
// or the shutdown timeout elapsed.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.started {
		l.mu.Unlock()
		return errAlreadyStarted
	}
	if l.stopped {
		l.mu.Unlock()
		return nil
	}
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	l.started, l.cancel, l.done = true, cancel, done
	l.mu.Unlock()

	defer close(done)
	defer l.shutdown()
	defer cancel()

	retry := backoff.NewConstantBackOff(l.conf.ReconnectDelay)
	for ctx.Err() == nil {
		l.setState(StateConnecting)
		c, err := l.connect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.setState(StateDisconnected)
			delay := retry.NextBackOff()
			l.throttler.Warn("connect", "kafka consumer connect failed, retrying",
				zap.Duration("retry_in", delay),
				zap.Error(err))
			if !sleep(ctx, delay) {
				break
			}
			continue
		}

		l.setState(StateSubscribed)
		l.log.Info("subscribed to topic")
		if l.onSubscribed != nil {
			l.subscribedOnce.Do(l.onSubscribed)
		}

		l.setState(StateConsuming)
		err = l.consume(ctx, c)
		l.closeClient(c)
		if err != nil && ctx.Err() == nil {
			l.log.Warn("kafka consumer lost connection, reconnecting", zap.Error(err))
		}
	}
	return nil
}

// Stop cancels Run and waits for it to return. It is safe to call before Run or more than once.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		l.setState(StateStopped)
		return
	}
	cancel()
	<-done
}

func (l *Loop) connect(ctx context.Context) (client, error) {
	c, err := l.newClient(l.brokers, l.conf)
	if err != nil {
		return nil, err
	}
	if err := checkTopic(ctx, c, l.conf.Topic, l.conf.ConnectTimeout); err != nil {
		l.closeClient(c)
		return nil, err
	}
	if err := c.SubscribeTopics([]string{l.conf.Topic}, nil); err != nil {
		l.closeClient(c)
		return nil, fmt.Errorf("failed to subscribe to topic %s: %w", l.conf.Topic, err)
	}
	return c, nil
}

// consume pulls batches until ctx is done or the connection is lost.
func (l *Loop) consume(ctx context.Context, c client) error {
	for ctx.Err() == nil {
		batch, err := l.pull(c)
		for _, km := range batch {
			l.dispatch(ctx, c, km)
		}
		if err == nil {
			continue
		}

		kind, key := classifyPullError(err)
		if kind == pullErrorDisconnected {
			return err
		}
		l.throttler.Warn(key, "failed to pull messages, retrying",
			zap.Duration("retry_in", l.conf.PullErrorDelay),
			zap.Error(err))
		if !sleep(ctx, l.conf.PullErrorDelay) {
			return nil
		}
	}
	return nil
}

// pull waits up to the poll timeout for the first message, then takes only what is already buffered.
func (l *Loop) pull(c client) ([]*kafka.Message, error) {
	batch := make([]*kafka.Message, 0, l.conf.BatchSize)
	timeout := l.conf.PollTimeout
	for len(batch) < l.conf.BatchSize {
		km, err := c.ReadMessage(timeout)
		if err != nil {
			if kind, _ := classifyPullError(err); kind == pullErrorTimeout {
				return batch, nil
			}
			return batch, err
		}
		batch = append(batch, km)
		timeout = 0
	}
	return batch, nil
}

// dispatch hands km to the handler in its own goroutine and stores the offset right away.
func (l *Loop) dispatch(ctx context.Context, c client, km *kafka.Message) {
	l.metrics.received.Add(ctx, 1, l.topicAttr)

	msg, err := parseMessage(km)
	if err != nil {
		l.metrics.malformed.Add(ctx, 1, l.topicAttr)
		l.log.Error("skipping malformed message",
			zap.Int32("partition", km.TopicPartition.Partition),
			zap.Int64("offset", int64(km.TopicPartition.Offset)),
			zap.Error(err))
		l.store(c, km)
		return
	}

	hctx, span := l.handlerContext(ctx, msg)
	l.inflight.Go(func() { l.handle(hctx, span, msg) })
	l.store(c, km)
}

// handlerContext detaches from the loop's cancellation: a dispatched handler runs to completion.
func (l *Loop) handlerContext(ctx context.Context, msg *Message) (context.Context, trace.Span) {
	hctx := context.WithoutCancel(ctx)
	hctx = tracecontext.WithContext(hctx, msg.Trace)
	hctx = correlation.WithID(hctx, msg.CorrelationID)
	hctx, span := l.tracer.Start(trace.ContextWithRemoteSpanContext(hctx, msg.Trace.SpanContext()), msg.Topic+" process",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
			attribute.Int("messaging.partition", int(msg.Partition)),
			attribute.Int64("messaging.offset", msg.Offset),
			attribute.String("messaging.message.key", msg.Key),
		),
	)
	log := l.log.With(msg.Trace.LogFields(msg.CorrelationID, "")...)
	return logger.With(hctx, log), span
}

func (l *Loop) handle(ctx context.Context, span trace.Span, msg *Message) {
	defer span.End()

	var err error
	var catcher panics.Catcher
	catcher.Try(func() { err = l.handler.Handle(ctx, msg) })
	if r := catcher.Recovered(); r != nil {
		err = fmt.Errorf("handler panicked: %w", r.AsError())
	}
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	l.metrics.handlerErrors.Add(ctx, 1, l.topicAttr)
	logger.Get(ctx).Error("event handler failed",
		zap.String("event_type", msg.EventType),
		zap.Int32("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.Error(err))
}

func (l *Loop) store(c client, km *kafka.Message) {
	if _, err := c.StoreMessage(km); err != nil {
		l.throttler.Warn("store", "failed to store offset",
			zap.Int64("offset", int64(km.TopicPartition.Offset)),
			zap.Error(err))
	}
}

func (l *Loop) closeClient(c client) {
	if err := c.Close(); err != nil {
		l.log.Warn("failed to close kafka consumer", zap.Error(err))
	}
}

// shutdown waits for in-flight handlers up to the shutdown timeout.
func (l *Loop) shutdown() {
	finished := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(finished)
	}()

	timer := time.NewTimer(l.conf.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-finished:
	case <-timer.C:
		l.log.Warn("shutdown timeout elapsed with handlers still running",
			zap.Duration("timeout", l.conf.ShutdownTimeout))
	}
	l.setState(StateStopped)
	l.log.Info("consumer stopped")
}
