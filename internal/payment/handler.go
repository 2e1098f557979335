package payment

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const meterName = "github.com/Sokol111/ecommerce-choreography/internal/payment"

// Option configures an OrderCreatedHandler.
type Option func(*OrderCreatedHandler)

// WithConfig sets the delay and the failure probability.
func WithConfig(cfg Config) Option {
	return func(h *OrderCreatedHandler) {
		h.delay = cfg.Delay
		h.failureProbability = cfg.FailureProbability
	}
}

// WithRandSource replaces the random source of the outcome draw.
func WithRandSource(src rand.Source) Option {
	return func(h *OrderCreatedHandler) {
		h.rng = rand.New(src)
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(h *OrderCreatedHandler) {
		h.meterProvider = mp
	}
}

// OrderCreatedHandler waits the configured delay, draws an outcome and stores the payment before
// emitting payment.completed. A failed payment is a normal outcome and is published like a completed one.
type OrderCreatedHandler struct {
	repo    Repository
	emitter producer.Emitter
	log     *zap.Logger
	metrics *paymentMetrics
	now     func() time.Time

	delay              time.Duration
	failureProbability float64
	meterProvider      metric.MeterProvider

	mu  sync.Mutex
	rng *rand.Rand
}

func NewOrderCreatedHandler(repo Repository, emitter producer.Emitter, log *zap.Logger, opts ...Option) (*OrderCreatedHandler, error) {
	h := &OrderCreatedHandler{
		repo:               repo,
		emitter:            emitter,
		log:                log.With(zap.String(logger.FieldComponent, component)),
		now:                time.Now,
		delay:              DefaultDelay,
		failureProbability: DefaultFailureProbability,
		meterProvider:      noop.NewMeterProvider(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.rng == nil {
		h.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m, err := newPaymentMetrics(h.meterProvider.Meter(meterName))
	if err != nil {
		return nil, err
	}
	h.metrics = m
	return h, nil
}

func (h *OrderCreatedHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	log := h.log.With(msg.Trace.LogFields(msg.CorrelationID, "")...)

	evt, err := events.Unmarshal[events.OrderCreated](msg.Fields)
	if err != nil {
		return err
	}
	if err := evt.Validate(); err != nil {
		return err
	}
	log.Info("received order.created", zap.String("order_id", evt.OrderID), zap.Float64("total_amount", evt.TotalAmount))

	if !sleep(ctx, h.delay) {
		log.Warn("payment abandoned, context done", zap.String("order_id", evt.OrderID))
		return nil
	}

	p := &Payment{
		ID:          uuid.NewString(),
		OrderID:     evt.OrderID,
		UserID:      evt.UserID,
		Amount:      evt.TotalAmount,
		Status:      h.outcome(),
		CompletedAt: h.now().UTC().Truncate(time.Millisecond),
	}
	if err := h.repo.Insert(ctx, p); err != nil {
		log.Error("failed to store payment", zap.String("order_id", evt.OrderID), zap.Error(err))
		return nil
	}
	h.metrics.recordOutcome(ctx, p.Status)

	next := msg.Trace.ChildOf(trace.SpanContextFromContext(ctx))
	out := events.PaymentCompleted{
		PaymentID:   p.ID,
		OrderID:     p.OrderID,
		UserID:      p.UserID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		CompletedAt: events.Timestamp(p.CompletedAt),
	}
	if err := h.emitter.Emit(ctx, out.Topic(), out, next); err != nil {
		log.Error("payment stored but payment.completed was not published",
			zap.String("payment_id", p.ID), zap.Error(err))
		return nil
	}

	h.log.With(next.LogFields(msg.CorrelationID, "")...).
		Info("payment processed",
			zap.String("payment_id", p.ID),
			zap.String("order_id", p.OrderID),
			zap.String("status", string(p.Status)))
	return nil
}

// outcome is a uniform draw against the failure probability.
func (h *OrderCreatedHandler) outcome() Status {
	h.mu.Lock()
	draw := h.rng.Float64()
	h.mu.Unlock()

	if draw < h.failureProbability {
		return StatusFailed
	}
	return StatusCompleted
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
