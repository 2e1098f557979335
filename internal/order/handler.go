package order

import (
	"context"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/consumer"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// UserCreatedHandler opens a welcome order for every new user and emits order.created one hop further
// down the same trace. Store and emit failures are logged and dropped.
type UserCreatedHandler struct {
	repo    Repository
	emitter producer.Emitter
	log     *zap.Logger
	now     func() time.Time
}

func NewUserCreatedHandler(repo Repository, emitter producer.Emitter, log *zap.Logger) *UserCreatedHandler {
	return &UserCreatedHandler{
		repo:    repo,
		emitter: emitter,
		log:     log.With(zap.String(logger.FieldComponent, component)),
		now:     time.Now,
	}
}

func (h *UserCreatedHandler) Handle(ctx context.Context, msg *consumer.Message) error {
	log := h.log.With(msg.Trace.LogFields(msg.CorrelationID, "")...)

	evt, err := events.Unmarshal[events.UserCreated](msg.Fields)
	if err != nil {
		return err
	}
	if err := evt.Validate(); err != nil {
		return err
	}
	log.Info("received user.created", zap.String("user_id", evt.UserID), zap.Bool("trace_found", msg.TraceFound))

	items := []Item{{ProductID: WelcomeProductID, Quantity: 1, Price: 0}}
	o := &Order{
		ID:          uuid.NewString(),
		UserID:      evt.UserID,
		Items:       items,
		TotalAmount: Total(items),
		CreatedAt:   h.now().UTC().Truncate(time.Millisecond),
	}
	if err := h.repo.Insert(ctx, o); err != nil {
		log.Error("failed to create welcome order", zap.String("user_id", evt.UserID), zap.Error(err))
		return nil
	}

	next := msg.Trace.ChildOf(trace.SpanContextFromContext(ctx))
	out := events.OrderCreated{
		OrderID: o.ID,
		UserID:  o.UserID,
		Items: lo.Map(o.Items, func(i Item, _ int) events.OrderItem {
			return events.OrderItem{ProductID: i.ProductID, Quantity: i.Quantity, Price: i.Price}
		}),
		TotalAmount: o.TotalAmount,
		CreatedAt:   events.Timestamp(o.CreatedAt),
	}
	if err := h.emitter.Emit(ctx, out.Topic(), out, next); err != nil {
		log.Error("welcome order stored but order.created was not published",
			zap.String("order_id", o.ID), zap.Error(fmt.Errorf("emit: %w", err)))
		return nil
	}

	h.log.With(next.LogFields(msg.CorrelationID, "")...).
		Info("welcome order created", zap.String("order_id", o.ID), zap.String("user_id", o.UserID))
	return nil
}
