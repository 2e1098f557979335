// Package events defines the domain events exchanged between the user, order and payment services.
package events

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

// Topic names.
const (
	TopicUserCreated      = "user.created"
	TopicOrderCreated     = "order.created"
	TopicPaymentCompleted = "payment.completed"
)

// Event type names carried in the event-type header.
const (
	TypeUserCreated      = "UserCreated"
	TypeOrderCreated     = "OrderCreated"
	TypePaymentCompleted = "PaymentCompleted"
)

// Payment outcomes.
const (
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// TimestampLayout is ISO-8601 UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp renders t in TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp accepts TimestampLayout and any RFC 3339 value.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// Event is implemented by every payload published on a topic.
type Event interface {
	Topic() string
	EventType() string
	// Key is the partitioning key.
	Key() string
}

type UserCreated struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

func (UserCreated) Topic() string { return TopicUserCreated }
func (UserCreated) EventType() string { return TypeUserCreated }
func (e UserCreated) Key() string { return e.UserID }

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderCreated struct {
	OrderID     string      `json:"orderId"`
	UserID      string      `json:"userId"`
	Items       []OrderItem `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	CreatedAt   string      `json:"createdAt"`
}

func (OrderCreated) Topic() string { return TopicOrderCreated }
func (OrderCreated) EventType() string { return TypeOrderCreated }
func (e OrderCreated) Key() string { return e.OrderID }

type PaymentCompleted struct {
	PaymentID   string  `json:"paymentId"`
	OrderID     string  `json:"orderId"`
	UserID      string  `json:"userId"`
	Amount      float64 `json:"amount"`
	Status      string  `json:"status"`
	CompletedAt string  `json:"completedAt"`
}

func (PaymentCompleted) Topic() string { return TopicPaymentCompleted }
func (PaymentCompleted) EventType() string { return TypePaymentCompleted }
func (e PaymentCompleted) Key() string { return e.OrderID }

// Unmarshal decodes the business fields of a message into T.
// fields is the payload with the trace context already removed.
func Unmarshal[T any](fields map[string]json.RawMessage) (*T, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode payload: %w", err)
	}
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to decode %T: %w", out, err)
	}
	return &out, nil
}
