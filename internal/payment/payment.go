// Package payment simulates charging for new orders and publishes payment.completed.
package payment

import (
	"context"
	"errors"
	"time"
)

const component = "payment-service"

var ErrNotFound = errors.New("payment not found")

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

type Payment struct {
	ID          string
	OrderID     string
	UserID      string
	Amount      float64
	Status      Status
	CompletedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, p *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByOrderID(ctx context.Context, orderID string) ([]*Payment, error)
}
