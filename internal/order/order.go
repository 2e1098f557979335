// Package order reacts to new users with a welcome order and publishes order.created.
package order

import (
	"context"
	"errors"
	"time"

	"github.com/samber/lo"
)

const (
	WelcomeProductID = "welcome-product"

	component = "order-service"
)

var ErrNotFound = errors.New("order not found")

type Item struct {
	ProductID string
	Quantity  int
	Price     float64
}

type Order struct {
	ID          string
	UserID      string
	Items       []Item
	TotalAmount float64
	CreatedAt   time.Time
}

// Total sums price times quantity over items.
func Total(items []Item) float64 {
	return lo.SumBy(items, func(i Item) float64 { return i.Price * float64(i.Quantity) })
}

type Repository interface {
	Insert(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	FindByUserID(ctx context.Context, userID string) ([]*Order, error)
}
