package events

import (
	"errors"
	"fmt"
)

// ErrInvalidEvent marks a payload that parsed but lacks required fields.
var ErrInvalidEvent = errors.New("invalid event")

func (e UserCreated) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidEvent)
	}
	return nil
}

func (e OrderCreated) Validate() error {
	if e.OrderID == "" {
		return fmt.Errorf("%w: orderId is required", ErrInvalidEvent)
	}
	if e.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidEvent)
	}
	if e.TotalAmount < 0 {
		return fmt.Errorf("%w: totalAmount must not be negative", ErrInvalidEvent)
	}
	return nil
}

func (e PaymentCompleted) Validate() error {
	if e.PaymentID == "" || e.OrderID == "" {
		return fmt.Errorf("%w: paymentId and orderId are required", ErrInvalidEvent)
	}
	switch e.Status {
	case PaymentStatusCompleted, PaymentStatusFailed:
		return nil
	}
	return fmt.Errorf("%w: unknown status %q", ErrInvalidEvent, e.Status)
}
