package order

import (
	"context"
	"sync"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
)

type mockRepository struct {
	insertFunc       func(ctx context.Context, o *Order) error
	findByIDFunc     func(ctx context.Context, id string) (*Order, error)
	findByUserIDFunc func(ctx context.Context, userID string) ([]*Order, error)
}

func (m *mockRepository) Insert(ctx context.Context, o *Order) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, o)
	}
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*Order, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) FindByUserID(ctx context.Context, userID string) ([]*Order, error) {
	if m.findByUserIDFunc != nil {
		return m.findByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

type emitted struct {
	topic   string
	payload any
	tc      tracecontext.TraceContext
}

type mockEmitter struct {
	mu    sync.Mutex
	calls []emitted
	err   error
}

func (m *mockEmitter) Emit(_ context.Context, topic string, payload any, tc tracecontext.TraceContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, emitted{topic: topic, payload: payload, tc: tc})
	return m.err
}
