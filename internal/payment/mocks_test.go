package payment

import (
	"context"
	"sync"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
)

type mockRepository struct {
	insertFunc        func(ctx context.Context, p *Payment) error
	findByIDFunc      func(ctx context.Context, id string) (*Payment, error)
	findByOrderIDFunc func(ctx context.Context, orderID string) ([]*Payment, error)
}

func (m *mockRepository) Insert(ctx context.Context, p *Payment) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, p)
	}
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, ErrNotFound
}

func (m *mockRepository) FindByOrderID(ctx context.Context, orderID string) ([]*Payment, error) {
	if m.findByOrderIDFunc != nil {
		return m.findByOrderIDFunc(ctx, orderID)
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

// fixedSource always yields the same value, which pins Float64 draws.
type fixedSource uint64

func (s fixedSource) Uint64() uint64 { return uint64(s) }
