package user

import (
	"context"
	"sync"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
)

type mockRepository struct {
	insertFunc   func(ctx context.Context, u *User) error
	findByIDFunc func(ctx context.Context, id string) (*User, error)
}

func (m *mockRepository) Insert(ctx context.Context, u *User) error {
	if m.insertFunc != nil {
		return m.insertFunc(ctx, u)
	}
	return nil
}

func (m *mockRepository) FindByID(ctx context.Context, id string) (*User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, nil
}

type emitted struct {
	ctx     context.Context
	topic   string
	payload any
	tc      tracecontext.TraceContext
}

type mockEmitter struct {
	mu    sync.Mutex
	calls []emitted
	err   error
}

func (m *mockEmitter) Emit(ctx context.Context, topic string, payload any, tc tracecontext.TraceContext) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, emitted{ctx: ctx, topic: topic, payload: payload, tc: tc})
	return m.err
}
