package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(repo Repository, emitter *mockEmitter) *Service {
	svc := NewService(repo, emitter, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestService_Create(t *testing.T) {
	var stored *User
	repo := &mockRepository{insertFunc: func(_ context.Context, u *User) error {
		stored = u
		return nil
	}}
	emitter := &mockEmitter{}
	svc := newTestService(repo, emitter)

	tc := tracecontext.NewRoot("req-1")
	ctx := tracecontext.WithContext(context.Background(), tc)
	ctx = correlation.WithID(ctx, "req-1")

	res, err := svc.Create(ctx, " Ada@Example.com ", "Ada")

	require.NoError(t, err)
	assert.True(t, res.Published)
	require.NotNil(t, stored)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.NotEmpty(t, stored.ID)

	require.Len(t, emitter.calls, 1)
	call := emitter.calls[0]
	assert.Equal(t, events.TopicUserCreated, call.topic)
	assert.Equal(t, tc, call.tc, "the request hop is the parent of the event chain")
	assert.Equal(t, events.UserCreated{
		UserID:    stored.ID,
		Email:     "ada@example.com",
		Name:      "Ada",
		CreatedAt: "2024-01-01T00:00:00.000Z",
	}, call.payload)

	id, ok := correlation.FromContext(call.ctx)
	require.True(t, ok)
	assert.Equal(t, "req-1", id)
}

func TestService_Create_WithoutTraceStartsRoot(t *testing.T) {
	emitter := &mockEmitter{}
	svc := newTestService(&mockRepository{}, emitter)

	_, err := svc.Create(context.Background(), "ada@example.com", "Ada")

	require.NoError(t, err)
	require.Len(t, emitter.calls, 1)
	assert.True(t, emitter.calls[0].tc.IsValid())
	id, ok := correlation.FromContext(emitter.calls[0].ctx)
	require.True(t, ok)
	assert.Equal(t, id, emitter.calls[0].tc.RequestID)
}

func TestService_Create_EmitFailureKeepsUser(t *testing.T) {
	emitter := &mockEmitter{err: errors.New("kafka producer unavailable")}
	svc := newTestService(&mockRepository{}, emitter)

	res, err := svc.Create(context.Background(), "ada@example.com", "Ada")

	require.NoError(t, err)
	assert.False(t, res.Published)
	assert.Equal(t, "ada@example.com", res.User.Email)
}

func TestService_Create_Errors(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		userName  string
		insertErr error
		wantErr   error
	}{
		{name: "missing email", email: "", userName: "Ada", wantErr: ErrInvalidUser},
		{name: "malformed email", email: "ada", userName: "Ada", wantErr: ErrInvalidUser},
		{name: "missing name", email: "ada@example.com", userName: " ", wantErr: ErrInvalidUser},
		{name: "duplicate email", email: "ada@example.com", userName: "Ada", insertErr: persistence.ErrDuplicateEntity, wantErr: ErrEmailTaken},
		{name: "store failure", email: "ada@example.com", userName: "Ada", insertErr: errors.New("timeout")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emitter := &mockEmitter{}
			repo := &mockRepository{insertFunc: func(context.Context, *User) error { return tt.insertErr }}
			svc := newTestService(repo, emitter)

			_, err := svc.Create(context.Background(), tt.email, tt.userName)

			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Empty(t, emitter.calls, "nothing is published for a rejected user")
		})
	}
}

func TestService_Get(t *testing.T) {
	repo := &mockRepository{findByIDFunc: func(_ context.Context, id string) (*User, error) {
		if id == "u1" {
			return &User{ID: "u1"}, nil
		}
		return nil, persistence.ErrEntityNotFound
	}}
	svc := newTestService(repo, &mockEmitter{})

	u, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = svc.Get(context.Background(), "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}
