package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/Sokol111/ecommerce-choreography/pkg/persistence"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const component = "user-service"

// CreateResult reports the stored user and whether user.created reached the broker.
type CreateResult struct {
	User      *User
	Published bool
}

type Service struct {
	repo    Repository
	emitter producer.Emitter
	log     *zap.Logger
	now     func() time.Time
}

func NewService(repo Repository, emitter producer.Emitter, log *zap.Logger) *Service {
	return &Service{
		repo:    repo,
		emitter: emitter,
		log:     log.With(zap.String(logger.FieldComponent, component)),
		now:     time.Now,
	}
}

// Create stores a new user and emits user.created under the trace found in ctx.
// A failed emit does not undo the insert; it is reported through CreateResult.Published.
func (s *Service) Create(ctx context.Context, email, name string) (*CreateResult, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if err := validate(email, name); err != nil {
		return nil, err
	}

	u := &User{
		ID:        uuid.NewString(),
		Email:     strings.ToLower(email),
		Name:      name,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		if errors.Is(err, persistence.ErrDuplicateEntity) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to store user: %w", err)
	}

	ctx, correlationID := correlation.Ensure(ctx)
	tc, ok := tracecontext.FromContext(ctx)
	if !ok {
		tc = tracecontext.NewRoot(correlationID)
	}
	log := s.log.With(tc.LogFields(correlationID, "")...)

	evt := events.UserCreated{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: events.Timestamp(u.CreatedAt),
	}
	if err := s.emitter.Emit(ctx, evt.Topic(), evt, tc); err != nil {
		log.Error("user stored but user.created was not published", zap.String("user_id", u.ID), zap.Error(err))
		return &CreateResult{User: u}, nil
	}

	log.Info("user created", zap.String("user_id", u.ID))
	return &CreateResult{User: u, Published: true}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, persistence.ErrEntityNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func validate(email, name string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidUser)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: email is malformed", ErrInvalidUser)
	}
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidUser)
	}
	return nil
}
