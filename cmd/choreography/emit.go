package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/producer"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/Sokol111/ecommerce-choreography/pkg/modules"
	"github.com/Sokol111/ecommerce-choreography/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type emitUserFlags struct {
	userID    string
	email     string
	name      string
	traceID   string
	requestID string
	timeout   time.Duration
}

func newEmitUserCmd(flags *rootFlags) *cobra.Command {
	f := &emitUserFlags{}

	cmd := &cobra.Command{
		Use:   "emit-user",
		Short: "Publish one user.created event",
		Long: `Publish one user.created event straight to the broker, bypassing the user service.

Passing --trace-id starts the chain on a known trace, so its order.created and
payment.completed events can be found by that id.

Example:
  choreography emit-user --email a@b.com --name A --trace-id deadbeefdeadbeefdeadbeefdeadbeef`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			evt, tc, err := buildUserCreated(f, time.Now())
			if err != nil {
				return err
			}
			return runEmit(cmd.Context(), flags, f.timeout, evt, tc)
		},
	}

	cmd.Flags().StringVar(&f.userID, "user-id", "", "User id (random uuid when empty)")
	cmd.Flags().StringVar(&f.email, "email", "", "User email (required)")
	cmd.Flags().StringVar(&f.name, "name", "", "User name (required)")
	cmd.Flags().StringVar(&f.traceID, "trace-id", "", "32 hex chars; a new trace is started when empty")
	cmd.Flags().StringVar(&f.requestID, "request-id", "", "Request and correlation id (random uuid when empty)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 15*time.Second, "How long to wait for the broker")

	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func buildUserCreated(f *emitUserFlags, now time.Time) (events.UserCreated, tracecontext.TraceContext, error) {
	requestID := f.requestID
	if requestID == "" {
		requestID = correlation.NewID()
	}

	tc := tracecontext.NewRoot(requestID)
	if f.traceID != "" {
		id, err := trace.TraceIDFromHex(strings.ToLower(f.traceID))
		if err != nil {
			return events.UserCreated{}, tc, fmt.Errorf("invalid --trace-id %q: %w", f.traceID, err)
		}
		tc.TraceID = id
	}

	userID := f.userID
	if userID == "" {
		userID = uuid.NewString()
	}

	evt := events.UserCreated{
		UserID:    userID,
		Email:     f.email,
		Name:      f.name,
		CreatedAt: events.Timestamp(now),
	}
	return evt, tc, evt.Validate()
}

func runEmit(ctx context.Context, flags *rootFlags, timeout time.Duration, evt events.UserCreated, tc tracecontext.TraceContext) error {
	var emitter producer.Emitter
	var log *zap.Logger

	app := fx.New(
		modules.NewCoreModule("emit-user", flags.configPath),
		modules.NewObservabilityModule(observability.WithoutMetrics()),
		modules.NewMessagingModule(),
		fx.Populate(&emitter, &log),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("failed to build emit-user: %w", err)
	}

	startCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() { _ = app.Stop(context.Background()) }()

	emitCtx := correlation.WithID(startCtx, tc.RequestID)
	if err := emitter.Emit(emitCtx, evt.Topic(), evt, tc); err != nil {
		return fmt.Errorf("failed to publish user.created: %w", err)
	}

	log.Info("published user.created",
		zap.String("user_id", evt.UserID),
		zap.String("trace_id", tc.TraceID.String()),
		zap.String("correlation_id", tc.RequestID))
	return nil
}
