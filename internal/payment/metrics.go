package payment

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type paymentMetrics struct {
	outcomes metric.Int64Counter
}

func newPaymentMetrics(meter metric.Meter) (*paymentMetrics, error) {
	outcomes, err := meter.Int64Counter("choreography.payment.outcomes",
		metric.WithDescription("Simulated payments by outcome"))
	if err != nil {
		return nil, fmt.Errorf("failed to create outcomes counter: %w", err)
	}
	return &paymentMetrics{outcomes: outcomes}, nil
}

func (m *paymentMetrics) recordOutcome(ctx context.Context, status Status) {
	m.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}
