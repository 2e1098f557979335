package consumer

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

type consumerMetrics struct {
	received      metric.Int64Counter
	malformed     metric.Int64Counter
	handlerErrors metric.Int64Counter
}

func newConsumerMetrics(meter metric.Meter) (*consumerMetrics, error) {
	received, err := meter.Int64Counter("choreography.consumer.received",
		metric.WithDescription("Messages pulled from the broker"))
	if err != nil {
		return nil, fmt.Errorf("failed to create received counter: %w", err)
	}
	malformed, err := meter.Int64Counter("choreography.consumer.malformed",
		metric.WithDescription("Messages skipped because the body could not be parsed"))
	if err != nil {
		return nil, fmt.Errorf("failed to create malformed counter: %w", err)
	}
	handlerErrors, err := meter.Int64Counter("choreography.consumer.handler_errors",
		metric.WithDescription("Handler invocations that returned an error or panicked"))
	if err != nil {
		return nil, fmt.Errorf("failed to create handler errors counter: %w", err)
	}
	return &consumerMetrics{received: received, malformed: malformed, handlerErrors: handlerErrors}, nil
}
