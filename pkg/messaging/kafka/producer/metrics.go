package producer

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

type producerMetrics struct {
	emitted metric.Int64Counter
	failed  metric.Int64Counter
}

func newProducerMetrics(meter metric.Meter) (*producerMetrics, error) {
	emitted, err := meter.Int64Counter("choreography.producer.emitted",
		metric.WithDescription("Events handed off to the broker"))
	if err != nil {
		return nil, fmt.Errorf("failed to create emitted counter: %w", err)
	}
	failed, err := meter.Int64Counter("choreography.producer.failed",
		metric.WithDescription("Events that could not be published or delivered"))
	if err != nil {
		return nil, fmt.Errorf("failed to create failed counter: %w", err)
	}
	return &producerMetrics{emitted: emitted, failed: failed}, nil
}
