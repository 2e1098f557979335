// Package headers names the Kafka message headers shared by the producer and the consumer.
package headers

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel/propagation"
)

const (
	EventType     = "event-type"
	CorrelationID = "x-correlation-id"
)

// Get returns the value of the first header named key, or "".
func Get(hs []kafka.Header, key string) string {
	for _, h := range hs {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Carrier exposes headers to an otel propagator.
func Carrier(hs []kafka.Header) propagation.MapCarrier {
	carrier := make(propagation.MapCarrier, len(hs))
	for _, h := range hs {
		carrier[h.Key] = string(h.Value)
	}
	return carrier
}

// FromCarrier appends every carrier entry to hs.
func FromCarrier(hs []kafka.Header, carrier propagation.MapCarrier) []kafka.Header {
	for _, key := range carrier.Keys() {
		hs = append(hs, kafka.Header{Key: key, Value: []byte(carrier.Get(key))})
	}
	return hs
}
