package consumer

import (
	"errors"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

type pullErrorKind int

const (
	pullErrorTransient pullErrorKind = iota
	pullErrorTimeout
	pullErrorDisconnected
)

// classifyPullError decides how the loop reacts to a ReadMessage error.
// The returned key groups errors for throttled logging.
func classifyPullError(err error) (pullErrorKind, string) {
	var kafkaErr kafka.Error
	if !errors.As(err, &kafkaErr) {
		return pullErrorTransient, "non_kafka_error"
	}

	switch {
	case kafkaErr.IsTimeout() || kafkaErr.Code() == kafka.ErrTimedOut:
		return pullErrorTimeout, ""
	case kafkaErr.IsFatal():
		return pullErrorDisconnected, "fatal"
	}

	switch kafkaErr.Code() {
	case kafka.ErrAllBrokersDown:
		return pullErrorDisconnected, "all_brokers_down"
	case kafka.ErrState:
		// returned by a closed consumer
		return pullErrorDisconnected, "closed"
	default:
		return pullErrorTransient, kafkaErr.Code().String()
	}
}
