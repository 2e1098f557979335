package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/correlation"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/headers"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	json "github.com/goccy/go-json"
)

// ErrMalformedMessage marks a message body that is not a JSON object.
var ErrMalformedMessage = errors.New("malformed message")

// Message is one consumed event with the trace context already split from the business fields.
type Message struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       string
	Timestamp time.Time
	EventType string

	// CorrelationID comes from the x-correlation-id header, then from the trace request id.
	// It is generated only when both are absent.
	CorrelationID string

	// Trace is the decoded trace context. When TraceFound is false it is a freshly minted root.
	Trace      tracecontext.TraceContext
	TraceFound bool

	// Fields holds the payload without the reserved trace key.
	Fields map[string]json.RawMessage
}

// Handler reacts to one message.
// A returned error or a panic is logged by the loop and never stops it.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, msg *Message) error

func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

func parseMessage(km *kafka.Message) (*Message, error) {
	fields, tc, found, err := tracecontext.DecodeBytes(km.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if !found {
		tc = tracecontext.NewRoot("")
	}

	correlationID := headers.Get(km.Headers, headers.CorrelationID)
	if correlationID == "" {
		correlationID = tc.RequestID
	}
	if correlationID == "" {
		correlationID = correlation.NewID()
	}

	msg := &Message{
		Partition:     km.TopicPartition.Partition,
		Offset:        int64(km.TopicPartition.Offset),
		Key:           string(km.Key),
		Timestamp:     km.Timestamp,
		EventType:     headers.Get(km.Headers, headers.EventType),
		CorrelationID: correlationID,
		Trace:         tc,
		TraceFound:    found,
		Fields:        fields,
	}
	if km.TopicPartition.Topic != nil {
		msg.Topic = *km.TopicPartition.Topic
	}
	return msg, nil
}
