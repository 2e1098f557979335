package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/events"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/kafka/headers"
	"github.com/Sokol111/ecommerce-choreography/pkg/messaging/tracecontext"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	topic := events.TopicUserCreated
	ts := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	parent := tracecontext.NewRoot("req-1")
	body, err := tracecontext.Merge(events.UserCreated{
		UserID:    "u1",
		Email:     "alice@example.com",
		Name:      "Alice",
		CreatedAt: events.Timestamp(ts),
	}, parent)
	require.NoError(t, err)

	msg, err := parseMessage(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 3, Offset: 42},
		Key:            []byte("u1"),
		Value:          body,
		Timestamp:      ts,
		Headers: []kafka.Header{
			{Key: headers.EventType, Value: []byte(events.TypeUserCreated)},
			{Key: headers.CorrelationID, Value: []byte("corr-7")},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, int32(3), msg.Partition)
	assert.Equal(t, int64(42), msg.Offset)
	assert.Equal(t, "u1", msg.Key)
	assert.Equal(t, ts, msg.Timestamp)
	assert.Equal(t, events.TypeUserCreated, msg.EventType)
	assert.Equal(t, "corr-7", msg.CorrelationID)
	assert.True(t, msg.TraceFound)
	assert.Equal(t, parent, msg.Trace)

	user, err := events.Unmarshal[events.UserCreated](msg.Fields)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
}

func TestParseMessage_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"userId":`},
		{name: "array", body: `[{"userId":"u1"}]`},
		{name: "string", body: `"hello"`},
		{name: "null", body: `null`},
		{name: "empty", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseMessage(&kafka.Message{Value: []byte(tt.body)})

			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}

func TestParseMessage_CorruptTraceStartsNewRoot(t *testing.T) {
	msg, err := parseMessage(&kafka.Message{Value: []byte(`{"userId":"u1","_trace":{"traceId":"xyz"}}`)})

	require.NoError(t, err)
	assert.False(t, msg.TraceFound)
	assert.True(t, msg.Trace.IsValid())
	assert.NotContains(t, msg.Fields, tracecontext.ReservedKey)
	assert.NotEmpty(t, msg.CorrelationID)
}

func TestParseMessage_CorrelationID(t *testing.T) {
	body, err := tracecontext.Merge(map[string]string{"userId": "u1"}, tracecontext.NewRoot("req-1"))
	require.NoError(t, err)
	bare := []byte(`{"userId":"u1"}`)

	tests := []struct {
		name    string
		value   []byte
		headers []kafka.Header
		want    string
	}{
		{
			name:    "header wins",
			value:   body,
			headers: []kafka.Header{{Key: headers.CorrelationID, Value: []byte("corr-7")}},
			want:    "corr-7",
		},
		{name: "falls back to trace request id", value: body, want: "req-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := parseMessage(&kafka.Message{Value: tt.value, Headers: tt.headers})

			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.CorrelationID)
		})
	}

	t.Run("minted when header and request id are missing", func(t *testing.T) {
		msg, err := parseMessage(&kafka.Message{Value: bare})

		require.NoError(t, err)
		assert.NotEmpty(t, msg.CorrelationID)
		assert.Empty(t, msg.Trace.RequestID)
	})
}

func TestHandlerFunc(t *testing.T) {
	want := errors.New("boom")
	var h Handler = HandlerFunc(func(context.Context, *Message) error { return want })

	assert.ErrorIs(t, h.Handle(context.Background(), &Message{}), want)
}

func TestClassifyPullError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want pullErrorKind
	}{
		{name: "timeout", err: kafka.NewError(kafka.ErrTimedOut, "timed out", false), want: pullErrorTimeout},
		{name: "all brokers down", err: kafka.NewError(kafka.ErrAllBrokersDown, "down", false), want: pullErrorDisconnected},
		{name: "closed consumer", err: kafka.NewError(kafka.ErrState, "closed", false), want: pullErrorDisconnected},
		{name: "fatal", err: kafka.NewError(kafka.ErrFatal, "fatal", true), want: pullErrorDisconnected},
		{name: "transport", err: kafka.NewError(kafka.ErrTransport, "transport", false), want: pullErrorTransient},
		{name: "non kafka", err: errors.New("unexpected"), want: pullErrorTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := classifyPullError(tt.err)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "consuming", StateConsuming.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unknown", State(99).String())
}
