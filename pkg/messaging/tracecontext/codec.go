package tracecontext

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"
	"go.opentelemetry.io/otel/trace"
)

// ReservedKey is the payload field that holds the encoded trace context.
const ReservedKey = "_trace"

const (
	flagNotSampled = "0"
	flagSampled    = "1"

	fieldTraceID   = "traceId"
	fieldSpanID    = "spanId"
	fieldFlags     = "flags"
	fieldRequestID = "requestId"
)

// ErrNotJSONObject is returned when a message body is not a JSON object.
var ErrNotJSONObject = errors.New("payload is not a JSON object")

// Embeddable is the wire form of a TraceContext.
type Embeddable struct {
	TraceID   string `json:"traceId"`
	SpanID    string `json:"spanId"`
	Flags     string `json:"flags"`
	RequestID string `json:"requestId,omitempty"`
}

// Encode renders tc in the form that is merged into a payload under ReservedKey.
func Encode(tc TraceContext) Embeddable {
	return Embeddable{
		TraceID:   tc.TraceID.String(),
		SpanID:    tc.SpanID.String(),
		Flags:     tc.Flags(),
		RequestID: tc.RequestID,
	}
}

// Decode removes ReservedKey from payload and parses it.
// A missing or malformed value yields found == false; it is never an error.
func Decode(payload map[string]json.RawMessage) (tc TraceContext, found bool) {
	raw, ok := payload[ReservedKey]
	if !ok {
		return TraceContext{}, false
	}
	delete(payload, ReservedKey)

	return parseEmbedded(raw)
}

// DecodeBytes parses a whole message body, strips the trace context and returns the remaining fields.
// Only a body that is not a JSON object is reported as an error.
func DecodeBytes(body []byte) (map[string]json.RawMessage, TraceContext, bool, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, TraceContext{}, false, fmt.Errorf("%w: %v", ErrNotJSONObject, err)
	}
	if payload == nil {
		return nil, TraceContext{}, false, ErrNotJSONObject
	}
	tc, found := Decode(payload)
	return payload, tc, found, nil
}

// Merge serializes payload and adds the encoded tc under ReservedKey.
// The payload must serialize to a JSON object.
func Merge(payload any, tc TraceContext) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrNotJSONObject
	}

	encoded, err := json.Marshal(Encode(tc))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal trace context: %w", err)
	}
	fields[ReservedKey] = encoded

	return json.Marshal(fields)
}

func parseEmbedded(raw json.RawMessage) (TraceContext, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return TraceContext{}, false
	}

	for key := range fields {
		switch key {
		case fieldTraceID, fieldSpanID, fieldFlags, fieldRequestID:
		default:
			return TraceContext{}, false
		}
	}

	traceHex, ok := stringField(fields, fieldTraceID)
	if !ok {
		return TraceContext{}, false
	}
	spanHex, ok := stringField(fields, fieldSpanID)
	if !ok {
		return TraceContext{}, false
	}
	sampled, ok := flagsField(fields)
	if !ok {
		return TraceContext{}, false
	}

	var requestID string
	if _, present := fields[fieldRequestID]; present {
		if requestID, ok = stringField(fields, fieldRequestID); !ok {
			return TraceContext{}, false
		}
	}

	traceID, err := trace.TraceIDFromHex(traceHex)
	if err != nil {
		return TraceContext{}, false
	}
	spanID, err := trace.SpanIDFromHex(spanHex)
	if err != nil {
		return TraceContext{}, false
	}

	return TraceContext{
		TraceID:   traceID,
		SpanID:    spanID,
		Sampled:   sampled,
		RequestID: requestID,
	}, true
}

func stringField(fields map[string]json.RawMessage, name string) (string, bool) {
	raw, ok := fields[name]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// flagsField accepts "0"/"1" and the integers 0/1.
func flagsField(fields map[string]json.RawMessage) (bool, bool) {
	raw, ok := fields[fieldFlags]
	if !ok {
		return false, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case flagSampled:
			return true, true
		case flagNotSampled:
			return false, true
		}
		return false, false
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	}
	return false, false
}
