package logger

// Field names shared by every component that logs on behalf of an event chain.
const (
	FieldCorrelationID = "correlation_id"
	FieldTraceID       = "trace_id"
	FieldSpanID        = "span_id"
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
)
