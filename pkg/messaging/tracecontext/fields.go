package tracecontext

import (
	"github.com/Sokol111/ecommerce-choreography/pkg/core/logger"
	"go.uber.org/zap"
)

// LogFields returns the correlation tuple attached to every log line of an event hop.
func (tc TraceContext) LogFields(correlationID, component string) []zap.Field {
	fields := make([]zap.Field, 0, 5)
	if tc.IsValid() {
		fields = append(fields,
			zap.String(logger.FieldTraceID, tc.TraceID.String()),
			zap.String(logger.FieldSpanID, tc.SpanID.String()),
		)
	}
	if correlationID != "" {
		fields = append(fields, zap.String(logger.FieldCorrelationID, correlationID))
	}
	if tc.RequestID != "" {
		fields = append(fields, zap.String(logger.FieldRequestID, tc.RequestID))
	}
	if component != "" {
		fields = append(fields, zap.String(logger.FieldComponent, component))
	}
	return fields
}
