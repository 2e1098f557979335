package tracecontext

import (
	"context"
	"crypto/rand"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// IDGenerator is the OpenTelemetry SDK id generator contract.
type IDGenerator = sdktrace.IDGenerator

var defaultGenerator IDGenerator = randomGenerator{}

type randomGenerator struct{}

func (randomGenerator) NewIDs(ctx context.Context) (trace.TraceID, trace.SpanID) {
	var tid trace.TraceID
	for !tid.IsValid() {
		_, _ = rand.Read(tid[:])
	}
	return tid, randomGenerator{}.NewSpanID(ctx, tid)
}

func (randomGenerator) NewSpanID(_ context.Context, _ trace.TraceID) trace.SpanID {
	var sid trace.SpanID
	for !sid.IsValid() {
		_, _ = rand.Read(sid[:])
	}
	return sid
}
