package otel

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// EmptyTraceID is reported when the context carries no valid span.
const EmptyTraceID = "00000000000000000000000000000000"

// GetTraceID returns the trace id from the span in ctx, for stamping log
// records.
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return EmptyTraceID
}
