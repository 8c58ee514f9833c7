package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "arcana-front/sync"
)

// GetTracer returns the tracer for the sync daemon.
func GetTracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartAPISpan starts a client span for one backend call.
func StartAPISpan(ctx context.Context, operation, method, path string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "arcana.api."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("arcana.path", path),
		),
	)
}

// StartPollSpan starts a span for one poll cycle of a resource.
func StartPollSpan(ctx context.Context, poller, resourceKey string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "poll."+poller,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("resource.key", resourceKey)),
	)
}

// StartMutationSpan starts a span for a user-initiated write.
func StartMutationSpan(ctx context.Context, operation, targetID string) (context.Context, trace.Span) {
	return GetTracer().Start(ctx, "mutation."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("target.id", targetID)),
	)
}

// RecordError records an error on a span.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddStatusTransition adds a status transition event to a span.
func AddStatusTransition(span trace.Span, fromStatus, toStatus string) {
	span.AddEvent("status.transition",
		trace.WithAttributes(
			attribute.String("status.from", fromStatus),
			attribute.String("status.to", toStatus),
		),
	)
}

// AddStaleResultEvent marks a span whose result was discarded as out of date.
func AddStaleResultEvent(span trace.Span, seq uint64) {
	span.AddEvent("result.stale",
		trace.WithAttributes(attribute.Int64("fetch.seq", int64(seq))),
	)
}
