package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var syncTracer = otel.Tracer("vex5hub/updater")

// startStageSpan opens a child span for one sync stage, tagged with the
// stage name. Without a recording parent the context is returned untouched.
func startStageSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() {
		return ctx, parent
	}
	attrs = append(attrs, attribute.String("sync.stage", stage))
	return syncTracer.Start(ctx, "sync."+stage, trace.WithAttributes(attrs...))
}
