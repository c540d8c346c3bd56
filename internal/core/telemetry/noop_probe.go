package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsletter/internal/core/port"
)

// NoOpProbe records nothing. Spans returned are whatever is already in ctx.
type NoOpProbe struct{}

func NewNoOpProbe() port.Telemetry {
	return &NoOpProbe{}
}

func (p *NoOpProbe) StartRepositorySpan(ctx context.Context, _ string, _ string, _ []attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (p *NoOpProbe) StartServiceSpan(ctx context.Context, _ string, _ string, _ []attribute.KeyValue) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (p *NoOpProbe) RecordRepositoryOperation(context.Context, string, string, time.Duration, error) {}

func (p *NoOpProbe) RecordRepositoryQuery(context.Context, string, string, string, []any) {}

func (p *NoOpProbe) RecordServiceOperation(context.Context, string, string, time.Duration, error) {}

func (p *NoOpProbe) RecordBusinessEvent(context.Context, string, string, string, []attribute.KeyValue) {}
