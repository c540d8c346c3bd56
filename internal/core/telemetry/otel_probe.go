package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"newsletter/internal/core/port"
)

const tracerName = "newsletter"

// OTELProbe implements port.Telemetry with the global tracer provider. Log
// lines go through otelzap so they carry the active trace and span ids.
type OTELProbe struct {
	logger *otelzap.Logger
}

func NewOTELProbe(logger *otelzap.Logger) port.Telemetry {
	if logger == nil {
		logger = otelzap.New(zap.NewNop())
	}

	return &OTELProbe{logger: logger}
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}

	return otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("repository.%s.%s", entity, operation),
		trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("component", "service"),
	}

	return otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("service.%s.%s", service, operation),
		trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Ctx(ctx).Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

// RecordRepositoryQuery logs the statement and the types of its arguments.
// Argument values are never logged.
func (p *OTELProbe) RecordRepositoryQuery(ctx context.Context, operation string, entity string, query string, args []any) {
	argTypes := make([]string, len(args))

	for i := range args {
		argTypes[i] = fmt.Sprintf("%T", args[i])
	}

	p.logger.Ctx(ctx).Debug("Executing repository query",
		zap.String("operation", operation),
		zap.String("entity", entity),
		zap.String("query", query),
		zap.Strings("args_types", argTypes))
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Ctx(ctx).Error("Service operation failed",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err))

		return
	}

	span.SetStatus(codes.Ok, "")
}

// RecordBusinessEvent adds event to the active span and logs it.
func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, attrs []attribute.KeyValue) {
	eventAttrs := append([]attribute.KeyValue{
		attribute.String("entity", entity),
		attribute.String("entity_id", entityID),
	}, attrs...)

	trace.SpanFromContext(ctx).AddEvent(event, trace.WithAttributes(eventAttrs...))

	p.logger.Ctx(ctx).Info("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID))
}
