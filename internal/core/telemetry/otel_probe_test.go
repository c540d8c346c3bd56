package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"newsletter/internal/core/telemetry"
)

func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)

	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		provider.Shutdown(context.Background())
	})

	return recorder
}

func TestOTELProbe_RepositorySpan(t *testing.T) {
	recorder := withRecorder(t)
	probe := telemetry.NewOTELProbe(nil)

	ctx, span := probe.StartRepositorySpan(context.Background(), "create", "subscriber",
		[]attribute.KeyValue{attribute.String("subscriber.id", "abc")})
	probe.RecordRepositoryOperation(ctx, "create", "subscriber", time.Millisecond, nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "repository.subscriber.create", ended[0].Name())
	assert.Equal(t, codes.Ok, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String("subscriber.id", "abc"))
}

func TestOTELProbe_ServiceFailureIsRecorded(t *testing.T) {
	recorder := withRecorder(t)

	core, logs := observer.New(zapcore.DebugLevel)
	probe := telemetry.NewOTELProbe(otelzap.New(zap.New(core)))

	ctx, span := probe.StartServiceSpan(context.Background(), "subscription", "subscribe", nil)
	probe.RecordServiceOperation(ctx, "subscription", "subscribe", time.Millisecond, errors.New("connection refused"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "service.subscription.subscribe", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, 1, logs.FilterMessage("Service operation failed").Len())
}

func TestOTELProbe_BusinessEventIsAttachedToSpan(t *testing.T) {
	recorder := withRecorder(t)
	probe := telemetry.NewOTELProbe(nil)

	ctx, span := probe.StartServiceSpan(context.Background(), "subscription", "subscribe", nil)
	probe.RecordBusinessEvent(ctx, "subscriber.created", "subscriber", "abc", nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "subscriber.created", ended[0].Events()[0].Name)
}

func TestNoOpProbe_ReturnsContextSpan(t *testing.T) {
	probe := telemetry.NewNoOpProbe()

	ctx, span := probe.StartRepositorySpan(context.Background(), "create", "subscriber", nil)
	probe.RecordRepositoryOperation(ctx, "create", "subscriber", 0, errors.New("ignored"))
	span.End()

	assert.False(t, span.SpanContext().IsValid())
}
