package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNoopProvider(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	require.NotNil(t, p.Tracer())
	require.NotNil(t, p.Meter())
	require.NoError(t, p.Shutdown(context.Background()))

	var nilProvider *Provider
	require.NotNil(t, nilProvider.Tracer())
}

func TestInvalidSampleRate(t *testing.T) {
	_, err := NewProvider(Config{OTLPEndpoint: "localhost:4318", SampleRate: 2})
	require.Error(t, err)
}

func TestRunSpanRecordsError(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := tracesdk.NewTracerProvider(tracesdk.WithSpanProcessor(recorder))

	_, span := StartRunSpan(context.Background(), tp.Tracer("test"), "run-1")
	AddSpanEvent(span, "artifact.written", attribute.Int64("period", 3))
	RecordError(span, errors.New("boom"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "oracle.run", spans[0].Name())
	require.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 2) // the event plus the recorded error
}
