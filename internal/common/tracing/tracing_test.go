package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/dumeirei/hotel-booking-backend/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(&config.TracingConfig{Enabled: false}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_StdoutExporter(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	shutdown, err := Init(&config.TracingConfig{Enabled: true, ServiceName: "hotel-booking-test", SampleRate: 0.5}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewResource(t *testing.T) {
	res, err := newResource("hotel-booking-test", "staging")
	require.NoError(t, err)

	attrs := make(map[attribute.Key]string)
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "hotel-booking-test", attrs[semconv.ServiceNameKey])
	assert.Equal(t, "staging", attrs["environment"])
	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())
}

func TestStart_RecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := Start(context.Background(), "stripe.retrieve", AttrPaymentIntent.String("pi_1"))
	RecordError(span, errors.New("timeout"))
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "stripe.retrieve", spans[0].Name())
	assert.Len(t, spans[0].Events(), 1)
}
