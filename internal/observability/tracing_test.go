package observability

import (
	"context"
	"testing"

	"devhub/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracing_Disabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), &config.Config{}, "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))

	_, span := Tracer.Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled(), "disabled tracing records nothing")
}

func TestInitTracing_Stdout(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		Tracer = otel.Tracer(ServiceName)
	})

	shutdown, err := InitTracing(context.Background(), &config.Config{
		Env:                 "production",
		TracingEnabled:      true,
		TracingExporter:     "stdout",
		TracingSamplerRatio: 1,
	}, "test")
	require.NoError(t, err)

	_, span := Tracer.Start(context.Background(), "sampled")
	assert.True(t, span.SpanContext().IsSampled())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewExporter(t *testing.T) {
	ctx := context.Background()

	exp, err := newExporter(ctx, &config.Config{TracingExporter: "otlp", OTLPEndpoint: "collector:4318", OTLPInsecure: true})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(ctx))

	exp, err = newExporter(ctx, &config.Config{TracingExporter: "stdout"})
	require.NoError(t, err)
	assert.NoError(t, exp.Shutdown(ctx))

	_, err = newExporter(ctx, &config.Config{TracingExporter: "zipkin"})
	assert.ErrorContains(t, err, "zipkin")
}

func TestSamplerFor(t *testing.T) {
	assert.Equal(t, "AlwaysOnSampler", samplerFor(1).Description())
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOffSampler")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}
