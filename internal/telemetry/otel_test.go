package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

func TestSetupProviderWithoutEndpoint(t *testing.T) {
	before := otel.GetTracerProvider()

	tp, shutdown, err := SetupProvider(context.Background(), Config{})

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.NoError(t, shutdown(context.Background()))
	assert.Equal(t, before, otel.GetTracerProvider(), "global provider must be left alone")
}

func TestSetupProviderInstallsSDKProvider(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	// The gRPC client connects lazily, so no collector needs to be listening.
	tp, shutdown, err := SetupProvider(context.Background(), Config{
		ServiceName: "translate-gateway-test",
		Endpoint:    "127.0.0.1:4317",
		Insecure:    true,
	})
	require.NoError(t, err)

	sdk, ok := tp.(*sdktrace.TracerProvider)
	require.True(t, ok, "expected an SDK provider, got %T", tp)
	assert.Same(t, sdk, otel.GetTracerProvider())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = shutdown(ctx)
}

func TestNewProviderTagsResource(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, err := newProvider(context.Background(), Config{ServiceName: "svc", Environment: "test"},
		sdktrace.WithSpanProcessor(recorder))
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "op")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	attrs := spans[0].Resource().Attributes()
	assert.Contains(t, attrs, semconv.ServiceName("svc"))
}
