package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/pricofy/translate-gateway/internal/config"
)

func testConfig(providerURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 5000, Environment: "test", ShutdownTimeout: time.Second},
		Auth:   config.AuthConfig{SecretAPIKey: "test_api_key"},
		Cache: config.CacheConfig{
			Backend: "memory",
			Timeout: 100 * time.Millisecond,
		},
		Provider: config.ProviderConfig{
			Type:           "http",
			URL:            providerURL,
			Timeout:        time.Second,
			MaxAttempts:    2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
			Concurrency:    4,
		},
		Limits:  config.LimitsConfig{MaxTexts: 100},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func libreTranslate(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"hola"}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewServesTranslations(t *testing.T) {
	upstream := libreTranslate(t)
	a, err := New(context.Background(), testConfig(upstream.URL), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/translate?targetLanguage=es", strings.NewReader(`["hello"]`))
	req.Header.Set("x-api-key", "test_api_key")
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"main_text":"hello","translate_text":"hola"}]}`, w.Body.String())
}

func TestNewWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	upstream := libreTranslate(t)
	cfg := testConfig(upstream.URL)
	cfg.Cache.Backend = "redis"
	cfg.Cache.RedisURL = "redis://" + mr.Addr() + "/0"

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/translate?targetLanguage=es", strings.NewReader(`["hello"]`))
	req.Header.Set("x-api-key", "test_api_key")
	a.Engine.ServeHTTP(httptest.NewRecorder(), req)

	require.NoError(t, a.Close(context.Background()))
	assert.Len(t, mr.Keys(), 1)
}

func TestNewRejectsMissingProviderURL(t *testing.T) {
	_, err := New(context.Background(), testConfig(""), zap.NewNop())

	assert.ErrorContains(t, err, "PROVIDER_URL")
}

func TestMetricsDisabled(t *testing.T) {
	cfg := testConfig(libreTranslate(t).URL)
	cfg.Metrics.Enabled = false

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("x-api-key", "test_api_key")
	w := httptest.NewRecorder()
	a.Engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewWithTracingExporter(t *testing.T) {
	before := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(before) })

	cfg := testConfig(libreTranslate(t).URL)
	cfg.Tracing = config.TracingConfig{ServiceName: "translate-gateway-test", Endpoint: "127.0.0.1:4317", Insecure: true}

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider)
	assert.True(t, ok, "an SDK tracer provider is installed when an endpoint is configured")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, a.Close(ctx))
}
