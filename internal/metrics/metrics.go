// Package metrics holds the Prometheus collectors for the translate gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec
	cacheErrors  *prometheus.CounterVec

	providerCalls    *prometheus.CounterVec
	providerDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a metrics instance on its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translate_http_requests_total",
				Help: "Total number of HTTP requests by route and status code",
			},
			[]string{"method", "route", "status_code"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "translate_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translate_cache_lookups_total",
				Help: "Cache lookups per key by result (hit, miss)",
			},
			[]string{"result"},
		),

		cacheErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translate_cache_errors_total",
				Help: "Failed cache operations by operation",
			},
			[]string{"op"},
		),

		providerCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "translate_provider_calls_total",
				Help: "Provider translations by outcome (success, timeout, rejected, unavailable)",
			},
			[]string{"outcome"},
		),

		providerDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "translate_provider_duration_seconds",
				Help:    "Time to translate one text through the provider, retries included",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		registry: registry,
	}

	registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.cacheLookups,
		m.cacheErrors,
		m.providerCalls,
		m.providerDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, statusCode string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCacheLookup records hit and miss counts for one bulk lookup.
func (m *Metrics) RecordCacheLookup(hits, misses int) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	m.cacheLookups.WithLabelValues("miss").Add(float64(misses))
}

// RecordCacheError records a failed cache operation.
func (m *Metrics) RecordCacheError(op string) {
	if m == nil {
		return
	}
	m.cacheErrors.WithLabelValues(op).Inc()
}

// RecordProviderCall records the final outcome of translating one text.
func (m *Metrics) RecordProviderCall(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.providerCalls.WithLabelValues(outcome).Inc()
	m.providerDuration.Observe(duration.Seconds())
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CacheLookups exposes the lookup counter for tests.
func (m *Metrics) CacheLookups() *prometheus.CounterVec {
	return m.cacheLookups
}

// CacheErrors exposes the cache error counter for tests.
func (m *Metrics) CacheErrors() *prometheus.CounterVec {
	return m.cacheErrors
}

// ProviderCalls exposes the provider counter for tests.
func (m *Metrics) ProviderCalls() *prometheus.CounterVec {
	return m.providerCalls
}
