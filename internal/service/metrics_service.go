package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry shared by the API server and
// the dashboard client.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	mutations       *prometheus.CounterVec
	clientDuration  *prometheus.HistogramVec
	clientTotal     *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "list_cache_latency_seconds",
		Help:    "Latency for list cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "list_cache_write_seconds",
		Help:    "Latency for list cache writes",
		Buckets: prometheus.DefBuckets,
	})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "list_cache_lookups_total",
		Help: "List cache lookups by result",
	}, []string{"result"})

	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "resource_mutations_total",
		Help: "Resource writes by resource, operation and outcome",
	}, []string{"resource", "op", "outcome"})

	clientDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_client_request_duration_seconds",
		Help:    "Duration of outbound dashboard API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "resource", "status"})

	clientTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_client_requests_total",
		Help: "Outbound dashboard API requests",
	}, []string{"method", "resource", "status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheLookups, mutations, clientDuration, clientTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheWrite:      cacheWrite,
		cacheLookups:    cacheLookups,
		mutations:       mutations,
		clientDuration:  clientDuration,
		clientTotal:     clientTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry exposes the registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records an inbound request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveClientRequest records an outbound dashboard request. Status 0 means
// no response was received.
func (m *MetricsService) ObserveClientRequest(method, resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := "error"
	if status > 0 {
		labelStatus = strconv.Itoa(status)
	}
	m.clientDuration.WithLabelValues(method, resource, labelStatus).Observe(duration.Seconds())
	m.clientTotal.WithLabelValues(method, resource, labelStatus).Inc()
}

// RecordCacheOperation records a list cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveCacheWrite tracks the duration for cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordMutation counts a create, update or delete.
func (m *MetricsService) RecordMutation(resource, op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.mutations.WithLabelValues(resource, op, outcome).Inc()
}
