package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	resultsWritten  *prometheus.CounterVec
	resultsRejected *prometheus.CounterVec
	reportsBuilt    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
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

	resultsWritten := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "results_written_total",
		Help: "Total assessment results persisted",
	}, []string{"mode"})

	resultsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "results_rejected_total",
		Help: "Total assessment result rows rejected during entry",
	}, []string{"mode"})

	reportsBuilt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_built_total",
		Help: "Total reports assembled",
	}, []string{"kind"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, resultsWritten, resultsRejected, reportsBuilt, cacheHits, cacheMisses, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		resultsWritten:  resultsWritten,
		resultsRejected: resultsRejected,
		reportsBuilt:    reportsBuilt,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveResultsWritten counts persisted results per entry mode.
func (m *MetricsService) ObserveResultsWritten(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.resultsWritten.WithLabelValues(mode).Add(float64(count))
}

// ObserveResultsRejected counts rejected entry rows per entry mode.
func (m *MetricsService) ObserveResultsRejected(mode string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.resultsRejected.WithLabelValues(mode).Add(float64(count))
}

// ObserveReportBuilt counts assembled reports per kind.
func (m *MetricsService) ObserveReportBuilt(kind string) {
	if m == nil {
		return
	}
	m.reportsBuilt.WithLabelValues(kind).Inc()
}

// RecordCacheOperation records cache hit/miss counters.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
