package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/dept-timetable-api/internal/dto"
)

// Pass operations recorded by the pass duration histogram.
const (
	OperationMaterialize = "materialize"
	OperationAutoAssign  = "auto_assign"
	OperationPlace       = "place"
	OperationReset       = "reset"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	passDuration    *prometheus.HistogramVec
	sessionsPlaced  prometheus.Counter
	sessionsLeft    prometheus.Gauge
	materialized    *prometheus.CounterVec
	passRejected    *prometheus.CounterVec

	requestCount         uint64
	requestDurationTotal uint64
	placedCount          uint64
	lastUnplaced         int64
	passCount            uint64
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

	passDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_pass_duration_seconds",
		Help:    "Duration of timetable passes by operation",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"operation"})

	sessionsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_placed_total",
		Help: "Sessions placed by auto-assign passes",
	})

	sessionsLeft := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "timetable_sessions_unplaced",
		Help: "Sessions left unplaced by the most recent auto-assign pass",
	})

	materialized := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_materialize_changes_total",
		Help: "Session changes applied by materialization",
	}, []string{"kind"})

	passRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_pass_rejected_total",
		Help: "Passes rejected because another pass was in flight",
	}, []string{"operation"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, passDuration, sessionsPlaced, sessionsLeft, materialized, passRejected, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		passDuration:    passDuration,
		sessionsPlaced:  sessionsPlaced,
		sessionsLeft:    sessionsLeft,
		materialized:    materialized,
		passRejected:    passRejected,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObservePass records how long a timetable operation held the pass guard.
func (m *MetricsService) ObservePass(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.passDuration.WithLabelValues(operation).Observe(duration.Seconds())
	atomic.AddUint64(&m.passCount, 1)
}

// RecordAutoAssign records the outcome of an auto-assign pass.
func (m *MetricsService) RecordAutoAssign(placed, unplaced int) {
	if m == nil {
		return
	}
	m.sessionsPlaced.Add(float64(placed))
	m.sessionsLeft.Set(float64(unplaced))
	atomic.AddUint64(&m.placedCount, uint64(placed))
	atomic.StoreInt64(&m.lastUnplaced, int64(unplaced))
}

// RecordMaterialize records the session changes written by materialization.
func (m *MetricsService) RecordMaterialize(summary *dto.MaterializeSummary) {
	if m == nil || summary == nil {
		return
	}
	m.materialized.WithLabelValues("created").Add(float64(summary.Created))
	m.materialized.WithLabelValues("updated").Add(float64(summary.Updated))
	m.materialized.WithLabelValues("deleted").Add(float64(summary.Deleted))
	m.materialized.WithLabelValues("rejected").Add(float64(summary.Rejected))
}

// RecordPassRejected counts a request turned away by the pass guard.
func (m *MetricsService) RecordPassRejected(operation string) {
	if m == nil {
		return
	}
	m.passRejected.WithLabelValues(operation).Inc()
}

// Snapshot returns aggregated metrics suitable for the health endpoint.
func (m *MetricsService) Snapshot() dto.SystemMetrics {
	if m == nil {
		return dto.SystemMetrics{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return dto.SystemMetrics{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		PassesTotal:              atomic.LoadUint64(&m.passCount),
		SessionsPlacedTotal:      atomic.LoadUint64(&m.placedCount),
		SessionsUnplaced:         atomic.LoadInt64(&m.lastUnplaced),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
