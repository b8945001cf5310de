// Package metrics holds the Prometheus collectors of the service
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for AnimaFlow.
// Record methods are safe on a nil receiver so tests can skip metrics entirely.
type Metrics struct {
	// Assistant metrics
	GatewayRequests *prometheus.CounterVec
	GatewayPolls    prometheus.Histogram
	GatewayDuration prometheus.Histogram
	ChatAttempts    *prometheus.CounterVec

	// Document metrics
	Extractions *prometheus.CounterVec
	Exports     *prometheus.CounterVec

	// Session metrics
	ActiveSessions prometheus.Gauge

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		sharedMetrics = &Metrics{
			GatewayRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "animaflow_gateway_requests_total",
					Help: "Assistant gateway calls by outcome",
				},
				[]string{"outcome"},
			),
			GatewayPolls: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "animaflow_gateway_polls",
					Help:    "Number of run status polls per gateway call",
					Buckets: []float64{1, 5, 10, 30, 60, 90, 120},
				},
			),
			GatewayDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "animaflow_gateway_duration_seconds",
					Help:    "Duration of gateway calls in seconds",
					Buckets: prometheus.ExponentialBuckets(1, 2, 9), // 1s to 256s
				},
			),
			ChatAttempts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "animaflow_chat_attempts_total",
					Help: "Chat client attempts by result",
				},
				[]string{"result"},
			),
			Extractions: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "animaflow_extractions_total",
					Help: "Documents extracted from replies by matcher",
				},
				[]string{"matcher"},
			),
			Exports: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "animaflow_exports_total",
					Help: "Document exports by format and result",
				},
				[]string{"format", "result"},
			),
			ActiveSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "animaflow_sessions_active",
					Help: "Editor sessions currently held in memory",
				},
			),
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "animaflow_http_requests_total",
					Help: "Total HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "animaflow_http_request_duration_seconds",
					Help:    "HTTP request duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
		}
	})
	return sharedMetrics
}

// RecordGateway records the outcome of one gateway call
func (m *Metrics) RecordGateway(outcome string, polls int, duration time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequests.WithLabelValues(outcome).Inc()
	m.GatewayPolls.Observe(float64(polls))
	m.GatewayDuration.Observe(duration.Seconds())
}

// RecordChatAttempt records a single chat client attempt
func (m *Metrics) RecordChatAttempt(result string) {
	if m == nil {
		return
	}
	m.ChatAttempts.WithLabelValues(result).Inc()
}

// RecordExtraction records which matcher produced a document
func (m *Metrics) RecordExtraction(matcher string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(matcher).Inc()
}

// RecordExport records an export attempt
func (m *Metrics) RecordExport(format string, success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	m.Exports.WithLabelValues(format, result).Inc()
}

// SetActiveSessions reports the current number of sessions
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration)
}

// Middleware records every request under its chi route pattern
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.RecordHTTPRequest(r.Method, route, strconv.Itoa(rw.status), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
