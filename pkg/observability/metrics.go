package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Access control metrics
	PermissionChecksTotal *prometheus.CounterVec

	// Invitation lifecycle metrics
	InvitationsTotal *prometheus.CounterVec

	// Notification metrics
	NotificationsCreatedTotal prometheus.Counter
	NotificationsPurgedTotal  prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envboard_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "envboard_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		PermissionChecksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envboard_permission_checks_total",
				Help: "Total number of capability checks",
			},
			[]string{"capability", "allowed"},
		),
		InvitationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "envboard_invitations_total",
				Help: "Total number of invitation transitions",
			},
			[]string{"action"},
		),
		NotificationsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envboard_notifications_created_total",
				Help: "Total number of notifications created",
			},
		),
		NotificationsPurgedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "envboard_notifications_purged_total",
				Help: "Total number of notifications purged by retention",
			},
		),
		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "envboard_db_connections_active",
				Help: "Number of active database connections",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "envboard_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		registry: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.PermissionChecksTotal,
		m.InvitationsTotal,
		m.NotificationsCreatedTotal,
		m.NotificationsPurgedTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordPermissionCheck counts a capability check outcome.
func (m *Metrics) RecordPermissionCheck(capability string, allowed bool) {
	m.PermissionChecksTotal.WithLabelValues(capability, strconv.FormatBool(allowed)).Inc()
}

// RecordInvitation counts an invitation transition (created, accepted,
// declined).
func (m *Metrics) RecordInvitation(action string) {
	m.InvitationsTotal.WithLabelValues(action).Inc()
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// InstrumentHandler wraps an HTTP handler with request counting and
// latency observation. The path label should be the route template, not
// the raw URL, to keep cardinality bounded.
func (m *Metrics) InstrumentHandler(path string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
