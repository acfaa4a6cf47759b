package obs

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	entriesSavedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timeentries_saved_total",
		Help: "Time entries persisted successfully.",
	})

	validationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timeentry_validation_failures_total",
			Help: "Time entry validation failures by rule code.",
		},
		[]string{"code"},
	)

	permissionDenialsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "permission_denials_total",
			Help: "Permission gate denials by resource.",
		},
		[]string{"resource"},
	)

	auditAppendFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_append_failures_total",
		Help: "Audit records that could not be written.",
	})
)

// Init registers all metrics with the default registry. Call once at
// startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		entriesSavedTotal,
		validationFailuresTotal,
		permissionDenialsTotal,
		auditAppendFailures,
	)
}

// Handler serves the /metrics scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func EntrySaved() {
	entriesSavedTotal.Inc()
}

func ValidationFailure(code string) {
	validationFailuresTotal.WithLabelValues(code).Inc()
}

func PermissionDenied(resource string) {
	permissionDenialsTotal.WithLabelValues(resource).Inc()
}

func AuditAppendFailed() {
	auditAppendFailures.Inc()
}

// Instrument wraps a handler with request count, latency and in-flight
// gauges. Paths are recorded as routed, not raw, so register it outside
// parameterized groups or accept the cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpInFlight.Dec()
	})
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
