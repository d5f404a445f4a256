package obs

import (
	"net/http"
	"strconv"
	"strings"
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

	// PrintJobsCreated counts accepted print submissions.
	PrintJobsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "print_jobs_created_total",
		Help: "Total number of print jobs created.",
	})

	// PrintJobStatusChanges counts status transitions by target status.
	PrintJobStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "print_job_status_changes_total",
			Help: "Total number of print job status transitions.",
		},
		[]string{"status"},
	)

	// OTPSent counts issued one-time codes.
	OTPSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "otp_sent_total",
		Help: "Total number of one-time codes dispatched.",
	})
)

// Init registers metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight,
		httpRequestsTotal,
		httpRequestDuration,
		PrintJobsCreated,
		PrintJobStatusChanges,
		OTPSent,
	)
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps a handler with RPS/latency/in-flight measurement.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: 200}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// CanonicalPath collapses record identifiers so metric cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	switch {
	case strings.HasPrefix(path, "/print/jobs/") && path != "/print/jobs/":
		rest := strings.TrimPrefix(path, "/print/jobs/")
		if strings.HasSuffix(rest, "/status") {
			return "/print/jobs/:id/status"
		}
		if !strings.Contains(rest, "/") {
			return "/print/jobs/:id"
		}
	case strings.HasPrefix(path, "/print/submit/client/"):
		return "/print/submit/client/:clientId"
	case strings.HasPrefix(path, "/otp/check-verification/"):
		return "/otp/check-verification/:email"
	}
	return path
}

// statusWriter records the response code for metric labels.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
