// Package observability exposes Prometheus metrics for the HTTP surface and
// the document pipeline.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal tracks total number of HTTP requests
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiscaldoc_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "code"},
	)

	// RequestDuration tracks request duration
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fiscaldoc_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// ActiveRequests tracks currently active requests
	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fiscaldoc_http_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"path"},
	)

	// SubmissionsTotal counts processed submissions by kind and decision
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fiscaldoc_submissions_total",
			Help: "Total number of processed submissions",
		},
		[]string{"kind", "decision"},
	)

	// SubmissionDuration tracks end-to-end pipeline duration. OCR dominates,
	// hence the stretched buckets.
	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fiscaldoc_submission_duration_seconds",
			Help:    "Submission processing duration in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

// ObserveSubmission records one finished pipeline run.
func ObserveSubmission(kind, decision string, duration time.Duration) {
	SubmissionsTotal.WithLabelValues(kind, decision).Inc()
	SubmissionDuration.Observe(duration.Seconds())
}

// NewMetricsMiddleware collects Prometheus metrics for every request.
func NewMetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			ActiveRequests.WithLabelValues(path).Inc()
			defer ActiveRequests.WithLabelValues(path).Dec()

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(recorder, r)

			RequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues(path, strconv.Itoa(recorder.status)).Inc()
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
