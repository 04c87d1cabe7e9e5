// Package metrics provides Prometheus instrumentation for the matching engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MatchRunsTotal counts reciprocal match invocations by direction.
	MatchRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmtwin_match_runs_total",
		Help: "Total reciprocal match invocations",
	}, []string{"direction"})

	// MatchScores observes the distribution of computed pair scores.
	MatchScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pmtwin_match_score",
		Help:    "Distribution of reciprocal pair scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})

	// CandidatesScanned observes how many candidates each match run scored.
	CandidatesScanned = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pmtwin_match_candidates_scanned",
		Help:    "Candidates scanned per reciprocal match run",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	// BarterEvaluations counts invocations of the barter module.
	BarterEvaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pmtwin_barter_evaluations_total",
		Help: "Barter compatibility evaluations performed",
	})

	// MatchesPersisted counts match records written, by threshold outcome.
	MatchesPersisted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmtwin_matches_persisted_total",
		Help: "Match records persisted",
	}, []string{"meets_threshold"})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pmtwin_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pmtwin_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pmtwin_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the route pattern for path label to avoid high cardinality.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
