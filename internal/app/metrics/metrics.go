// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "draw_engine",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "draw_engine",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	drawsExecuted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "draws",
			Name:      "executed_total",
			Help:      "Total number of draws executed.",
		},
		[]string{"game_type"},
	)

	duplicateClaims = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "draws",
			Name:      "duplicate_claims_total",
			Help:      "Draws that found more than one claim on the winning slot.",
		},
	)

	cardsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "cards",
			Name:      "issued_total",
			Help:      "Total number of scratch cards issued.",
		},
	)

	cardsRevealed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "cards",
			Name:      "revealed_total",
			Help:      "Total number of scratch cards revealed.",
		},
	)

	sealVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "draw_engine",
			Subsystem: "integrity",
			Name:      "verifications_total",
			Help:      "Seal and draw verifications by result.",
		},
		[]string{"result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		drawsExecuted,
		duplicateClaims,
		cardsIssued,
		cardsRevealed,
		sealVerifications,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordDrawExecuted counts an executed draw by game type.
func RecordDrawExecuted(gameType string) {
	if gameType == "" {
		gameType = "unknown"
	}
	drawsExecuted.WithLabelValues(gameType).Inc()
}

// RecordDuplicateClaims counts a draw that hit the duplicate-claim anomaly.
func RecordDuplicateClaims() {
	duplicateClaims.Inc()
}

// RecordCardIssued counts an issued scratch card.
func RecordCardIssued() {
	cardsIssued.Inc()
}

// RecordCardRevealed counts a revealed scratch card.
func RecordCardRevealed() {
	cardsRevealed.Inc()
}

// RecordVerification counts a verification by result.
func RecordVerification(ok bool) {
	result := "mismatch"
	if ok {
		result = "ok"
	}
	sealVerifications.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource IDs so label cardinality stays bounded.
func canonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "games":
		if len(parts) == 1 {
			return "/games"
		}
		if len(parts) == 2 {
			return "/games/:id"
		}
		return "/games/:id/" + strings.Join(parts[2:], "/")
	case "cards":
		if len(parts) == 1 {
			return "/cards"
		}
		if len(parts) == 2 {
			return "/cards/:id"
		}
		return "/cards/:id/" + parts[2]
	default:
		return "/" + parts[0]
	}
}
