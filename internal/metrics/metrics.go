// Package metrics registers the Prometheus collectors for the bot and the
// ops listener. Collectors are package-level and registered once at init via
// promauto; everything else in the repo records through the helpers below.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	messagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldcall_messages_total",
			Help: "Total number of classified inbound messages",
		},
		[]string{"kind"},
	)

	profilesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldcall_profiles_ingested_total",
			Help: "Total number of profiles added to the inbox",
		},
	)

	callResultsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldcall_call_results_ingested_total",
			Help: "Total number of call results recorded",
		},
	)

	rejectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldcall_rejects_total",
			Help: "Total number of rejected payloads",
		},
		[]string{"reason"},
	)

	inboxSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coldcall_inbox_size",
			Help: "Current number of profiles in the inbox",
		},
	)

	webappPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldcall_webapp_pushes_total",
			Help: "Total number of web app sync attempts",
		},
		[]string{"status"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// RecordMessage counts one classified inbound message by kind
// ("profile", "call-result", "unknown").
func RecordMessage(kind string) {
	messagesTotal.WithLabelValues(kind).Inc()
}

// RecordProfileIngested counts one accepted profile and moves the inbox
// gauge to the new size.
func RecordProfileIngested(inboxLen int) {
	profilesIngested.Inc()
	inboxSize.Set(float64(inboxLen))
}

// RecordCallResultIngested counts one recorded call result.
func RecordCallResultIngested() {
	callResultsIngested.Inc()
}

// RecordReject counts one rejected payload by reason
// ("bad-payload", "missing-names", "unknown-schema", "not-json-file").
func RecordReject(reason string) {
	rejectsTotal.WithLabelValues(reason).Inc()
}

// SetInboxSize moves the inbox gauge, used after /clear_inbox.
func SetInboxSize(n int) {
	inboxSize.Set(float64(n))
}

// RecordWebappPush counts one sync attempt against the web app
// ("ok" or "error").
func RecordWebappPush(status string) {
	webappPushes.WithLabelValues(status).Inc()
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Instrument wraps an http.Handler with request counting and latency
// observation for the ops listener.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(duration)
	})
}
