package middleware

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticklist_http_requests_total",
			Help: "HTTP requests by route pattern, method, and status.",
		},
		[]string{"pattern", "method", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ticklist_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pattern"},
	)
)

// Metrics returns middleware that records a counter and latency histogram
// for every request, labeled by the matched route pattern.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
				// r.Pattern is populated once the mux has matched the route.
				pattern := r.Pattern
				if pattern == "" {
					pattern = "unmatched"
				}
				requestDuration.WithLabelValues(pattern).Observe(v)
				requestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(rec.status)).Inc()
			}))
			defer timer.ObserveDuration()

			next.ServeHTTP(rec, r)
		})
	}
}
