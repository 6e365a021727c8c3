package restapi

import (
	"net/http"
	"strconv"
	"time"

	"catalogue.onebusaway.org/internal/metrics"
)

const (
	scrapePattern    = "GET /metrics"
	unmatchedPattern = "unmatched"
)

// routeLabel names the route by its mux pattern, so stop and bus names in the
// path never become label values.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedPattern
	}
	return r.Pattern
}

// MetricsHandler records request counts and latency per route pattern. It must
// wrap the mux directly: the pattern is only visible on the request the mux saw.
// A nil m disables recording.
func MetricsHandler(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := newResponseWriter(w)

			next.ServeHTTP(recorder, r)

			route := routeLabel(r)
			if route == scrapePattern {
				return
			}
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(recorder.statusCode)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
