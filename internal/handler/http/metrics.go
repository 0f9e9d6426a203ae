package http

import (
	"net/http"
	"strconv"
	"time"

	"intel-digest/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knownPaths bounds the path label; anything else is recorded as "other".
var knownPaths = map[string]bool{
	"/digest":           true,
	"/digest/selection": true,
	"/status":           true,
	"/health":           true,
	"/metrics":          true,
}

// MetricsMiddleware records request count and latency per method, path and status.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := record(w)
		next.ServeHTTP(rw, r)

		path := r.URL.Path
		if !knownPaths[path] {
			path = "other"
		}
		metrics.RecordHTTPRequest(r.Method, path, strconv.Itoa(rw.Status()), time.Since(start))
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
