package http

import (
	"log/slog"
	"net/http"
	"time"

	"intel-digest/internal/handler/http/requestid"
	"intel-digest/internal/observability/tracing"
)

// RouterConfig holds the API's handlers' dependencies.
type RouterConfig struct {
	Runner  DigestRunner
	Prober  Prober
	DB      Pinger
	Version string
	Logger  *slog.Logger

	// DigestTimeout bounds /digest and /digest/selection.
	DigestTimeout time.Duration
	// DigestRateLimit is the number of digest requests per minute per IP.
	DigestRateLimit int
}

// NewRouter builds the API handler. Middleware order, outermost first:
// request ID, tracing, logging, recovery, metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.DigestTimeout <= 0 {
		cfg.DigestTimeout = time.Minute
	}
	if cfg.DigestRateLimit <= 0 {
		cfg.DigestRateLimit = 10
	}
	limiter := NewRateLimiter(cfg.DigestRateLimit, time.Minute)
	guard := func(h http.Handler) http.Handler {
		return limiter.Limit(Timeout(cfg.DigestTimeout)(h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /digest", guard(DigestHandler{Runner: cfg.Runner}))
	mux.Handle("GET /digest/selection", guard(SelectionHandler{Runner: cfg.Runner}))
	mux.Handle("GET /status", limiter.Limit(StatusHandler{Prober: cfg.Prober}))
	mux.Handle("GET /health", HealthHandler{DB: cfg.DB, Version: cfg.Version})
	mux.Handle("GET /metrics", MetricsHandler())

	var h http.Handler = mux
	h = MetricsMiddleware(h)
	h = Recover(cfg.Logger)(h)
	h = Logging(cfg.Logger)(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	return h
}
