// Package http serves the digest over HTTP: the digest itself, backend status,
// health and metrics, behind request ID, tracing, logging and recovery middleware.
package http

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"intel-digest/internal/handler/http/requestid"
	"intel-digest/internal/handler/http/respond"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Logging returns middleware that logs every request with its request and trace IDs.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := record(w)

			next.ServeHTTP(wrapped, r)

			span := trace.SpanFromContext(r.Context())
			duration := time.Since(start)
			logger.Info("request completed",
				slog.String("request_id", requestid.FromContext(r.Context())),
				slog.String("trace_id", span.SpanContext().TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", wrapped.Status()),
				slog.Int("bytes", wrapped.bytes),
				slog.Duration("duration", duration),
				slog.String("duration_ms", fmt.Sprintf("%.2f", duration.Seconds()*1000)),
			)
		})
	}
}

// Recover returns middleware that turns a handler panic into a 500 response.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						slog.String("request_id", requestid.FromContext(r.Context())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
					)
					respond.JSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter limits requests per client IP with a token bucket per address.
// A digest request can cost several generation calls, so /digest sits behind it.
type RateLimiter struct {
	limiters  sync.Map // map[string]*visitor
	rate      rate.Limit
	burst     int
	idle      time.Duration
	cleanMu   sync.Mutex
	lastClean time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

// NewRateLimiter allows limit requests per window per IP, with bursts up to limit.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rate:      rate.Limit(float64(limit) / window.Seconds()),
		burst:     limit,
		idle:      2 * window,
		lastClean: time.Now(),
	}
}

// Limit rejects requests over the limit with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rl.periodicCleanup()
		if !rl.allow(extractIP(r)) {
			w.Header().Set("Retry-After", "60")
			respond.SafeError(w, http.StatusTooManyRequests,
				respond.NewAppError(http.StatusTooManyRequests, "rate limit exceeded", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(ip string) bool {
	val, _ := rl.limiters.LoadOrStore(ip, &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)})
	v := val.(*visitor)
	v.mu.Lock()
	v.lastSeen = time.Now()
	v.mu.Unlock()
	return v.limiter.Allow()
}

// periodicCleanup drops visitors idle for two windows, at most every 10 minutes.
func (rl *RateLimiter) periodicCleanup() {
	rl.cleanMu.Lock()
	defer rl.cleanMu.Unlock()
	if time.Since(rl.lastClean) < 10*time.Minute {
		return
	}
	rl.lastClean = time.Now()
	cutoff := time.Now().Add(-rl.idle)
	rl.limiters.Range(func(key, value any) bool {
		v := value.(*visitor)
		v.mu.Lock()
		stale := v.lastSeen.Before(cutoff)
		v.mu.Unlock()
		if stale {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// extractIP returns the client IP, preferring X-Forwarded-For and X-Real-IP.
func extractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
