package http

import (
	"context"
	"net/http"
	"time"

	"intel-digest/internal/handler/http/respond"
)

// HealthResponse represents the JSON response for the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // RFC 3339
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports process health. The cache database is checked only
// when the Postgres cache is in use; generation backends are not called here
// (see /status).
type HealthHandler struct {
	DB      Pinger
	Version string
}

func (h HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{},
		Version:   h.Version,
	}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			resp.Status = "unhealthy"
			resp.Checks["cache_database"] = CheckStatus{Status: "unhealthy", Message: "database unreachable"}
		} else {
			resp.Checks["cache_database"] = CheckStatus{Status: "healthy"}
		}
	} else {
		resp.Checks["cache_database"] = CheckStatus{Status: "healthy", Message: "in-memory cache"}
	}

	code := http.StatusOK
	if resp.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, resp)
}
