package http

import (
	"context"
	"net/http"
	"time"

	"intel-digest/internal/handler/http/respond"
	"intel-digest/internal/usecase/orchestrator"
)

// Prober reports per-backend reachability.
type Prober interface {
	Probe(ctx context.Context) []orchestrator.Attempt
	Preferred() string
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	Healthy   bool            `json:"healthy"`
	Preferred string          `json:"preferred"`
	Backends  []BackendStatus `json:"backends"`
	CheckedAt string          `json:"checked_at"`
}

// BackendStatus is the probe result of one backend.
type BackendStatus struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

// StatusHandler serves GET /status. It is healthy while at least one backend
// answers; 503 when none does.
type StatusHandler struct {
	Prober Prober
}

func (h StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	attempts := h.Prober.Probe(r.Context())

	resp := StatusResponse{
		Preferred: h.Prober.Preferred(),
		Backends:  make([]BackendStatus, 0, len(attempts)),
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, a := range attempts {
		resp.Backends = append(resp.Backends, BackendStatus{
			Name:      a.Provider,
			OK:        a.OK(),
			Reason:    a.Reason,
			LatencyMS: a.Latency.Milliseconds(),
		})
		if a.OK() {
			resp.Healthy = true
		}
	}

	code := http.StatusOK
	if !resp.Healthy {
		code = http.StatusServiceUnavailable
	}
	respond.JSON(w, code, resp)
}
