package http

import (
	"context"
	"net/http"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/handler/http/respond"
	"intel-digest/internal/usecase/digest"
)

// DigestRunner is the part of digest.Service the API needs.
type DigestRunner interface {
	Run(ctx context.Context) (*digest.Report, error)
	Select(ctx context.Context) (*digest.Report, error)
}

// DigestResponse is the JSON body of GET /digest and GET /digest/selection.
type DigestResponse struct {
	RunID        string        `json:"run_id"`
	Status       string        `json:"status"`
	Digest       string        `json:"digest,omitempty"`
	Candidates   int           `json:"candidates"`
	Widened      bool          `json:"widened"`
	Selection    string        `json:"selection_outcome,omitempty"`
	Memoized     bool          `json:"selection_memoized"`
	Picks        []PickPayload `json:"picks"`
	ApproxTokens int           `json:"approx_tokens"`
	DurationMS   int64         `json:"duration_ms"`
}

// PickPayload is one selected headline with its recovered link.
type PickPayload struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DigestHandler serves GET /digest. With ?format=text the digest text is
// returned as text/plain.
type DigestHandler struct {
	Runner DigestRunner
}

func (h DigestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Runner.Run(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, digest.FailureMessage, err))
		return
	}
	if r.URL.Query().Get("format") == "text" {
		respond.Text(w, http.StatusOK, report.Digest)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(report))
}

// SelectionHandler serves GET /digest/selection: the four picks without formatting.
type SelectionHandler struct {
	Runner DigestRunner
}

func (h SelectionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	report, err := h.Runner.Select(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, digest.FailureMessage, err))
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(report))
}

func toResponse(report *digest.Report) DigestResponse {
	resp := DigestResponse{
		RunID:        report.RunID,
		Status:       report.Status,
		Digest:       report.Digest,
		Candidates:   report.Candidates,
		Widened:      report.Widened,
		Selection:    string(report.Selection.Outcome),
		Memoized:     report.Selection.Memoized,
		Picks:        picks(report.Picks),
		ApproxTokens: report.ApproxTokens,
		DurationMS:   report.Duration.Milliseconds(),
	}
	return resp
}

func picks(in []entity.Pick) []PickPayload {
	out := make([]PickPayload, 0, len(in))
	for _, p := range in {
		out = append(out, PickPayload{Title: p.Title, URL: p.URL})
	}
	return out
}
