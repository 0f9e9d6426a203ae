package orchestrator

import (
	"fmt"
	"strings"
	"time"
)

// Attempt is the settled outcome of one backend call.
type Attempt struct {
	Provider string
	Text     string
	Reason   string
	Latency  time.Duration
}

// OK reports whether the backend produced text.
func (a Attempt) OK() bool {
	return a.Reason == ""
}

// Result is the outcome of Ask. Exactly one of Success or Failure holds.
type Result struct {
	text     string
	provider string
	decision string
	failures []Attempt
}

// Success creates a successful result produced by provider.
func Success(text, provider string) Result {
	return Result{text: text, provider: provider}
}

// Failure creates a failed result from the failed backend attempts.
func Failure(failed ...Attempt) Result {
	return Result{failures: failed}
}

// OK reports whether the result carries text.
func (r Result) OK() bool {
	return len(r.failures) == 0
}

// Text returns the generated text, or "" for a failure.
func (r Result) Text() string {
	return r.text
}

// Provider names the backend whose text was returned.
func (r Result) Provider() string {
	return r.provider
}

// Decision names the branch of the decision table that produced the result.
func (r Result) Decision() string {
	return r.decision
}

// Reasons returns the failure reason per failed backend.
func (r Result) Reasons() []string {
	reasons := make([]string, 0, len(r.failures))
	for _, f := range r.failures {
		reasons = append(reasons, fmt.Sprintf("[%s error: %s]", f.Provider, f.Reason))
	}
	return reasons
}

// Marker renders the result as text. Failures become the combined
// diagnostic line, e.g. "[AI error] [gemini error: timeout] | [openai error: 429]".
func (r Result) Marker() string {
	if r.OK() {
		return r.text
	}
	return MarkerPrefix + " " + strings.Join(r.Reasons(), " | ")
}

// MarkerPrefix opens every rendered failure.
const MarkerPrefix = "[AI error]"

// IsMarker reports whether text is a rendered failure.
func IsMarker(text string) bool {
	return strings.HasPrefix(text, MarkerPrefix)
}

func (r Result) withDecision(decision string) Result {
	r.decision = decision
	return r
}
