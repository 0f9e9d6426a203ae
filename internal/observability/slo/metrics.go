// Package slo tracks service level objectives of the scheduled digest over a
// rolling window of recent events.
package slo

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Objective names and targets.
const (
	// Quality: scheduled runs that produce a fully generated digest (ok or cached).
	Quality       = "quality"
	QualityTarget = 0.95

	// Delivery: individual channel deliveries that succeed.
	Delivery       = "delivery"
	DeliveryTarget = 0.99

	// DefaultWindow is about a month of daily runs.
	DefaultWindow = 30
)

var (
	// SLORatio is the share of good events in the rolling window (0-1).
	SLORatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_slo_ratio",
			Help: "Share of good events in the rolling window (0-1)",
		},
		[]string{"objective"},
	)

	// SLOErrorBudgetRemaining is the unspent error budget (1 = untouched, <0 = exhausted).
	SLOErrorBudgetRemaining = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_slo_error_budget_remaining",
			Help: "Fraction of the error budget left in the rolling window",
		},
		[]string{"objective"},
	)

	// SLOTarget exposes the configured target so dashboards need no constants.
	SLOTarget = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_slo_target_ratio",
			Help: "Target ratio of good events",
		},
		[]string{"objective"},
	)
)

// Window is a fixed-size ring of good/bad events for one objective.
// It is safe for concurrent use.
type Window struct {
	objective string
	target    float64

	mu     sync.Mutex
	events []bool
	next   int
	count  int
}

// NewWindow creates a window holding the last size events. Sizes below 1 use DefaultWindow.
func NewWindow(objective string, target float64, size int) *Window {
	if size < 1 {
		size = DefaultWindow
	}
	SLOTarget.WithLabelValues(objective).Set(target)
	return &Window{
		objective: objective,
		target:    target,
		events:    make([]bool, size),
	}
}

// Observe records one event and updates the gauges. It returns the new ratio.
func (w *Window) Observe(good bool) float64 {
	w.mu.Lock()
	w.events[w.next] = good
	w.next = (w.next + 1) % len(w.events)
	if w.count < len(w.events) {
		w.count++
	}
	ratio, budget := w.stats()
	w.mu.Unlock()

	SLORatio.WithLabelValues(w.objective).Set(ratio)
	SLOErrorBudgetRemaining.WithLabelValues(w.objective).Set(budget)
	return ratio
}

// Ratio returns the share of good events, 1 when nothing was observed.
func (w *Window) Ratio() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	ratio, _ := w.stats()
	return ratio
}

// BudgetRemaining returns the unspent share of the error budget.
func (w *Window) BudgetRemaining() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, budget := w.stats()
	return budget
}

// stats must be called with mu held.
func (w *Window) stats() (ratio, budget float64) {
	if w.count == 0 {
		return 1, 1
	}
	good := 0
	for i := 0; i < w.count; i++ {
		if w.events[i] {
			good++
		}
	}
	bad := w.count - good
	ratio = float64(good) / float64(w.count)

	allowed := (1 - w.target) * float64(w.count)
	switch {
	case bad == 0:
		budget = 1
	case allowed == 0:
		budget = 0
	default:
		budget = 1 - float64(bad)/allowed
	}
	return ratio, budget
}
