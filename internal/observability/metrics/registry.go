package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track API request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 40},
		},
		[]string{"method", "path"},
	)
)

// Feed metrics track the Fetch Gate and candidate filter.
var (
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_feed_fetch_total",
			Help: "Feed fetches by outcome (ok, absent)",
		},
		[]string{"outcome"},
	)

	FeedFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_feed_fetch_duration_seconds",
			Help:    "Feed fetch duration in seconds, including timeouts",
			Buckets: []float64{.1, .25, .5, 1, 2, 3, 5, 8},
		},
	)

	// Candidates is the size of the last candidate set per phase (default, widened).
	Candidates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "digest_candidates",
			Help: "Number of candidates produced by the last filter pass",
		},
		[]string{"phase"},
	)

	WatchdogWidenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_watchdog_widen_total",
			Help: "Watchdog widen passes by result (sufficient, insufficient)",
		},
		[]string{"result"},
	)
)

// Generation metrics track backend calls and orchestrator decisions.
var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_provider_calls_total",
			Help: "Generation backend calls by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "digest_provider_duration_seconds",
			Help:    "Generation backend latency in seconds",
			Buckets: []float64{.25, .5, 1, 2, 4, 6, 8, 12, 20},
		},
		[]string{"provider"},
	)

	OrchestratorDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_orchestrator_decisions_total",
			Help: "Orchestrator outcomes (reconciled, reconcile_fallback, only_a, only_b, both_failed)",
		},
		[]string{"decision"},
	)

	ContractOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_contract_outcomes_total",
			Help: "Validate/repair outcomes by stage (select, format) and outcome",
		},
		[]string{"stage", "outcome"},
	)
)

// Pipeline metrics track cache efficiency and whole runs.
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_cache_lookups_total",
			Help: "Cache lookups by kind (digest, selection, interests) and result (hit, miss)",
		},
		[]string{"kind", "result"},
	)

	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_runs_total",
			Help: "Digest pipeline runs by status",
		},
		[]string{"status"},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "digest_run_duration_seconds",
			Help:    "End-to-end digest run duration in seconds",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 20, 30, 45, 60},
		},
	)

	ApproxTokensTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "digest_approx_prompt_tokens_total",
			Help: "Approximate prompt tokens sent (characters / 4)",
		},
	)
)

// Delivery metrics track webhook publication.
var (
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_publish_total",
			Help: "Digest deliveries by channel and status",
		},
		[]string{"channel", "status"},
	)
)
