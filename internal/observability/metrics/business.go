package metrics

import "time"

// RecordFeedFetch records one Fetch Gate call.
func RecordFeedFetch(ok bool, duration time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "absent"
	}
	FeedFetchTotal.WithLabelValues(outcome).Inc()
	FeedFetchDuration.Observe(duration.Seconds())
}

// RecordCandidates records the size of a filter pass. Phase is "default" or "widened".
func RecordCandidates(phase string, count int) {
	Candidates.WithLabelValues(phase).Set(float64(count))
}

// RecordWiden records the result of the watchdog widen pass.
func RecordWiden(sufficient bool) {
	result := "sufficient"
	if !sufficient {
		result = "insufficient"
	}
	WatchdogWidenTotal.WithLabelValues(result).Inc()
}

// RecordProviderCall records one generation backend call.
func RecordProviderCall(provider string, success bool, duration time.Duration) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	ProviderCallsTotal.WithLabelValues(provider, outcome).Inc()
	ProviderDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordDecision records which branch of the orchestrator decision table was taken.
func RecordDecision(decision string) {
	OrchestratorDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordContractOutcome records a validate/repair result for a stage.
func RecordContractOutcome(stage, outcome string) {
	ContractOutcomesTotal.WithLabelValues(stage, outcome).Inc()
}

// RecordCacheLookup records a cache hit or miss for kind.
func RecordCacheLookup(kind string, hit bool) {
	result := "hit"
	if !hit {
		result = "miss"
	}
	CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// RecordRun records a finished pipeline run.
func RecordRun(status string, duration time.Duration, approxTokens int) {
	RunsTotal.WithLabelValues(status).Inc()
	RunDuration.Observe(duration.Seconds())
	if approxTokens > 0 {
		ApproxTokensTotal.Add(float64(approxTokens))
	}
}

// RecordPublish records a digest delivery attempt.
func RecordPublish(channel string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	PublishTotal.WithLabelValues(channel, status).Inc()
}

// RecordHTTPRequest records an API request.
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
