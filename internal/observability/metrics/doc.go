// Package metrics provides the Prometheus collectors of the digest service.
//
// Collectors are package-level promauto globals registered on the default
// registry and exposed via the /metrics endpoint. Recording helpers keep label
// values in one place:
//
//	start := time.Now()
//	text, err := backend.Generate(ctx, prompt, 900, 0.4)
//	metrics.RecordProviderCall("gemini", err == nil, time.Since(start))
package metrics
