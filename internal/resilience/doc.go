// Package resilience groups the fault tolerance helpers used by the digest pipeline.
//
// The subpackages cover:
//   - circuit breakers around generation backends, the Postgres cache and webhook channels
//   - bounded retry with exponential backoff and jitter for transient HTTP failures
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.ProviderConfig("gemini"))
//	out, err := cb.Execute(func() (interface{}, error) {
//	    return backend.call(ctx, prompt)
//	})
//
//	err := retry.WithBackoff(ctx, retry.ProviderConfig(), func() error {
//	    return performCall()
//	})
package resilience
