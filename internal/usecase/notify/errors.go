package notify

import "errors"

// Sentinel errors for notify use case operations.
var (
	// ErrCircuitBreakerOpen indicates that the channel's breaker is open and
	// the delivery was skipped.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open for this channel")

	// ErrEmptyDigest indicates that there was nothing to deliver.
	ErrEmptyDigest = errors.New("empty digest")
)
