// Package notifier delivers a finished digest to chat webhooks.
//
// A digest is split on line boundaries into chunks that fit the channel's
// message limit. Chunks are posted in order through a rate limiter; transient
// failures are retried, client errors are not.
package notifier

import "context"

// Publisher posts a digest to one delivery channel.
type Publisher interface {
	// Name identifies the channel in logs and metrics (lowercase).
	Name() string

	// Publish posts digest, chunked to the channel limit. It returns the
	// first chunk error after the retry budget is spent.
	Publish(ctx context.Context, digest string) error
}
