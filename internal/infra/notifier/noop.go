package notifier

import "context"

// NoOpPublisher discards digests. Used when no channel is configured.
type NoOpPublisher struct{}

func (NoOpPublisher) Name() string { return "noop" }

func (NoOpPublisher) Publish(context.Context, string) error { return nil }
