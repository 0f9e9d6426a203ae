package notifier

import (
	"context"
	"log/slog"
	"time"
)

// SlackMessageLimit is the chunk size for Slack incoming webhooks.
const SlackMessageLimit = 3000

// SlackConfig holds configuration for the Slack publisher.
type SlackConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// SlackPublisher posts digests to a Slack incoming webhook.
type SlackPublisher struct {
	hook *webhook
}

type slackPayload struct {
	Text string `json:"text"`
}

// NewSlackPublisher creates a Slack publisher limited to one message per second.
func NewSlackPublisher(cfg SlackConfig, logger *slog.Logger) *SlackPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SlackPublisher{hook: newWebhook("slack", cfg.WebhookURL, timeout, 1, 1, logger)}
}

func (p *SlackPublisher) Name() string { return "slack" }

func (p *SlackPublisher) Publish(ctx context.Context, digest string) error {
	chunks := Chunk(digest, SlackMessageLimit)
	payloads := make([]any, 0, len(chunks))
	for _, c := range chunks {
		payloads = append(payloads, slackPayload{Text: c})
	}
	return p.hook.publish(ctx, payloads)
}
