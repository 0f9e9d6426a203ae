package notifier

import (
	"context"
	"log/slog"
	"time"
)

// DiscordMessageLimit is Discord's content length limit.
const DiscordMessageLimit = 2000

// DiscordConfig holds configuration for the Discord publisher.
type DiscordConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// DiscordPublisher posts digests to a Discord webhook.
type DiscordPublisher struct {
	hook *webhook
}

type discordPayload struct {
	Content string `json:"content"`
}

// NewDiscordPublisher creates a Discord publisher.
// Discord allows 5 requests per 2 seconds per webhook; we stay under it.
func NewDiscordPublisher(cfg DiscordConfig, logger *slog.Logger) *DiscordPublisher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &DiscordPublisher{hook: newWebhook("discord", cfg.WebhookURL, timeout, 0.5, 3, logger)}
}

func (p *DiscordPublisher) Name() string { return "discord" }

func (p *DiscordPublisher) Publish(ctx context.Context, digest string) error {
	chunks := Chunk(digest, DiscordMessageLimit)
	payloads := make([]any, 0, len(chunks))
	for _, c := range chunks {
		payloads = append(payloads, discordPayload{Content: c})
	}
	return p.hook.publish(ctx, payloads)
}
