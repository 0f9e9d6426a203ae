package config

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"intel-digest/internal/infra/notifier"
	pkgconfig "intel-digest/internal/pkg/config"
)

// LoadSlackConfig loads the Slack publisher configuration.
//
// Environment variables:
//   - SLACK_ENABLED: "true" to enable (default: false)
//   - SLACK_WEBHOOK_URL: https://hooks.slack.com/services/... (required if enabled)
//
// An invalid URL disables the channel with a warning.
func LoadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if pkgconfig.LoadEnvString("SLACK_ENABLED", "") != "true" {
		return notifier.SlackConfig{}
	}
	webhookURL := pkgconfig.LoadEnvString("SLACK_WEBHOOK_URL", "")
	if !validWebhook(logger, "slack", webhookURL, "hooks.slack.com", "/services/") {
		return notifier.SlackConfig{}
	}
	return notifier.SlackConfig{Enabled: true, WebhookURL: webhookURL, Timeout: 30 * time.Second}
}

// LoadDiscordConfig loads the Discord publisher configuration.
//
// Environment variables:
//   - DISCORD_ENABLED: "true" to enable (default: false)
//   - DISCORD_WEBHOOK_URL: https://discord.com/api/webhooks/... (required if enabled)
func LoadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	if pkgconfig.LoadEnvString("DISCORD_ENABLED", "") != "true" {
		return notifier.DiscordConfig{}
	}
	webhookURL := pkgconfig.LoadEnvString("DISCORD_WEBHOOK_URL", "")
	if !validWebhook(logger, "discord", webhookURL, "discord.com", "/api/webhooks/") {
		return notifier.DiscordConfig{}
	}
	return notifier.DiscordConfig{Enabled: true, WebhookURL: webhookURL, Timeout: 30 * time.Second}
}

// Publishers returns the enabled publishers, in Slack, Discord order.
func Publishers(logger *slog.Logger) []notifier.Publisher {
	var out []notifier.Publisher
	if cfg := LoadSlackConfig(logger); cfg.Enabled {
		out = append(out, notifier.NewSlackPublisher(cfg, logger))
	}
	if cfg := LoadDiscordConfig(logger); cfg.Enabled {
		out = append(out, notifier.NewDiscordPublisher(cfg, logger))
	}
	return out
}

func validWebhook(logger *slog.Logger, channel, raw, host, pathPrefix string) bool {
	if raw == "" {
		logger.Warn("webhook URL is empty, disabling channel", slog.String("channel", channel))
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		logger.Warn("invalid webhook URL format, disabling channel", slog.String("channel", channel))
		return false
	}
	if u.Scheme != "https" {
		logger.Warn("webhook URL must use HTTPS, disabling channel", slog.String("channel", channel))
		return false
	}
	if u.Host != host {
		logger.Warn("invalid webhook host, disabling channel",
			slog.String("channel", channel), slog.String("host", u.Host))
		return false
	}
	if !strings.HasPrefix(u.Path, pathPrefix) {
		logger.Warn("invalid webhook path, disabling channel", slog.String("channel", channel))
		return false
	}
	return true
}
