package digest

import (
	"context"
	"log/slog"
	"time"

	"intel-digest/internal/usecase/orchestrator"
)

const (
	maxSentimentRunes = 120
	sentimentTimeout  = 4 * time.Second
)

// Sentiment classifies the tone of titles in one short line.
// Any failure yields "".
func Sentiment(ctx context.Context, asker Asker, titles []string, logger *slog.Logger) string {
	if len(titles) == 0 {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, sentimentTimeout)
	defer cancel()

	res := asker.Ask(ctx, orchestrator.Request{
		Prompt:      sentimentPrompt(titles),
		MaxTokens:   sentimentMaxTokens,
		Temperature: sentimentTemperature,
	})
	if !res.OK() {
		logger.WarnContext(ctx, "sentiment line skipped", slog.String("marker", res.Marker()))
		return ""
	}

	lines := nonBlankLines(res.Text())
	if len(lines) == 0 {
		return ""
	}
	line := []rune(lines[0])
	if len(line) > maxSentimentRunes {
		line = line[:maxSentimentRunes]
	}
	return string(line)
}
