package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultClaudeModel is used when Config.Model is empty.
const DefaultClaudeModel = "claude-3-5-haiku-latest"

// Claude generates text with the Anthropic messages API.
type Claude struct {
	client anthropic.Client
	model  string
	guard  *guard
}

// NewClaude creates a Claude backend. SDK level retries are disabled; the
// guard owns the retry policy.
func NewClaude(cfg Config, logger *slog.Logger) *Claude {
	if logger == nil {
		logger = slog.Default()
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultClaudeModel
	}

	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  model,
		guard:  newGuard(NameClaude, logger),
	}
}

// Name implements Backend.
func (c *Claude) Name() string { return NameClaude }

// Generate implements Backend.
func (c *Claude) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return c.guard.run(ctx, maxTokens, func(ctx context.Context) (string, error) {
		return c.doGenerate(ctx, prompt, maxTokens, temperature)
	})
}

func (c *Claude) doGenerate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(float64(temperature)),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = statusError(apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned non-text content: %w", ErrEmptyResponse)
	}
	text := strings.TrimSpace(textBlock.Text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
