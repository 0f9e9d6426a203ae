package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when Config.Model is empty.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAI generates text with the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
	guard  *guard
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg Config, logger *slog.Logger) *OpenAI {
	if logger == nil {
		logger = slog.Default()
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		clientCfg.HTTPClient = cfg.HTTPClient
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		guard:  newGuard(NameOpenAI, logger),
	}
}

// Name implements Backend.
func (o *OpenAI) Name() string { return NameOpenAI }

// Generate implements Backend.
func (o *OpenAI) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return o.guard.run(ctx, maxTokens, func(ctx context.Context) (string, error) {
		return o.doGenerate(ctx, prompt, maxTokens, temperature)
	})
}

func (o *OpenAI) doGenerate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", openAIStatusError(err))
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func openAIStatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, err)
	}
	return err
}
