package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when Config.Model is empty.
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	guard  *guard
}

// NewGemini creates a Gemini backend.
func NewGemini(ctx context.Context, cfg Config, logger *slog.Logger) (*Gemini, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &Gemini{
		client: client,
		model:  model,
		guard:  newGuard(NameGemini, logger),
	}, nil
}

// Name implements Backend.
func (g *Gemini) Name() string { return NameGemini }

// Generate implements Backend.
func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	return g.guard.run(ctx, maxTokens, func(ctx context.Context) (string, error) {
		return g.doGenerate(ctx, prompt, maxTokens, temperature)
	})
}

func (g *Gemini) doGenerate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: prompt}},
		Role:  genai.RoleUser,
	}}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
		Temperature:     genai.Ptr(temperature),
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			err = statusError(apiErr.Code, err)
		}
		return "", fmt.Errorf("gemini api error: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
