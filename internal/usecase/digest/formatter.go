package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/usecase/orchestrator"
	"intel-digest/internal/usecase/repair"
)

// StageFormat labels formatting logs and metrics.
const StageFormat = "format"

// Formatted is the outcome of Format.
type Formatted struct {
	Text    string
	Outcome repair.Outcome
	// ProvidersFailed is true when Text is the combined failure marker.
	ProvidersFailed bool
	PromptChars     int
}

// Formatter turns picks into the final digest text.
type Formatter struct {
	asker         Asker
	language      string
	timeout       time.Duration
	repairTimeout time.Duration
	logger        *slog.Logger
}

// NewFormatter creates a Formatter writing in language.
func NewFormatter(asker Asker, language string, timeout, repairTimeout time.Duration, logger *slog.Logger) *Formatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Formatter{
		asker:         asker,
		language:      language,
		timeout:       timeout,
		repairTimeout: repairTimeout,
		logger:        logger,
	}
}

// CountBlocks counts the lines that open a bold marker.
func CountBlocks(text string) int {
	n := 0
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(l, "*") {
			n++
		}
	}
	return n
}

// ValidateBlocks requires at least PickCount bold blocks.
func ValidateBlocks(text string) error {
	if n := CountBlocks(text); n < PickCount {
		return fmt.Errorf("digest has %d bold blocks, want %d", n, PickCount)
	}
	return nil
}

// Format asks for the digest and repairs it once when it has too few
// blocks. The repaired text is accepted as is; a failed repair keeps the
// first draft.
func (f *Formatter) Format(ctx context.Context, picks []entity.Pick) Formatted {
	prompt := FormatPrompt(picks, f.language)
	out := Formatted{PromptChars: len(prompt)}

	text, outcome := repair.Run(ctx, repair.Stage[string]{
		Name: StageFormat,
		Produce: func(ctx context.Context) (string, error) {
			res := f.ask(ctx, f.timeout, prompt, formatMaxTokens, formatTemperature)
			if !res.OK() {
				out.ProvidersFailed = true
				return res.Marker(), ErrProvidersFailed
			}
			return res.Text(), nil
		},
		Validate: ValidateBlocks,
		Repair: func(ctx context.Context, draft string, _ error) (string, error) {
			res := f.ask(ctx, f.repairTimeout, formatRepairPrompt(picks, draft, f.language), formatRepairMaxTokens, formatRepairTemp)
			if !res.OK() {
				return "", ErrProvidersFailed
			}
			return res.Text(), nil
		},
		AcceptRepair: true,
		Fallback: func(last string, _ error) string {
			return last
		},
		Logger: f.logger,
	})

	out.Text = text
	out.Outcome = outcome
	return out
}

func (f *Formatter) ask(ctx context.Context, timeout time.Duration, prompt string, maxTokens int, temperature float32) orchestrator.Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return f.asker.Ask(ctx, orchestrator.Request{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})
}

// RenderPlain lays out picks without any generation call. It is used when
// the backends are already known to be down.
func RenderPlain(picks []entity.Pick) string {
	blocks := make([]string, 0, len(picks))
	for _, p := range picks {
		blocks = append(blocks, fmt.Sprintf("*%s*\n([Read more](%s))", p.Title, p.URL))
	}
	return strings.Join(blocks, "\n\n")
}
