package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// webhook posts JSON payloads to one webhook URL with rate limiting and retries.
type webhook struct {
	name        string
	url         string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

func newWebhook(name, url string, timeout time.Duration, perSecond float64, burst int, logger *slog.Logger) *webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &webhook{
		name:        name,
		url:         url,
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(perSecond), burst),
		maxAttempts: 2,
		baseDelay:   5 * time.Second,
		logger:      logger,
	}
}

// publish posts every payload in order and stops at the first failure.
func (w *webhook) publish(ctx context.Context, payloads []any) error {
	requestID := uuid.NewString()
	w.logger.InfoContext(ctx, "publishing digest",
		slog.String("channel", w.name),
		slog.String("request_id", requestID),
		slog.Int("chunks", len(payloads)))

	for i, p := range payloads {
		if err := w.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}
		if err := w.sendWithRetry(ctx, requestID, p); err != nil {
			return fmt.Errorf("%s chunk %d/%d: %w", w.name, i+1, len(payloads), err)
		}
	}
	return nil
}

// sendWithRetry retries 5xx and network failures with linear backoff and
// honours retry_after on 429. Client errors fail immediately.
func (w *webhook) sendWithRetry(ctx context.Context, requestID string, payload any) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.send(ctx, payload)
		if err == nil {
			return nil
		}
		lastErr = err

		var delay time.Duration
		if rateLimitErr, ok := is429Error(err); ok {
			delay = rateLimitErr.RetryAfter
			w.logger.Warn("webhook rate limit hit, backing off",
				slog.String("channel", w.name),
				slog.String("request_id", requestID),
				slog.Duration("retry_after", delay),
				slog.Int("attempt", attempt))
		} else if !isRetryableError(err) {
			return err
		} else {
			delay = w.baseDelay * time.Duration(attempt)
			w.logger.Warn("webhook request failed, retrying",
				slog.String("channel", w.name),
				slog.String("request_id", requestID),
				slog.Any("error", err),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay))
		}

		if attempt == w.maxAttempts {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
		}
	}
	return fmt.Errorf("%s webhook failed after %d attempts: %w", w.name, w.maxAttempts, lastErr)
}

func (w *webhook) send(ctx context.Context, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		// The URL carries the webhook token; keep it out of the message.
		return fmt.Errorf("execute %s webhook request: %w", w.name, unwrapURLError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{
			Message:    w.name + " rate limit exceeded",
			RetryAfter: extractRetryAfter(resp, body),
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API client error: %s", w.name, string(body)),
		}
	case resp.StatusCode >= 500:
		return &ServerError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("%s API server error: %s", w.name, string(body)),
		}
	default:
		return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}
}

// extractRetryAfter reads retry_after (seconds) from a JSON body, then the
// Retry-After header. It defaults to 5s.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var parsed struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.RetryAfter > 0 {
		return time.Duration(parsed.RetryAfter * float64(time.Second))
	}

	if header := resp.Header.Get("Retry-After"); header != "" {
		if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}

	return 5 * time.Second
}
