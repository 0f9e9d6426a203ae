// Package fetcher implements the Fetch Gate: bounded-time retrieval of a single
// remote resource that reports failure as absence instead of an error.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"intel-digest/internal/observability/metrics"
)

// Gate performs one GET per Fetch call. It holds no per-call state and is safe
// for concurrent use.
type Gate struct {
	client *http.Client
	config GateConfig
	logger *slog.Logger
}

// NewGate creates a Gate. A nil client gets a transport enforcing TLS 1.2+ and
// redirect validation.
func NewGate(cfg GateConfig, client *http.Client, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{config: cfg, logger: logger}

	if client == nil {
		client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion: tls.VersionTLS12,
				},
			},
		}
	}
	if client.CheckRedirect == nil {
		client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= g.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			if err := validateURL(req.URL.String(), g.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		}
	}
	g.client = client
	return g
}

type fetchResult struct {
	body string
	err  error
}

// Fetch retrieves rawURL within timeout. It returns the body and true on a 2xx
// response, or "" and false on any failure. A response that arrives after the
// timer fires is discarded.
func (g *Gate) Fetch(ctx context.Context, rawURL string, timeout time.Duration) (string, bool) {
	if timeout <= 0 {
		timeout = g.config.DefaultTimeout
	}
	start := time.Now()

	body, err := g.race(ctx, rawURL, timeout)
	metrics.RecordFeedFetch(err == nil, time.Since(start))
	if err != nil {
		g.logger.Warn("feed fetch absent",
			slog.String("url", rawURL),
			slog.Duration("duration", time.Since(start)),
			slog.Any("reason", err))
		return "", false
	}
	return body, true
}

func (g *Gate) race(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	if err := validateURL(rawURL, g.config.DenyPrivateIPs); err != nil {
		return "", err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Buffered so the request goroutine never blocks after the timer wins.
	done := make(chan fetchResult, 1)
	go func() {
		body, err := g.get(reqCtx, rawURL)
		done <- fetchResult{body: body, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		return res.body, res.err
	case <-timer.C:
		return "", fmt.Errorf("%w: after %v", ErrTimeout, timeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Gate) get(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", g.config.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := g.client.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return "", urlErr.Err
		}
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, g.config.MaxBodySize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > g.config.MaxBodySize {
		return "", fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, g.config.MaxBodySize)
	}

	return string(data), nil
}
