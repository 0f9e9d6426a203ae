// Package notify delivers a finished digest to every configured channel.
//
// Deliveries run concurrently and are all-settled: one channel failing never
// stops the others, and no failure is returned to the digest run.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"intel-digest/internal/infra/notifier"
	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/pkg/sanitize"
	"intel-digest/internal/resilience/circuitbreaker"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultTimeout bounds a single channel delivery, including retries.
const DefaultTimeout = 30 * time.Second

// Delivery is the outcome of one channel.
type Delivery struct {
	Channel  string
	Err      error
	Duration time.Duration
}

// ChannelHealthStatus represents the health status of a delivery channel.
type ChannelHealthStatus struct {
	Name               string
	CircuitBreakerOpen bool
}

type channel struct {
	publisher notifier.Publisher
	breaker   *circuitbreaker.CircuitBreaker
}

// Service fans a digest out to its publishers.
type Service struct {
	channels []channel
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a service over publishers. A zero timeout uses DefaultTimeout.
func NewService(publishers []notifier.Publisher, timeout time.Duration, logger *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{timeout: timeout, logger: logger}
	for _, p := range publishers {
		s.channels = append(s.channels, channel{
			publisher: p,
			breaker:   circuitbreaker.New(circuitbreaker.PublisherConfig(p.Name())),
		})
	}
	return s
}

// Publish delivers digest to every channel and waits for all of them.
// The returned slice is in channel order. Failures are logged, never returned.
func (s *Service) Publish(ctx context.Context, digest string) []Delivery {
	if strings.TrimSpace(digest) == "" || len(s.channels) == 0 {
		return nil
	}

	requestID := uuid.NewString()
	s.logger.InfoContext(ctx, "dispatching digest",
		slog.String("request_id", requestID),
		slog.Int("channels", len(s.channels)),
		slog.Int("chars", len(digest)))

	out := make([]Delivery, len(s.channels))
	var g errgroup.Group
	for i, ch := range s.channels {
		g.Go(func() error {
			out[i] = s.deliver(ctx, requestID, ch, digest)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) deliver(ctx context.Context, requestID string, ch channel, digest string) (d Delivery) {
	name := ch.publisher.Name()
	d.Channel = name
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in delivery channel",
				slog.String("request_id", requestID),
				slog.String("channel", name),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			d.Err = fmt.Errorf("panic: %v", r)
		}
		d.Duration = time.Since(start)
		metrics.RecordPublish(name, d.Err == nil)
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := ch.breaker.Execute(func() (interface{}, error) {
		return nil, ch.publisher.Publish(ctx, digest)
	})
	if circuitbreaker.IsRejection(err) {
		err = fmt.Errorf("%w: %s", ErrCircuitBreakerOpen, name)
	}
	d.Err = err

	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrCircuitBreakerOpen) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "digest delivery failed",
			slog.String("request_id", requestID),
			slog.String("channel", name),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", sanitize.Error(err)))
		return d
	}

	s.logger.Info("digest delivered",
		slog.String("request_id", requestID),
		slog.String("channel", name),
		slog.Duration("duration", time.Since(start)))
	return d
}

// ChannelHealth reports the breaker state of every channel.
func (s *Service) ChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.publisher.Name(),
			CircuitBreakerOpen: ch.breaker.IsOpen(),
		})
	}
	return statuses
}
