package worker

import (
	"context"
	"log/slog"
	"time"

	"intel-digest/internal/observability/slo"
	"intel-digest/internal/pkg/sanitize"
	"intel-digest/internal/usecase/digest"
	"intel-digest/internal/usecase/notify"
)

// DigestRunner produces one digest.
type DigestRunner interface {
	Run(ctx context.Context) (*digest.Report, error)
}

// DigestPublisher delivers a digest to every channel.
type DigestPublisher interface {
	Publish(ctx context.Context, text string) []notify.Delivery
}

// Job runs the digest pipeline and publishes the result.
type Job struct {
	runner    DigestRunner
	publisher DigestPublisher
	timeout   time.Duration
	metrics   *WorkerMetrics
	logger    *slog.Logger

	quality  *slo.Window
	delivery *slo.Window
}

// NewJob creates a digest job. publisher may be nil to only warm the cache.
func NewJob(runner DigestRunner, publisher DigestPublisher, timeout time.Duration, metrics *WorkerMetrics, logger *slog.Logger) *Job {
	return &Job{
		runner:    runner,
		publisher: publisher,
		timeout:   timeout,
		metrics:   metrics,
		logger:    logger,
	}
}

// WithSLO tracks run quality and delivery success in the given windows.
// Either may be nil.
func (j *Job) WithSLO(quality, delivery *slo.Window) *Job {
	j.quality = quality
	j.delivery = delivery
	return j
}

// Run executes one job. Errors are logged and recorded, never returned:
// a failed run must not stop the scheduler.
func (j *Job) Run(ctx context.Context) {
	start := time.Now()
	j.logger.Info("digest job started")

	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	report, err := j.runner.Run(ctx)
	if err != nil {
		j.logger.Error("digest job failed", slog.String("error", sanitize.Error(err)))
		j.record("failure", start)
		j.observeQuality(false)
		return
	}
	j.observeQuality(fullDigest(report.Status))

	delivered, failed := 0, 0
	if j.publisher != nil {
		for _, d := range j.publisher.Publish(ctx, report.Digest) {
			if j.metrics != nil {
				j.metrics.RecordDelivery(d.Err == nil)
			}
			if j.delivery != nil {
				j.delivery.Observe(d.Err == nil)
			}
			if d.Err != nil {
				failed++
			} else {
				delivered++
			}
		}
	}

	j.record(report.Status, start)
	if j.metrics != nil {
		j.metrics.RecordLastSuccess()
	}
	j.logger.Info("digest job completed",
		slog.String("run_id", report.RunID),
		slog.String("status", report.Status),
		slog.Int("candidates", report.Candidates),
		slog.Int("delivered", delivered),
		slog.Int("failed_deliveries", failed),
		slog.Duration("duration", time.Since(start)))
}

func (j *Job) record(status string, start time.Time) {
	if j.metrics == nil {
		return
	}
	j.metrics.RecordJobRun(status)
	j.metrics.RecordJobDuration(time.Since(start).Seconds())
}

func (j *Job) observeQuality(good bool) {
	if j.quality != nil {
		j.quality.Observe(good)
	}
}

// fullDigest reports whether a run produced a generated digest rather than
// a fallback or sentinel.
func fullDigest(status string) bool {
	return status == digest.StatusOK || status == digest.StatusCached
}
