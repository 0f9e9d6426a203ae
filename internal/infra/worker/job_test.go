package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"intel-digest/internal/observability/slo"
	"intel-digest/internal/usecase/digest"
	"intel-digest/internal/usecase/notify"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	report *digest.Report
	err    error
	calls  int
}

func (s *stubRunner) Run(ctx context.Context) (*digest.Report, error) {
	s.calls++
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("job context has no deadline")
	}
	return s.report, s.err
}

type stubPublisher struct {
	mu    sync.Mutex
	texts []string
	out   []notify.Delivery
}

func (s *stubPublisher) Publish(_ context.Context, text string) []notify.Delivery {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return s.out
}

func TestJob_PublishesDigest(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkerMetrics(reg)
	runner := &stubRunner{report: &digest.Report{RunID: "r1", Status: digest.StatusOK, Digest: "*A*\nsummary"}}
	pub := &stubPublisher{out: []notify.Delivery{{Channel: "slack"}, {Channel: "discord", Err: errors.New("down")}}}

	NewJob(runner, pub, time.Minute, metrics, testLogger()).Run(context.Background())

	require.Equal(t, []string{"*A*\nsummary"}, pub.texts)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues(digest.StatusOK)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CronJobDeliveriesTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CronJobDeliveriesTotal.WithLabelValues("failure")))
	assert.Greater(t, testutil.ToFloat64(metrics.CronJobLastSuccessTimestamp), float64(0))
}

func TestJob_RunErrorNotPublished(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewWorkerMetrics(reg)
	runner := &stubRunner{err: errors.New("cache store unavailable")}
	pub := &stubPublisher{}

	NewJob(runner, pub, time.Minute, metrics, testLogger()).Run(context.Background())

	assert.Empty(t, pub.texts)
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CronJobRunsTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.CronJobLastSuccessTimestamp))
}

func TestJob_NilPublisherAndMetrics(t *testing.T) {
	runner := &stubRunner{report: &digest.Report{Status: digest.StatusCached, Digest: "x"}}

	assert.NotPanics(t, func() {
		NewJob(runner, nil, time.Minute, nil, testLogger()).Run(context.Background())
	})
	assert.Equal(t, 1, runner.calls)
}

func TestJob_TracksSLO(t *testing.T) {
	quality := slo.NewWindow("job_quality", slo.QualityTarget, 10)
	delivery := slo.NewWindow("job_delivery", slo.DeliveryTarget, 10)
	pub := &stubPublisher{out: []notify.Delivery{{Channel: "slack"}, {Channel: "discord", Err: errors.New("down")}}}

	runner := &stubRunner{report: &digest.Report{Status: digest.StatusOK, Digest: "x"}}
	job := NewJob(runner, pub, time.Minute, nil, testLogger()).WithSLO(quality, delivery)
	job.Run(context.Background())
	assert.Equal(t, 1.0, quality.Ratio())
	assert.Equal(t, 0.5, delivery.Ratio())

	runner.report = &digest.Report{Status: digest.StatusDegraded, Digest: "x"}
	job.Run(context.Background())
	assert.Equal(t, 0.5, quality.Ratio())

	runner.report, runner.err = nil, errors.New("cache down")
	job.Run(context.Background())
	assert.InDelta(t, 1.0/3, quality.Ratio(), 1e-9)
}

func TestFullDigest(t *testing.T) {
	assert.True(t, fullDigest(digest.StatusOK))
	assert.True(t, fullDigest(digest.StatusCached))
	assert.False(t, fullDigest(digest.StatusDegraded))
	assert.False(t, fullDigest(digest.StatusInsufficient))
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.CronSchedule = "bogus"

	_, err := NewScheduler(&cfg, NewJob(&stubRunner{}, nil, time.Minute, nil, testLogger()), testLogger())
	assert.Error(t, err)
}

func TestScheduler_StartStop(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewScheduler(&cfg, NewJob(&stubRunner{}, nil, time.Minute, nil, testLogger()), testLogger())
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, s.Stop(ctx))
}
