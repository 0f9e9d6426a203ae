package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a Job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron   *cron.Cron
	job    *Job
	logger *slog.Logger
}

// NewScheduler registers job on cfg.CronSchedule in cfg.Timezone.
func NewScheduler(cfg *WorkerConfig, job *Job, logger *slog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{cron: c, job: job, logger: logger}
	if _, err := c.AddFunc(cfg.CronSchedule, func() { job.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("add cron job: %w", err)
	}
	return s, nil
}

// Start starts the scheduler in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("digest job scheduled", slog.Time("next", e.Next))
	}
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
