package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"intel-digest/internal/app"
	"intel-digest/internal/config"
	workerPkg "intel-digest/internal/infra/worker"
	"intel-digest/internal/observability/logging"
	"intel-digest/internal/observability/slo"
	"intel-digest/internal/observability/tracing"
	pkgconfig "intel-digest/internal/pkg/config"
	"intel-digest/internal/usecase/notify"
)

func main() {
	logger := logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	_, shutdownTracing := tracing.Init("intel-digest-worker")
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Worker settings fall back to defaults; digest settings may fail hard.
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Duration("job_timeout", workerConfig.JobTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	cfg, err := config.LoadDigestConfig(logger, pkgconfig.NewConfigMetrics("digest", prometheus.DefaultRegisterer))
	if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	pipeline, err := app.Build(ctx, cfg, logger, app.Options{})
	if err != nil {
		logger.Error("failed to build digest pipeline", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := pipeline.Close(); err != nil {
			logger.Error("failed to close cache database", slog.Any("error", err))
		}
	}()
	pipeline.StartJanitor(ctx, 10*time.Minute)

	publishers := config.Publishers(logger)
	notifyService := notify.NewService(publishers, workerConfig.PublishTimeout, logger)
	logger.Info("delivery channels initialized", slog.Int("channels", len(publishers)))

	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger).
		WithMetrics(promhttp.Handler()).
		WithChannels(channelStatus(notifyService))
	go func() {
		if err := healthServer.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()

	job := workerPkg.NewJob(pipeline.Digest, notifyService, workerConfig.JobTimeout, workerMetrics, logger).
		WithSLO(
			slo.NewWindow(slo.Quality, slo.QualityTarget, slo.DefaultWindow),
			slo.NewWindow(slo.Delivery, slo.DeliveryTarget, slo.DefaultWindow),
		)
	scheduler, err := workerPkg.NewScheduler(workerConfig, job, logger)
	if err != nil {
		logger.Error("failed to schedule digest job", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	healthServer.SetReady(true)

	if workerConfig.RunOnStart {
		go job.Run(ctx)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")

	healthServer.SetReady(false)
	stopCtx, stopCancel := context.WithTimeout(context.Background(), workerConfig.JobTimeout)
	defer stopCancel()
	if err := scheduler.Stop(stopCtx); err != nil {
		logger.Warn("digest job still running at shutdown", slog.Any("error", err))
	}
	cancel()
	logger.Info("worker stopped")
}

func channelStatus(svc *notify.Service) func() []workerPkg.ChannelStatus {
	return func() []workerPkg.ChannelStatus {
		health := svc.ChannelHealth()
		out := make([]workerPkg.ChannelStatus, 0, len(health))
		for _, h := range health {
			out = append(out, workerPkg.ChannelStatus{Name: h.Name, CircuitBreakerOpen: h.CircuitBreakerOpen})
		}
		return out
	}
}
