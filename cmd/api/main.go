package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"intel-digest/internal/app"
	"intel-digest/internal/config"
	hhttp "intel-digest/internal/handler/http"
	"intel-digest/internal/observability/logging"
	"intel-digest/internal/observability/tracing"
	pkgconfig "intel-digest/internal/pkg/config"
)

func main() {
	logger := logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	_, shutdownTracing := tracing.Init("intel-digest-api")
	defer func() { _ = shutdownTracing(context.Background()) }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	router := hhttp.RouterConfig{
		Runner:          pipeline.Digest,
		Prober:          pipeline.Orchestrator,
		Version:         getVersion(),
		Logger:          logger,
		DigestTimeout:   pkgconfig.LoadEnvDuration("DIGEST_REQUEST_TIMEOUT", time.Minute, pkgconfig.ValidatePositiveDuration).Value.(time.Duration),
		DigestRateLimit: pkgconfig.LoadEnvInt("DIGEST_RATE_LIMIT", 10, func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 1000) }).Value.(int),
	}
	if pipeline.DB != nil {
		router.DB = pipeline.DB
	}

	runServer(ctx, cancel, logger, hhttp.NewRouter(router), router.Version)
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

func runServer(ctx context.Context, cancel context.CancelFunc, logger *slog.Logger, handler http.Handler, version string) {
	port := pkgconfig.LoadEnvInt("PORT", 8080, func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 65535) }).Value.(int)
	addr := fmt.Sprintf(":%d", port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
