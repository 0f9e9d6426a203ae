package worker

import (
	"fmt"
	"log/slog"
	"time"

	"intel-digest/internal/pkg/config"
)

// WorkerConfig holds the configuration for the scheduled digest worker.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
type WorkerConfig struct {
	// CronSchedule is the cron expression for the digest job.
	// Format: "minute hour day month weekday"
	// Default: "0 7 * * *"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC"
	Timezone string

	// JobTimeout bounds one digest run including delivery.
	// Range: 10s-30m
	// Default: 2 minutes
	JobTimeout time.Duration

	// PublishTimeout bounds the delivery to a single channel.
	// Default: 30 seconds
	PublishTimeout time.Duration

	// HealthPort is the port for the health and metrics HTTP server.
	// Range: 1024-65535
	// Default: 9091
	HealthPort int

	// RunOnStart runs one digest immediately after startup.
	RunOnStart bool
}

// DefaultConfig returns a WorkerConfig with default values.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:   "0 7 * * *",
		Timezone:       "UTC",
		JobTimeout:     2 * time.Minute,
		PublishTimeout: 30 * time.Second,
		HealthPort:     9091,
	}
}

// Validate checks if the configuration values are valid.
// All field errors are collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateDuration(c.JobTimeout, 10*time.Second, 30*time.Minute); err != nil {
		errors = append(errors, fmt.Errorf("job timeout: %w", err))
	}
	if err := config.ValidatePositiveDuration(c.PublishTimeout); err != nil {
		errors = append(errors, fmt.Errorf("publish timeout: %w", err))
	}
	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}
	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with automatic fallback to default values on invalid input.
//
// Environment variables:
//   - CRON_SCHEDULE: Cron expression (default: "0 7 * * *")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - DIGEST_JOB_TIMEOUT: Duration, e.g. "2m" (default: 2 minutes)
//   - PUBLISH_TIMEOUT: Duration (default: 30 seconds)
//   - WORKER_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//   - RUN_ON_START: Boolean (default: false)
//
// It never fails; every fallback is logged and counted in metrics.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *WorkerConfig {
	cfg := DefaultConfig()
	var fallbacks []string

	apply := func(field string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fallbacks = append(fallbacks, field)
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	apply("cron_schedule", result)

	result = config.LoadEnvWithFallback("WORKER_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	apply("timezone", result)

	result = config.LoadEnvDuration("DIGEST_JOB_TIMEOUT", cfg.JobTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 10*time.Second, 30*time.Minute)
	})
	cfg.JobTimeout = result.Value.(time.Duration)
	apply("job_timeout", result)

	result = config.LoadEnvDuration("PUBLISH_TIMEOUT", cfg.PublishTimeout, config.ValidatePositiveDuration)
	cfg.PublishTimeout = result.Value.(time.Duration)
	apply("publish_timeout", result)

	result = config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	apply("health_port", result)

	result = config.LoadEnvBool("RUN_ON_START", cfg.RunOnStart)
	cfg.RunOnStart = result.Value.(bool)
	apply("run_on_start", result)

	if metrics != nil {
		metrics.RecordLoad(fallbacks)
	}
	return &cfg
}
