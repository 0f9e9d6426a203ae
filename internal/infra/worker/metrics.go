package worker

import (
	"intel-digest/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the worker component.
// It embeds ConfigMetrics (worker_config_*) and adds digest job metrics:
//   - worker_cron_job_runs_total{status}
//   - worker_cron_job_duration_seconds
//   - worker_cron_job_deliveries_total{result}
//   - worker_cron_job_last_success_timestamp
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	CronJobDeliveriesTotal      *prometheus.CounterVec
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates and registers the worker metrics on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	factory := promauto.With(reg)
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker", reg),

		CronJobRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of digest job runs by status",
		}, []string{"status"}),

		CronJobDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of digest job execution in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		}),

		CronJobDeliveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_deliveries_total",
			Help: "Total number of digest deliveries by result",
		}, []string{"result"}),

		CronJobLastSuccessTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful digest job run",
		}),
	}
}

// RecordJobRun increments the job run counter for the given status.
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a job execution in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordDelivery counts one channel delivery.
func (m *WorkerMetrics) RecordDelivery(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.CronJobDeliveriesTotal.WithLabelValues(result).Inc()
}

// RecordLastSuccess records the current time as the last successful job completion.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
