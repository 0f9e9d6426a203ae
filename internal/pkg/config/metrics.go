package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics records configuration load health for one component (api, worker, digest).
type ConfigMetrics struct {
	// LoadTimestamp is the Unix timestamp of the last configuration load.
	LoadTimestamp prometheus.Gauge

	// FallbacksTotal counts fallbacks per configuration field.
	FallbacksTotal *prometheus.CounterVec

	// FallbackActive is 1 while any field is running on its default due to invalid input.
	FallbackActive prometheus.Gauge
}

// NewConfigMetrics registers the configuration metrics for componentName on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewConfigMetrics(componentName string, reg prometheus.Registerer) *ConfigMetrics {
	factory := promauto.With(reg)
	return &ConfigMetrics{
		LoadTimestamp: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_load_timestamp", componentName),
			Help: fmt.Sprintf("Unix timestamp of last %s configuration load", componentName),
		}),
		FallbacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_fallbacks_total", componentName),
			Help: fmt.Sprintf("Total number of %s configuration fallback operations", componentName),
		}, []string{"field"}),
		FallbackActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_fallback_active", componentName),
			Help: fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", componentName),
		}),
	}
}

// RecordLoad marks a completed load and records every field that fell back.
func (m *ConfigMetrics) RecordLoad(fallbackFields []string) {
	m.LoadTimestamp.SetToCurrentTime()
	for _, field := range fallbackFields {
		m.FallbacksTotal.WithLabelValues(field).Inc()
	}
	if len(fallbackFields) > 0 {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}
