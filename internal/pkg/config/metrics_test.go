package config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestConfigMetrics_RecordLoad(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewConfigMetrics("digest", reg)

	metrics.RecordLoad([]string{"ai_backend_timeout", "max_candidates"})

	assert.Greater(t, testutil.ToFloat64(metrics.LoadTimestamp), 0.0)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("max_candidates")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))

	metrics.RecordLoad(nil)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.FallbackActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("max_candidates")))
}
