package slo

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	io_prometheus_client "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, vec *prometheus.GaugeVec, objective string) float64 {
	t.Helper()
	metric := &io_prometheus_client.Metric{}
	require.NoError(t, vec.WithLabelValues(objective).Write(metric))
	return metric.GetGauge().GetValue()
}

func TestWindow_Empty(t *testing.T) {
	w := NewWindow("test_empty", 0.9, 10)
	assert.Equal(t, 1.0, w.Ratio())
	assert.Equal(t, 1.0, w.BudgetRemaining())
	assert.Equal(t, 0.9, gaugeValue(t, SLOTarget, "test_empty"))
}

func TestWindow_RatioAndBudget(t *testing.T) {
	tests := []struct {
		name       string
		target     float64
		events     []bool
		wantRatio  float64
		wantBudget float64
	}{
		{"all good", 0.9, []bool{true, true, true, true}, 1, 1},
		{"half budget spent", 0.8, []bool{true, true, true, true, true, true, true, true, true, false}, 0.9, 0.5},
		{"budget exhausted", 0.9, []bool{true, true, true, true, true, true, true, true, true, false}, 0.9, 0},
		{"overspent", 0.9, []bool{false, false, true, true, true, true, true, true, true, true}, 0.8, -1},
		{"perfect target with a failure", 1.0, []bool{true, false}, 0.5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWindow("test_"+tt.name, tt.target, len(tt.events))
			for _, good := range tt.events {
				w.Observe(good)
			}
			assert.InDelta(t, tt.wantRatio, w.Ratio(), 1e-9)
			assert.InDelta(t, tt.wantBudget, w.BudgetRemaining(), 1e-9)
			assert.InDelta(t, tt.wantRatio, gaugeValue(t, SLORatio, "test_"+tt.name), 1e-9)
			assert.InDelta(t, tt.wantBudget, gaugeValue(t, SLOErrorBudgetRemaining, "test_"+tt.name), 1e-9)
		})
	}
}

func TestWindow_OldEventsRollOff(t *testing.T) {
	w := NewWindow("test_roll", 0.5, 3)
	w.Observe(false)
	w.Observe(false)
	assert.InDelta(t, 0.0, w.Ratio(), 1e-9)

	w.Observe(true)
	w.Observe(true)
	w.Observe(true)
	assert.InDelta(t, 1.0, w.Ratio(), 1e-9, "both failures fell out of the window")
}

func TestNewWindow_DefaultSize(t *testing.T) {
	w := NewWindow("test_default", QualityTarget, 0)
	assert.Len(t, w.events, DefaultWindow)
}

func TestWindow_ConcurrentObserve(t *testing.T) {
	w := NewWindow("test_concurrent", DeliveryTarget, 100)
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(good bool) {
			defer wg.Done()
			w.Observe(good)
		}(i%2 == 0)
	}
	wg.Wait()
	assert.InDelta(t, 0.5, w.Ratio(), 1e-9)
}
