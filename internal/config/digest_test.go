package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgconfig "intel-digest/internal/pkg/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadDigestConfig_Defaults(t *testing.T) {
	cfg, err := LoadDigestConfig(discardLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, BackendGemini, cfg.Preferred)
	assert.Equal(t, []string{BackendGemini, BackendOpenAI}, cfg.Backends)
	assert.Equal(t, 12*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 5*time.Second, cfg.FeedFetchTimeout)
	assert.Equal(t, 60, cfg.MaxCandidates)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, 12*time.Hour, cfg.SelectionTTL)
	assert.Equal(t, time.Hour, cfg.DigestTTL)
	assert.Equal(t, 10*time.Minute, cfg.InterestsTTL)
	assert.Equal(t, CacheMemory, cfg.CacheBackend)
	assert.Equal(t, "geopolitics, technology", cfg.DefaultInterests)
	assert.False(t, cfg.FeedDenyPrivateIPs)
}

func TestLoadDigestConfig_FromEnv(t *testing.T) {
	t.Setenv("AI_BACKENDS", "Claude,openai")
	t.Setenv("AI_PREFERRED", "openai")
	t.Setenv("INTERESTS", "semiconductors, arctic security")
	t.Setenv("DIGEST_TIMEZONE", "America/Mexico_City")
	t.Setenv("SELECT_TIMEOUT", "3s")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FEED_DENY_PRIVATE_IPS", "true")

	cfg, err := LoadDigestConfig(discardLogger(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{BackendClaude, BackendOpenAI}, cfg.Backends)
	assert.Equal(t, BackendOpenAI, cfg.Preferred)
	assert.Equal(t, []string{"semiconductors", "arctic security"}, cfg.Interests)
	assert.Equal(t, "America/Mexico_City", cfg.Location.String())
	assert.Equal(t, 3*time.Second, cfg.SelectTimeout)
	assert.Equal(t, "sk-test", cfg.APIKey(BackendOpenAI))
	assert.Empty(t, cfg.APIKey(BackendClaude))
	assert.True(t, cfg.FeedDenyPrivateIPs)
}

func TestLoadDigestConfig_FallbacksAreRecorded(t *testing.T) {
	t.Setenv("AI_BACKENDS", "gemini")
	t.Setenv("MAX_CANDIDATES", "1000")
	t.Setenv("AI_PREFERRED", "claude")

	reg := prometheus.NewRegistry()
	metrics := pkgconfig.NewConfigMetrics("digest", reg)

	cfg, err := LoadDigestConfig(discardLogger(), metrics)
	require.NoError(t, err)

	assert.Equal(t, []string{BackendGemini, BackendOpenAI}, cfg.Backends)
	assert.Equal(t, 60, cfg.MaxCandidates)
	// claude is valid but not configured, so the first backend reconciles.
	assert.Equal(t, BackendGemini, cfg.Preferred)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("ai_backends")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("max_candidates")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbacksTotal.WithLabelValues("ai_preferred")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FallbackActive))
}

func TestLoadDigestConfig_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := LoadDigestConfig(discardLogger(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestDigestConfig_Validate(t *testing.T) {
	cfg := DefaultDigestConfig()
	require.NoError(t, cfg.Validate())

	cfg.Backends = []string{BackendGemini, BackendGemini}
	assert.Error(t, cfg.Validate())

	cfg = DefaultDigestConfig()
	cfg.Preferred = BackendClaude
	assert.Error(t, cfg.Validate())
}
