package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	t.Setenv("DIGEST_LANGUAGE", "")
	assert.Equal(t, "English", LoadEnvString("DIGEST_LANGUAGE", "English"))

	t.Setenv("DIGEST_LANGUAGE", "Spanish")
	assert.Equal(t, "Spanish", LoadEnvString("DIGEST_LANGUAGE", "English"))
}

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name         string
		env          string
		wantValue    string
		wantFallback bool
	}{
		{"unset uses default silently", "", "0 7 * * *", false},
		{"valid value", "30 6 * * 1-5", "30 6 * * 1-5", false},
		{"invalid value falls back", "every morning", "0 7 * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CRON_SCHEDULE", tt.env)

			result := LoadEnvWithFallback("CRON_SCHEDULE", "0 7 * * *", ValidateCronSchedule)

			assert.Equal(t, tt.wantValue, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				require.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], "CRON_SCHEDULE")
				assert.Contains(t, result.Warnings[0], "falling back to default")
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestLoadEnvDuration(t *testing.T) {
	t.Setenv("AI_BACKEND_TIMEOUT", "3s")
	result := LoadEnvDuration("AI_BACKEND_TIMEOUT", 12*time.Second, ValidatePositiveDuration)
	assert.Equal(t, 3*time.Second, result.Value)
	assert.False(t, result.FallbackApplied)

	t.Setenv("AI_BACKEND_TIMEOUT", "soon")
	result = LoadEnvDuration("AI_BACKEND_TIMEOUT", 12*time.Second, ValidatePositiveDuration)
	assert.Equal(t, 12*time.Second, result.Value)
	assert.True(t, result.FallbackApplied)

	t.Setenv("AI_BACKEND_TIMEOUT", "-1s")
	result = LoadEnvDuration("AI_BACKEND_TIMEOUT", 12*time.Second, ValidatePositiveDuration)
	assert.Equal(t, 12*time.Second, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvInt(t *testing.T) {
	validator := func(v int) error { return ValidateIntRange(v, 4, 200) }

	t.Setenv("MAX_CANDIDATES", "40")
	assert.Equal(t, 40, LoadEnvInt("MAX_CANDIDATES", 60, validator).Value)

	t.Setenv("MAX_CANDIDATES", "forty")
	result := LoadEnvInt("MAX_CANDIDATES", 60, validator)
	assert.Equal(t, 60, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "invalid integer format")

	t.Setenv("MAX_CANDIDATES", "2")
	assert.Equal(t, 60, LoadEnvInt("MAX_CANDIDATES", 60, validator).Value)
}

func TestLoadEnvBool(t *testing.T) {
	t.Setenv("DIGEST_SENTIMENT", "true")
	assert.Equal(t, true, LoadEnvBool("DIGEST_SENTIMENT", false).Value)

	t.Setenv("DIGEST_SENTIMENT", "yes please")
	result := LoadEnvBool("DIGEST_SENTIMENT", false)
	assert.Equal(t, false, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvList(t *testing.T) {
	t.Setenv("AI_BACKENDS", " claude , ,gemini ")
	result := LoadEnvList("AI_BACKENDS", []string{"gemini", "openai"}, nil)
	assert.Equal(t, []string{"claude", "gemini"}, result.Value)

	t.Setenv("AI_BACKENDS", "")
	result = LoadEnvList("AI_BACKENDS", []string{"gemini", "openai"}, nil)
	assert.Equal(t, []string{"gemini", "openai"}, result.Value)
}
