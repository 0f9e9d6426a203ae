// Package config assembles the runtime configuration of the digest pipeline
// from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	pkgconfig "intel-digest/internal/pkg/config"
)

// Backend identifiers accepted by AI_PREFERRED and AI_BACKENDS.
const (
	BackendGemini = "gemini"
	BackendOpenAI = "openai"
	BackendClaude = "claude"
)

// Cache backends accepted by CACHE_BACKEND.
const (
	CacheMemory   = "memory"
	CachePostgres = "postgres"
)

// DigestConfig holds the configuration shared by the api, worker and CLI entry points.
type DigestConfig struct {
	// FeedsFile is an optional YAML list of feed sources. Empty uses the built-in list.
	FeedsFile string
	// InterestsFile is an optional YAML interest profile.
	InterestsFile string
	// Interests is the static profile used when no file is configured.
	Interests []string
	// DefaultInterests is the profile string used when the source is empty or unavailable.
	DefaultInterests string

	// Preferred is the backend that performs reconciliation.
	Preferred string
	// Backends are the two backends queried concurrently (A, B).
	Backends []string
	// Models maps a backend identifier to its model name.
	Models map[string]string

	BackendTimeout      time.Duration
	FeedFetchTimeout    time.Duration
	SelectTimeout       time.Duration
	SelectRepairTimeout time.Duration
	FormatTimeout       time.Duration
	FormatRepairTimeout time.Duration

	MaxCandidates int
	Language      string
	Location      *time.Location

	DigestTTL    time.Duration
	SelectionTTL time.Duration
	InterestsTTL time.Duration

	// Sentiment prepends a one-line tone summary to the digest.
	Sentiment bool

	// FeedDenyPrivateIPs rejects feed URLs and redirects that resolve to
	// loopback, private or link-local addresses.
	FeedDenyPrivateIPs bool

	CacheBackend string
	DatabaseURL  string

	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
}

// DefaultDigestConfig returns the configuration used when no variables are set.
func DefaultDigestConfig() DigestConfig {
	return DigestConfig{
		DefaultInterests: "geopolitics, technology",
		Preferred:        BackendGemini,
		Backends:         []string{BackendGemini, BackendOpenAI},
		Models: map[string]string{
			BackendGemini: "gemini-2.0-flash",
			BackendOpenAI: "gpt-4o-mini",
			BackendClaude: "claude-3-5-haiku-latest",
		},
		BackendTimeout:      12 * time.Second,
		FeedFetchTimeout:    5 * time.Second,
		SelectTimeout:       8 * time.Second,
		SelectRepairTimeout: 4 * time.Second,
		FormatTimeout:       10 * time.Second,
		FormatRepairTimeout: 6 * time.Second,
		MaxCandidates:       60,
		Language:            "English",
		Location:            time.UTC,
		DigestTTL:           time.Hour,
		SelectionTTL:        12 * time.Hour,
		InterestsTTL:        10 * time.Minute,
		CacheBackend:        CacheMemory,
	}
}

// Validate checks the invariants the pipeline relies on.
func (c *DigestConfig) Validate() error {
	var errs []string

	if len(c.Backends) != 2 {
		errs = append(errs, fmt.Sprintf("exactly two backends required, got %d", len(c.Backends)))
	} else if c.Backends[0] == c.Backends[1] {
		errs = append(errs, "backends must be distinct")
	}
	if !slices.Contains(c.Backends, c.Preferred) {
		errs = append(errs, fmt.Sprintf("preferred backend %q is not one of %v", c.Preferred, c.Backends))
	}
	if c.MaxCandidates < 4 {
		errs = append(errs, "max candidates must be at least 4")
	}
	if c.Location == nil {
		errs = append(errs, "location is required")
	}
	if c.CacheBackend == CachePostgres && c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required when CACHE_BACKEND=postgres")
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid digest configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// LoadDigestConfig reads the digest configuration from the environment.
// Invalid values fall back to their defaults with a warning; only combinations
// that cannot run (e.g. postgres cache without DATABASE_URL) return an error.
func LoadDigestConfig(logger *slog.Logger, metrics *pkgconfig.ConfigMetrics) (*DigestConfig, error) {
	cfg := DefaultDigestConfig()
	l := &envLoader{logger: logger}

	cfg.FeedsFile = pkgconfig.LoadEnvString("FEEDS_FILE", "")
	cfg.InterestsFile = pkgconfig.LoadEnvString("INTERESTS_FILE", "")
	cfg.Interests = pkgconfig.SplitList(pkgconfig.LoadEnvString("INTERESTS", ""))
	cfg.DefaultInterests = pkgconfig.LoadEnvString("DEFAULT_INTERESTS", cfg.DefaultInterests)

	backendValidator := pkgconfig.OneOf(BackendGemini, BackendOpenAI, BackendClaude)
	cfg.Backends = l.list("AI_BACKENDS", "ai_backends", cfg.Backends, func(v []string) error {
		if len(v) != 2 {
			return fmt.Errorf("exactly two backends required")
		}
		if strings.EqualFold(v[0], v[1]) {
			return fmt.Errorf("backends must be distinct")
		}
		for _, b := range v {
			if err := backendValidator(b); err != nil {
				return err
			}
		}
		return nil
	})
	for i := range cfg.Backends {
		cfg.Backends[i] = strings.ToLower(cfg.Backends[i])
	}

	cfg.Preferred = strings.ToLower(l.str("AI_PREFERRED", "ai_preferred", cfg.Preferred, backendValidator))
	if !slices.Contains(cfg.Backends, cfg.Preferred) {
		l.warn("ai_preferred", fmt.Sprintf("preferred backend %q is not configured, using %q", cfg.Preferred, cfg.Backends[0]))
		cfg.Preferred = cfg.Backends[0]
	}

	cfg.Models[BackendGemini] = pkgconfig.LoadEnvString("GEMINI_MODEL", cfg.Models[BackendGemini])
	cfg.Models[BackendOpenAI] = pkgconfig.LoadEnvString("OPENAI_MODEL", cfg.Models[BackendOpenAI])
	cfg.Models[BackendClaude] = pkgconfig.LoadEnvString("CLAUDE_MODEL", cfg.Models[BackendClaude])

	stageTimeout := func(d time.Duration) error { return pkgconfig.ValidateDuration(d, 100*time.Millisecond, 2*time.Minute) }
	cfg.BackendTimeout = l.duration("AI_BACKEND_TIMEOUT", "ai_backend_timeout", cfg.BackendTimeout, stageTimeout)
	cfg.FeedFetchTimeout = l.duration("FEED_FETCH_TIMEOUT", "feed_fetch_timeout", cfg.FeedFetchTimeout, stageTimeout)
	cfg.SelectTimeout = l.duration("SELECT_TIMEOUT", "select_timeout", cfg.SelectTimeout, stageTimeout)
	cfg.SelectRepairTimeout = l.duration("SELECT_REPAIR_TIMEOUT", "select_repair_timeout", cfg.SelectRepairTimeout, stageTimeout)
	cfg.FormatTimeout = l.duration("FORMAT_TIMEOUT", "format_timeout", cfg.FormatTimeout, stageTimeout)
	cfg.FormatRepairTimeout = l.duration("FORMAT_REPAIR_TIMEOUT", "format_repair_timeout", cfg.FormatRepairTimeout, stageTimeout)

	cfg.MaxCandidates = l.integer("MAX_CANDIDATES", "max_candidates", cfg.MaxCandidates, func(v int) error {
		return pkgconfig.ValidateIntRange(v, 4, 200)
	})
	cfg.Language = pkgconfig.LoadEnvString("DIGEST_LANGUAGE", cfg.Language)

	tz := l.str("DIGEST_TIMEZONE", "digest_timezone", "UTC", pkgconfig.ValidateTimezone)
	if loc, err := time.LoadLocation(tz); err == nil {
		cfg.Location = loc
	}

	cfg.DigestTTL = l.duration("DIGEST_TTL", "digest_ttl", cfg.DigestTTL, pkgconfig.ValidatePositiveDuration)
	cfg.SelectionTTL = l.duration("SELECTION_TTL", "selection_ttl", cfg.SelectionTTL, pkgconfig.ValidatePositiveDuration)
	cfg.InterestsTTL = l.duration("INTERESTS_TTL", "interests_ttl", cfg.InterestsTTL, pkgconfig.ValidatePositiveDuration)

	cfg.Sentiment = l.boolean("DIGEST_SENTIMENT", "digest_sentiment", cfg.Sentiment)
	cfg.FeedDenyPrivateIPs = l.boolean("FEED_DENY_PRIVATE_IPS", "feed_deny_private_ips", cfg.FeedDenyPrivateIPs)

	cfg.CacheBackend = strings.ToLower(l.str("CACHE_BACKEND", "cache_backend", cfg.CacheBackend, pkgconfig.OneOf(CacheMemory, CachePostgres)))
	cfg.DatabaseURL = pkgconfig.LoadEnvString("DATABASE_URL", "")

	cfg.OpenAIKey = pkgconfig.LoadEnvString("OPENAI_API_KEY", "")
	cfg.AnthropicKey = pkgconfig.LoadEnvString("ANTHROPIC_API_KEY", "")
	cfg.GeminiKey = pkgconfig.LoadEnvString("GEMINI_API_KEY", "")

	if metrics != nil {
		metrics.RecordLoad(l.fallbacks)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// APIKey returns the credential configured for backend.
func (c *DigestConfig) APIKey(backend string) string {
	switch backend {
	case BackendOpenAI:
		return c.OpenAIKey
	case BackendClaude:
		return c.AnthropicKey
	case BackendGemini:
		return c.GeminiKey
	default:
		return ""
	}
}

// envLoader applies pkgconfig loaders and remembers which fields fell back.
type envLoader struct {
	logger    *slog.Logger
	fallbacks []string
}

func (l *envLoader) record(field string, result pkgconfig.ConfigLoadResult) {
	if !result.FallbackApplied {
		return
	}
	for _, warning := range result.Warnings {
		l.warn(field, warning)
	}
}

func (l *envLoader) warn(field, warning string) {
	l.fallbacks = append(l.fallbacks, field)
	if l.logger != nil {
		l.logger.Warn("Configuration fallback applied",
			slog.String("field", field),
			slog.String("warning", warning))
	}
}

func (l *envLoader) str(key, field, def string, validator func(string) error) string {
	result := pkgconfig.LoadEnvWithFallback(key, def, validator)
	l.record(field, result)
	return result.Value.(string)
}

func (l *envLoader) duration(key, field string, def time.Duration, validator func(time.Duration) error) time.Duration {
	result := pkgconfig.LoadEnvDuration(key, def, validator)
	l.record(field, result)
	return result.Value.(time.Duration)
}

func (l *envLoader) integer(key, field string, def int, validator func(int) error) int {
	result := pkgconfig.LoadEnvInt(key, def, validator)
	l.record(field, result)
	return result.Value.(int)
}

func (l *envLoader) boolean(key, field string, def bool) bool {
	result := pkgconfig.LoadEnvBool(key, def)
	l.record(field, result)
	return result.Value.(bool)
}

func (l *envLoader) list(key, field string, def []string, validator func([]string) error) []string {
	result := pkgconfig.LoadEnvList(key, def, validator)
	l.record(field, result)
	return slices.Clone(result.Value.([]string))
}
