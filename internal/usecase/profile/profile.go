// Package profile supplies the reader's interest profile used to rank candidates.
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"intel-digest/internal/pkg/sanitize"
)

// ErrProfileUnavailable is returned when the profile source cannot be read.
var ErrProfileUnavailable = errors.New("interest profile unavailable")

// DefaultProfile is used when the source is empty or unavailable.
const DefaultProfile = "geopolitics, technology"

// DefaultTTL bounds how long a loaded profile is reused.
const DefaultTTL = 10 * time.Minute

// Source lists free-text interests.
type Source interface {
	Interests(ctx context.Context) ([]string, error)
}

// StaticSource returns a fixed list.
type StaticSource []string

// Interests implements Source.
func (s StaticSource) Interests(context.Context) ([]string, error) {
	return clean(s), nil
}

// FileSource reads interests from a YAML file of the form:
//
//	interests:
//	  - geopolitics
//	  - semiconductors
type FileSource struct {
	Path string
}

type interestsFile struct {
	Interests []string `yaml:"interests"`
}

// Interests implements Source.
func (f FileSource) Interests(context.Context) ([]string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileUnavailable, err)
	}
	var doc interestsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrProfileUnavailable, f.Path, err)
	}
	return clean(doc.Interests), nil
}

// Cached wraps a Source and renders it as a single profile string.
// A loaded profile is kept for TTL; failures and empty lists yield Default.
type Cached struct {
	source  Source
	ttl     time.Duration
	def     string
	now     func() time.Time
	logger  *slog.Logger
	mu      sync.Mutex
	value   string
	expires time.Time
}

// NewCached creates a cached profile reader. def replaces DefaultProfile when non-empty.
func NewCached(source Source, ttl time.Duration, def string, logger *slog.Logger) *Cached {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if strings.TrimSpace(def) == "" {
		def = DefaultProfile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cached{source: source, ttl: ttl, def: def, now: time.Now, logger: logger}
}

// Profile returns the comma-joined interests.
func (c *Cached) Profile(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.value != "" && now.Before(c.expires) {
		return c.value
	}

	interests, err := c.source.Interests(ctx)
	switch {
	case err != nil:
		c.logger.WarnContext(ctx, "interest profile unavailable, using default",
			slog.String("error", sanitize.Error(err)))
		// Retry the source on the next call instead of pinning the default.
		return c.def
	case len(interests) == 0:
		c.value = c.def
	default:
		c.value = strings.Join(interests, ", ")
	}
	c.expires = now.Add(c.ttl)
	return c.value
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.Join(strings.Fields(s), " ")
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
