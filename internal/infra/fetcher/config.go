package fetcher

import (
	"fmt"
	"time"
)

// GateConfig holds transport settings for the Fetch Gate.
type GateConfig struct {
	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize limits how many bytes are read from a response.
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs and redirect targets that resolve to private addresses.
	DenyPrivateIPs bool

	// DefaultTimeout applies when Fetch is called with a non-positive timeout.
	DefaultTimeout time.Duration
}

// DefaultConfig returns the Fetch Gate defaults.
func DefaultConfig() GateConfig {
	return GateConfig{
		UserAgent:      "Mozilla/5.0 (compatible; IntelDigestBot/1.0)",
		MaxBodySize:    5 * 1024 * 1024, // 5MB
		MaxRedirects:   5,
		DenyPrivateIPs: false,
		DefaultTimeout: 5 * time.Second,
	}
}

// Validate checks if the configuration values are within acceptable ranges.
func (c *GateConfig) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user agent must not be empty")
	}

	minBodySize := int64(1024)
	maxBodySize := int64(50 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	if c.DefaultTimeout <= 0 {
		return fmt.Errorf("default timeout must be positive, got %v", c.DefaultTimeout)
	}

	return nil
}
