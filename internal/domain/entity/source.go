package entity

import (
	"fmt"
	"strings"
)

// Category classifies a feed source. It is only consulted by the watchdog widen rule.
type Category string

const (
	CategoryPolicy Category = "policy"
	CategoryTech   Category = "tech"
	CategoryOther  Category = "other"
)

// ParseCategory maps a configuration value to a Category.
// Empty values default to CategoryOther.
func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPolicy:
		return CategoryPolicy, nil
	case CategoryTech:
		return CategoryTech, nil
	case CategoryOther, "":
		return CategoryOther, nil
	default:
		return "", &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("invalid category %q (must be policy, tech, or other)", s),
		}
	}
}

// FeedSource is a configured feed. It is static configuration and immutable.
type FeedSource struct {
	URL      string   `yaml:"url"`
	Category Category `yaml:"category"`
}

// Validate checks that the source has a well-formed http(s) URL and a known category.
func (s FeedSource) Validate() error {
	if err := ValidateURL(s.URL); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedSource, err)
	}
	if _, err := ParseCategory(string(s.Category)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidFeedSource, err)
	}
	return nil
}
