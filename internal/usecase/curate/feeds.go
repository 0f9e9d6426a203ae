package curate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"intel-digest/internal/domain/entity"
)

// DefaultFeeds is the built-in feed list used when no feeds file is configured.
func DefaultFeeds() []entity.FeedSource {
	policy := func(url string) entity.FeedSource {
		return entity.FeedSource{URL: url, Category: entity.CategoryPolicy}
	}
	tech := func(url string) entity.FeedSource {
		return entity.FeedSource{URL: url, Category: entity.CategoryTech}
	}
	return []entity.FeedSource{
		policy("https://warontherocks.com/feed/"),
		policy("https://www.foreignaffairs.com/rss.xml"),
		policy("https://www.cfr.org/rss.xml"),
		policy("https://carnegieendowment.org/rss/all-publications"),
		policy("https://www.csis.org/rss/analysis"),
		policy("https://www.rand.org/pubs.rss"),
		policy("https://www.foreignpolicy.com/feed"),
		tech("https://www.wired.com/feed/rss"),
		tech("https://feeds.arstechnica.com/arstechnica/index"),
		tech("https://www.theverge.com/rss/index.xml"),
		tech("http://feeds.feedburner.com/TechCrunch/"),
		tech("https://www.technologyreview.com/feed/"),
		tech("https://restofworld.org/feed/latest/"),
		policy("https://hbr.org/rss"),
		policy("https://www.economist.com/rss"),
	}
}

type feedsFile struct {
	Feeds []entity.FeedSource `yaml:"feeds"`
}

// LoadFeeds reads a YAML feed list:
//
//	feeds:
//	  - url: https://warontherocks.com/feed/
//	    category: policy
//
// An empty path returns DefaultFeeds. Every entry is validated.
func LoadFeeds(path string) ([]entity.FeedSource, error) {
	if path == "" {
		return DefaultFeeds(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feeds file: %w", err)
	}
	return ParseFeeds(data)
}

// ParseFeeds decodes and validates a YAML feed list.
func ParseFeeds(data []byte) ([]entity.FeedSource, error) {
	var file feedsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode feeds file: %w", err)
	}
	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("%w: feeds file lists no feeds", entity.ErrInvalidFeedSource)
	}

	feeds := make([]entity.FeedSource, 0, len(file.Feeds))
	for i, f := range file.Feeds {
		category, err := entity.ParseCategory(string(f.Category))
		if err != nil {
			return nil, fmt.Errorf("feed %d: %w: %v", i, entity.ErrInvalidFeedSource, err)
		}
		f.Category = category
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("feed %d: %w", i, err)
		}
		feeds = append(feeds, f)
	}
	return feeds, nil
}
