// Package scraper turns raw RSS/Atom payloads into normalized articles.
// It uses gofeed for schema detection and parsing and goquery to clean titles.
package scraper

import (
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"intel-digest/internal/domain/entity"
)

// MaxTitleRunes caps article titles to keep prompts bounded.
const MaxTitleRunes = 200

// Normalizer parses one feed payload. It is stateless and safe for concurrent use.
type Normalizer struct {
	logger *slog.Logger
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Normalize parses payload as an RSS channel or an Atom feed, chosen by its root
// element. Unrecognized or unparseable payloads yield no articles. Items without
// a title are skipped; items whose date cannot be parsed keep a nil PublishedAt
// and are dropped later by the candidate filter.
func (n *Normalizer) Normalize(payload string, src entity.FeedSource) []entity.Article {
	if strings.TrimSpace(payload) == "" {
		return nil
	}

	switch gofeed.DetectFeedType(strings.NewReader(payload)) {
	case gofeed.FeedTypeRSS, gofeed.FeedTypeAtom:
	default:
		n.logger.Debug("payload is neither RSS nor Atom, skipping", slog.String("feed", src.URL))
		return nil
	}

	feed, err := gofeed.NewParser().ParseString(payload)
	if err != nil {
		n.logger.Debug("feed parse failed, skipping",
			slog.String("feed", src.URL),
			slog.Any("error", err))
		return nil
	}

	category := src.Category
	if category == "" {
		category = entity.CategoryOther
	}

	articles := make([]entity.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		title := CleanTitle(item.Title)
		if title == "" {
			continue
		}
		articles = append(articles, entity.Article{
			Title:       title,
			Link:        strings.TrimSpace(itemLink(item)),
			PublishedAt: itemDate(item),
			Category:    category,
		})
	}

	return articles
}

// CleanTitle strips markup and entities, collapses whitespace and truncates
// to MaxTitleRunes.
func CleanTitle(raw string) string {
	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")

	if utf8.RuneCountInString(text) > MaxTitleRunes {
		runes := []rune(text)
		text = strings.TrimSpace(string(runes[:MaxTitleRunes]))
	}
	return text
}

func itemLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.Links) > 0 {
		return item.Links[0]
	}
	return ""
}

// itemDate prefers the raw published string, then the raw updated string.
// gofeed's lenient PublishedParsed is ignored, so a date outside the
// RFC-2822 and ISO-8601 families leaves the item undated.
func itemDate(item *gofeed.Item) *time.Time {
	for _, raw := range []string{item.Published, item.Updated} {
		if t, ok := ParseDate(raw); ok {
			return &t
		}
	}
	return nil
}
