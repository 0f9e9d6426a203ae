// Package entity defines the core domain records of the digest pipeline.
// It contains feed sources, normalized articles, candidate sets and relinked picks,
// along with their validation rules and domain-specific errors.
package entity

import "time"

// Article is one normalized feed item.
// Articles are created by the normalizer and never mutated afterwards.
type Article struct {
	Title       string
	Link        string
	PublishedAt *time.Time
	Category    Category
}

// HasDate reports whether the article carries a parseable publish date.
func (a Article) HasDate() bool {
	return a.PublishedAt != nil
}

// CandidateSet is the ordered output of the candidate filter.
// Members are unique by normalized title, dated inside the active recency
// window and sorted most-recent-first.
type CandidateSet struct {
	Articles []Article

	// Widened is true when the watchdog widen pass produced this set.
	Widened bool
}

// MinCandidates is the number of candidates required before selection runs.
const MinCandidates = 4

// Len returns the number of candidates.
func (c CandidateSet) Len() int {
	return len(c.Articles)
}

// Sufficient reports whether the set holds enough candidates for a selection.
func (c CandidateSet) Sufficient() bool {
	return len(c.Articles) >= MinCandidates
}

// Titles returns the candidate titles in order.
func (c CandidateSet) Titles() []string {
	titles := make([]string, 0, len(c.Articles))
	for _, a := range c.Articles {
		titles = append(titles, a.Title)
	}
	return titles
}

// Pick is a selected title bound to the source URL recovered for it.
type Pick struct {
	Title string
	URL   string
}
