package digest

import (
	"strings"

	"intel-digest/internal/domain/entity"
)

// Jaccard returns the token-set similarity of a and b. Tokens are the
// lowercased whitespace-separated words.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)

	inter := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	if union < 1 {
		union = 1
	}
	return float64(inter) / float64(union)
}

// Relink binds every selected title to the link of its most similar
// candidate. Ties go to the earlier candidate.
func Relink(selected []string, candidates []entity.Article) []entity.Pick {
	picks := make([]entity.Pick, 0, len(selected))
	for _, title := range selected {
		picks = append(picks, entity.Pick{Title: title, URL: bestMatch(title, candidates)})
	}
	return picks
}

func bestMatch(title string, candidates []entity.Article) string {
	if len(candidates) == 0 {
		return ""
	}
	best, bestScore := 0, -1.0
	for i, c := range candidates {
		if s := Jaccard(title, c.Title); s > bestScore {
			best, bestScore = i, s
		}
	}
	return candidates[best].Link
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
