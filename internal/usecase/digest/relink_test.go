package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intel-digest/internal/domain/entity"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"Taiwan Strait tensions rise", "taiwan strait  tensions RISE", 1.0},
		{"a b", "c d", 0.0},
		{"a b c d", "a b", 0.5},
		{"", "", 0.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestRelink_IdenticalTitleIsUniqueMaximum(t *testing.T) {
	candidates := []entity.Article{
		{Title: "NATO expands eastern exercises", Link: "https://a.example/1"},
		{Title: "NATO eastern exercises expand again", Link: "https://a.example/2"},
		{Title: "Chip export rules tightened", Link: "https://a.example/3"},
	}

	picks := Relink([]string{"NATO eastern exercises expand again"}, candidates)

	assert.Equal(t, []entity.Pick{{Title: "NATO eastern exercises expand again", URL: "https://a.example/2"}}, picks)
}

func TestRelink_ParaphrasedTitle(t *testing.T) {
	candidates := []entity.Article{
		{Title: "Chip export rules tightened by Commerce", Link: "https://a.example/chips"},
		{Title: "Election results in Portugal", Link: "https://a.example/pt"},
	}

	picks := Relink([]string{"Commerce tightens chip export rules"}, candidates)

	assert.Equal(t, "https://a.example/chips", picks[0].URL)
	assert.Equal(t, "Commerce tightens chip export rules", picks[0].Title)
}

func TestRelink_TiesGoToFirstSeen(t *testing.T) {
	candidates := []entity.Article{
		{Title: "alpha beta", Link: "https://a.example/first"},
		{Title: "alpha gamma", Link: "https://a.example/second"},
	}

	picks := Relink([]string{"alpha"}, candidates)
	assert.Equal(t, "https://a.example/first", picks[0].URL)

	picks = Relink([]string{"nothing in common"}, candidates)
	assert.Equal(t, "https://a.example/first", picks[0].URL)
}

func TestRelink_NoCandidates(t *testing.T) {
	picks := Relink([]string{"x"}, nil)
	assert.Equal(t, []entity.Pick{{Title: "x"}}, picks)
}
