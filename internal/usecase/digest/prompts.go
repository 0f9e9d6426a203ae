package digest

import (
	"fmt"
	"strings"

	"intel-digest/internal/domain/entity"
)

// Token budgets and temperatures per prompt.
const (
	selectMaxTokens       = 380
	selectTemperature     = 0.2
	selectRepairMaxTokens = 200
	selectRepairTemp      = 0.1

	formatMaxTokens       = 780
	formatTemperature     = 0.5
	formatRepairMaxTokens = 400
	formatRepairTemp      = 0.2

	sentimentMaxTokens   = 120
	sentimentTemperature = 0.2
)

// SelectionPrompt asks for exactly PickCount titles copied from candidates.
func SelectionPrompt(titles []string, profile string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `Your task is data extraction. From the list of headlines below, select the %d headlines most strategically relevant for a reader interested in: %s.

STRICT RULES:
- Answer ONLY with the %d headlines.
- Each headline MUST be on its own line.
- Do NOT add numbers, bullets, summaries or explanations.
- Copy every headline exactly as it appears in the list.

HEADLINES TO ANALYZE:
`, PickCount, profile, PickCount)
	for _, t := range titles {
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func selectionRepairPrompt(draft string) string {
	return fmt.Sprintf(`Fix this list so it has EXACTLY %d lines with the original headlines, one per line, without numbering, bullets or any extra explanation:
%s`, PickCount, draft)
}

// FormatPrompt binds every pick to its URL and asks for one bold block per pick.
func FormatPrompt(picks []entity.Pick, language string) string {
	return fmt.Sprintf(`You are an analyst writing an intelligence briefing. For EACH item:
1) Translate the title into %[1]s.
2) Summarize in %[1]s, in 140-200 characters, why it matters (one strong, clear sentence).
3) Use EXACTLY the provided URL at the end as ([Read more](URL)).

Items (use these titles and URLs EXACTLY):
%[2]s

EXACT output format (repeat for each item, no extra numbering):
*<Title in %[1]s>*
<Summary of 140-200 characters.> ([Read more](URL))`, language, pickItems(picks))
}

// pickItems lists every pick with its exact URL. Generation calls are
// stateless, so any prompt that writes links carries this block.
func pickItems(picks []entity.Pick) string {
	items := make([]string, 0, len(picks))
	for i, p := range picks {
		items = append(items, fmt.Sprintf("#%d\nTitle: %s\nURL: %s", i+1, p.Title, p.URL))
	}
	return strings.Join(items, "\n\n")
}

func formatRepairPrompt(picks []entity.Pick, draft, language string) string {
	return fmt.Sprintf(`Format EXACTLY %[1]d items as follows and add nothing else:
*<Title in %[2]s>*
<Summary of 140-200 characters.> ([Read more](URL))

Items (use these titles and URLs EXACTLY):
%[3]s

Previous draft to fix:
%[4]s`, len(picks), language, pickItems(picks), draft)
}

func sentimentPrompt(titles []string) string {
	lines := make([]string, 0, len(titles))
	for _, t := range titles {
		lines = append(lines, "- "+t)
	}
	return fmt.Sprintf(`Classify the overall tone of these %d headlines in one short phrase (max %d characters). Use terms such as: geopolitical alert / tech optimism / macro uncertainty / regulatory progress. Return ONLY the phrase.
Headlines:
%s`, len(titles), maxSentimentRunes, strings.Join(lines, "\n"))
}
