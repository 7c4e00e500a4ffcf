package clip

import (
	"strings"

	"github.com/team-mirai-volunteer/video-processor-sub003/internal/model"
)

const titleMaxRunes = 40

// overlappingSentences returns the refined sentences that intersect the
// half-open range [start, end).
func overlappingSentences(sentences []model.RefinedSentence, start, end float64) []model.RefinedSentence {
	var overlapping []model.RefinedSentence
	for _, s := range sentences {
		if s.EndSeconds > start && s.StartSeconds < end {
			overlapping = append(overlapping, s)
		}
	}
	return overlapping
}

// deriveTitle uses the first sentence spoken inside the range as the clip
// title. Returns "" when nothing overlaps.
func deriveTitle(sentences []model.RefinedSentence, start, end float64) string {
	overlapping := overlappingSentences(sentences, start, end)
	if len(overlapping) == 0 {
		return ""
	}
	return truncateRunes(strings.TrimSpace(overlapping[0].Text), titleMaxRunes)
}

// deriveExcerpt joins everything spoken inside the range into a short
// transcript excerpt.
func deriveExcerpt(sentences []model.RefinedSentence, start, end float64, maxRunes int) string {
	overlapping := overlappingSentences(sentences, start, end)
	if len(overlapping) == 0 {
		return ""
	}
	parts := make([]string, 0, len(overlapping))
	for _, s := range overlapping {
		parts = append(parts, strings.TrimSpace(s.Text))
	}
	return truncateRunes(strings.Join(parts, ""), maxRunes)
}

// truncateRunes shortens s to max runes, marking the cut with an ellipsis.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
