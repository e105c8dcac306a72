package sentiment

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

func explain(label string, score float64, sentences int, cues []cue, slang []string, emoji int) string {
	noun := "sentences"
	if sentences == 1 {
		noun = "sentence"
	}
	parts := []string{fmt.Sprintf("%s overall (score %+.2f) across %d %s.", label, score, sentences, noun)}

	positive, negative := strongest(cues)
	if len(positive) > 0 {
		parts = append(parts, fmt.Sprintf("Strongest positive cues: %s.", quoteAll(positive)))
	}
	if len(negative) > 0 {
		parts = append(parts, fmt.Sprintf("Strongest negative cues: %s.", quoteAll(negative)))
	}
	if len(positive) == 0 && len(negative) == 0 {
		parts = append(parts, "No strongly charged words were found.")
	}
	if len(slang) > 0 {
		parts = append(parts, fmt.Sprintf("Slang detected: %s.", strings.Join(slang, ", ")))
	}
	if emoji > 0 {
		parts = append(parts, fmt.Sprintf("Emoji contributed to the tone (%d distinct).", emoji))
	}
	return strings.Join(parts, " ")
}

// strongest picks up to maxCues distinct cues per direction, largest
// magnitude first, ties by order of appearance.
func strongest(cues []cue) (positive, negative []string) {
	ordered := make([]cue, len(cues))
	copy(ordered, cues)
	sort.SliceStable(ordered, func(i, j int) bool {
		return math.Abs(ordered[i].valence) > math.Abs(ordered[j].valence)
	})

	seen := make(map[string]bool)
	for _, c := range ordered {
		key := strings.ToLower(c.text)
		if seen[key] {
			continue
		}
		seen[key] = true
		switch {
		case c.valence > 0 && len(positive) < maxCues:
			positive = append(positive, c.text)
		case c.valence < 0 && len(negative) < maxCues:
			negative = append(negative, c.text)
		}
	}
	return positive, negative
}

func quoteAll(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = `"` + w + `"`
	}
	return strings.Join(quoted, ", ")
}
