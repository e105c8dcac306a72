package morphology

import (
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/lexicon"
)

const (
	aggressiveMinLen   = 3
	conservativeMinLen = 4
	conservativePasses = 2
	maxPasses          = 6
)

type stemmer struct {
	rules []lexicon.StemRule
}

// trajectory applies the first usable rule per pass until nothing applies.
// Element 0 is the word itself; every later element is no longer than the
// one before it.
func (s stemmer) trajectory(word string) []string {
	steps := []string{word}
	cur := word
	for pass := 0; pass < maxPasses; pass++ {
		next, ok := s.step(cur)
		if !ok || next == cur {
			break
		}
		steps = append(steps, next)
		cur = next
	}
	return steps
}

func (s stemmer) step(word string) (string, bool) {
	skipGroup := ""
	for _, rule := range s.rules {
		if skipGroup != "" && rule.Group == skipGroup {
			continue
		}
		skipGroup = ""
		if !strings.HasSuffix(word, rule.Suffix) {
			continue
		}
		if rule.Stop {
			// the ending is protected from the rest of its group
			skipGroup = rule.Group
			if skipGroup == "" {
				return word, false
			}
			continue
		}
		stem := strings.TrimSuffix(word, rule.Suffix) + rule.Replace
		if utf8.RuneCountInString(stem) < aggressiveMinLen || !hasVowel(stem) || strings.HasSuffix(stem, "'") {
			continue
		}
		return stem, true
	}
	return word, false
}

// stems returns the aggressive stem and the conservative one, which is the
// last step within the first two passes that keeps at least four runes.
func (s stemmer) stems(word string) (aggressive, conservative string) {
	steps := s.trajectory(word)
	conservative = steps[0]
	for i := 1; i < len(steps) && i <= conservativePasses; i++ {
		if utf8.RuneCountInString(steps[i]) < conservativeMinLen {
			break
		}
		conservative = steps[i]
	}
	return steps[len(steps)-1], conservative
}

func hasVowel(s string) bool {
	return strings.ContainsAny(s, "aeiouyàáâäèéêëìíîïòóôöùúûü")
}
