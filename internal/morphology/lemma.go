package morphology

import (
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/models"
)

type lemmaKey struct {
	word string
	pos  string
}

// dictionaryLemma looks up (word, coarse POS) in the lemma table, then the
// dictionary for open-class words, then falls back to the word.
func (r *Reducer) dictionaryLemma(word, coarse string) string {
	if lemma, ok := r.lemmas[lemmaKey{word, coarse}]; ok {
		return lemma
	}
	if coarse == models.PosOther || r.dict == nil {
		return word
	}
	if r.dict.InDict(word) {
		if lemma := strings.ToLower(r.dict.Lemma(word)); lemma != "" {
			return lemma
		}
	}
	return word
}

// heuristicLemma applies POS-aware suffix rules without consulting the
// dictionary.
func (r *Reducer) heuristicLemma(word, coarse string) string {
	switch coarse {
	case models.PosVerb:
		return r.verbLemma(word)
	case models.PosNoun:
		return r.nounLemma(word)
	case models.PosAdjective:
		return r.adjectiveLemma(word)
	default:
		return word
	}
}

func (r *Reducer) verbLemma(word string) string {
	if lemma, ok := r.irregularVerbs[word]; ok {
		return lemma
	}
	if strings.HasSuffix(word, "n't") && len(word) > 3 {
		return r.verbLemma(strings.TrimSuffix(word, "n't"))
	}

	switch {
	case hasStem(word, "ies", 2):
		return strings.TrimSuffix(word, "ies") + "y"
	case hasStem(word, "ied", 2):
		return strings.TrimSuffix(word, "ied") + "y"
	case strings.HasSuffix(word, "eed"):
		return word
	case hasStem(word, "ing", 3) && hasVowel(strings.TrimSuffix(word, "ing")):
		return restoreStem(strings.TrimSuffix(word, "ing"))
	case hasStem(word, "ed", 3) && hasVowel(strings.TrimSuffix(word, "ed")):
		return restoreStem(strings.TrimSuffix(word, "ed"))
	case hasStem(word, "es", 2):
		stem := strings.TrimSuffix(word, "es")
		if sibilant(stem) || strings.HasSuffix(stem, "o") {
			return stem
		}
		return stem + "e"
	case hasStem(word, "s", 2) && !strings.HasSuffix(word, "ss"):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

func (r *Reducer) nounLemma(word string) string {
	word = stripPossessive(word)
	if lemma, ok := r.irregularPlurals[word]; ok {
		return lemma
	}

	switch {
	case strings.HasSuffix(word, "ss"), strings.HasSuffix(word, "us"), strings.HasSuffix(word, "is"):
		return word
	case hasStem(word, "ies", 2):
		stem := strings.TrimSuffix(word, "ies")
		if r.known != nil && r.known(stem+"ie") {
			return stem + "ie"
		}
		return stem + "y"
	case hasStem(word, "es", 2) && sibilant(strings.TrimSuffix(word, "es")):
		return strings.TrimSuffix(word, "es")
	case hasStem(word, "s", 2):
		return strings.TrimSuffix(word, "s")
	}
	return word
}

func (r *Reducer) adjectiveLemma(word string) string {
	if lemma, ok := r.irregularAdjectives[word]; ok {
		return lemma
	}

	switch {
	case hasStem(word, "iest", 2):
		return strings.TrimSuffix(word, "iest") + "y"
	case hasStem(word, "ier", 2):
		return strings.TrimSuffix(word, "ier") + "y"
	case hasStem(word, "est", 2):
		return r.comparativeBase(word, strings.TrimSuffix(word, "est"))
	case hasStem(word, "er", 2):
		return r.comparativeBase(word, strings.TrimSuffix(word, "er"))
	}
	return word
}

// comparativeBase only strips -er/-est when the result is a known word, so
// "clever" and "honest" survive.
func (r *Reducer) comparativeBase(word, stem string) string {
	if r.known == nil {
		return word
	}
	for _, candidate := range []string{undouble(stem), stem, stem + "e"} {
		if candidate != "" && r.known(candidate) {
			return candidate
		}
	}
	return word
}

func hasStem(word, suffix string, minStem int) bool {
	return strings.HasSuffix(word, suffix) && utf8.RuneCountInString(word)-utf8.RuneCountInString(suffix) >= minStem
}

func stripPossessive(word string) string {
	if strings.HasSuffix(word, "'s") && len(word) > 2 {
		return strings.TrimSuffix(word, "'s")
	}
	if strings.HasSuffix(word, "s'") {
		return strings.TrimSuffix(word, "'")
	}
	return word
}

func sibilant(stem string) bool {
	for _, end := range []string{"s", "x", "z", "ch", "sh"} {
		if strings.HasSuffix(stem, end) {
			return true
		}
	}
	return false
}

// restoreStem undoes consonant doubling ("stopp" -> "stop") or puts back
// a dropped final e ("lov" -> "love").
func restoreStem(stem string) string {
	if u := undouble(stem); u != "" {
		return u
	}
	if needsE(stem) {
		return stem + "e"
	}
	return stem
}

func undouble(stem string) string {
	n := len(stem)
	if n < 3 || stem[n-1] != stem[n-2] || strings.ContainsRune("aeiouylsz", rune(stem[n-1])) {
		return ""
	}
	return stem[:n-1]
}

func needsE(stem string) bool {
	n := len(stem)
	for _, end := range []string{"bl", "pl", "tl", "dl", "gl", "iz", "v", "c", "rg", "dg"} {
		if strings.HasSuffix(stem, end) {
			return true
		}
	}
	// "creat" and "rat" but not "heat"
	if n >= 3 && strings.HasSuffix(stem, "at") && !isVowel(stem[n-3]) {
		return true
	}
	if n == 2 {
		return isVowel(stem[0]) && !isVowel(stem[1])
	}
	// short consonant-vowel-consonant stems: "mak", "hop", "lik"
	return n == 3 && !isVowel(stem[0]) && isVowel(stem[1]) && !isVowel(stem[2]) && !strings.ContainsRune("wxy", rune(stem[2]))
}

func isVowel(b byte) bool {
	return strings.IndexByte("aeiou", b) >= 0
}
