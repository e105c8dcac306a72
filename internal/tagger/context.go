package tagger

import (
	"slices"
	"strings"

	"github.com/spacesedan/writeclean/internal/models"
)

// contextRule retags the current token based on the token before it.
// Rules are evaluated in order and the first match wins.
type contextRule struct {
	name string
	// prevTags or prevWords must match the previous token
	prevTags  []string
	prevWords []string
	prevModal bool
	// current token constraints
	from     []string
	words    []string
	suffixes []string
	// guessedOnly limits the rule to tags that came from heuristics
	guessedOnly bool
	// unknownOnly limits it further to the noun fallback
	unknownOnly bool
	to          string
}

var (
	subjectPronouns = []string{"i", "you", "he", "she", "it", "we", "they", "y'all", "who"}
	beForms         = []string{"is", "am", "are", "was", "were", "be", "been", "being", "isn't", "aren't", "wasn't", "weren't"}
)

var contextRules = []contextRule{
	{
		name:     "determiner-verb",
		prevTags: []string{models.PosDeterminer, models.PosAdjective},
		from:     []string{models.PosVerb},
		to:       models.PosNoun,
	},
	{
		name:      "modal-verb",
		prevModal: true,
		from:      []string{models.PosNoun, models.PosAdjective},
		to:        models.PosVerb,
	},
	{
		name:        "infinitive",
		prevWords:   []string{"to"},
		from:        []string{models.PosNoun},
		guessedOnly: true,
		to:          models.PosVerb,
	},
	{
		name:      "pronoun-like",
		prevWords: subjectPronouns,
		words:     []string{"like"},
		to:        models.PosVerb,
	},
	{
		name:      "pronoun-inflected-verb",
		prevWords: subjectPronouns,
		from:      []string{models.PosNoun},
		suffixes:  []string{"s", "ed"},
		to:        models.PosVerb,
	},
	{
		name:        "pronoun-unknown-verb",
		prevWords:   subjectPronouns,
		from:        []string{models.PosNoun},
		guessedOnly: true,
		to:          models.PosVerb,
	},
	{
		name:        "copula-adjective",
		prevWords:   beForms,
		from:        []string{models.PosNoun},
		unknownOnly: true,
		to:          models.PosAdjective,
	},
	{
		name:        "preposition-gerund",
		prevTags:    []string{models.PosPreposition},
		from:        []string{models.PosVerb},
		suffixes:    []string{"ing"},
		guessedOnly: true,
		to:          models.PosNoun,
	},
}

func (t *Tagger) applyContext(prev, cur *Tagged) {
	if prev.Tag == models.PosPunctuation {
		return
	}
	for _, rule := range contextRules {
		if !t.matches(rule, prev, cur) {
			continue
		}
		cur.Tag = rule.to
		cur.Source = SourceContext
		return
	}
}

func (t *Tagger) matches(rule contextRule, prev, cur *Tagged) bool {
	if cur.Tag == models.PosPunctuation || cur.Tag == models.PosOther {
		return false
	}

	switch {
	case rule.prevModal:
		if !t.IsModal(prev.Key) {
			return false
		}
	case len(rule.prevWords) > 0:
		if !slices.Contains(rule.prevWords, prev.Key) {
			return false
		}
	case len(rule.prevTags) > 0:
		if !slices.Contains(rule.prevTags, prev.Tag) {
			return false
		}
	}

	if len(rule.words) > 0 {
		return slices.Contains(rule.words, cur.Key)
	}

	// closed-class tags only change through an explicit word rule
	if cur.Source == SourceClosed {
		return false
	}
	if rule.guessedOnly && !cur.Guessed() {
		return false
	}
	if rule.unknownOnly && cur.Source != SourceDefault {
		return false
	}
	if len(rule.from) > 0 && !slices.Contains(rule.from, cur.Tag) {
		return false
	}
	if len(rule.suffixes) > 0 {
		matched := false
		for _, suffix := range rule.suffixes {
			if strings.HasSuffix(cur.Key, suffix) && len(cur.Key) > len(suffix)+1 {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
