// Package tagger assigns coarse part-of-speech tags and stopword flags.
//
// Tagging runs in two passes. The baseline pass looks a word up in the
// closed-class lists, the open-class lexicon, then derives a tag from its
// base form or suffix. The context pass revisits guessed tags using the tag
// or word immediately before them.
package tagger

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball/english"
	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tokenizer"
)

// Source records which baseline step produced a tag.
type Source int

const (
	SourceNonWord Source = iota
	SourceClosed
	SourceLexicon
	SourceBaseForm
	SourceProperNoun
	SourceSuffix
	SourceDefault
	SourceContext
)

type Tagged struct {
	tokenizer.Token
	Key        string
	Tag        string
	Source     Source
	IsStopWord bool
}

// Guessed reports whether the tag came from a heuristic rather than a word
// list.
func (t Tagged) Guessed() bool {
	return t.Source >= SourceSuffix
}

var (
	closedOrder = []string{
		models.PosDeterminer,
		models.PosPronoun,
		models.PosPreposition,
		models.PosConjunction,
		models.PosVerb,
		models.PosAdverb,
		models.PosInterjection,
	}
	openOrder = []string{
		models.PosNoun,
		models.PosVerb,
		models.PosAdjective,
		models.PosAdverb,
	}
)

type Tagger struct {
	closed      map[string]string
	open        map[string]string
	modals      map[string]bool
	suffixRules []lexicon.SuffixTagRule
	stopExtra   map[string]bool
	notStop     map[string]bool
}

func New(words *lexicon.WordLists) *Tagger {
	t := &Tagger{
		closed:      make(map[string]string),
		open:        make(map[string]string),
		modals:      toSet(words.Modals),
		suffixRules: words.TagSuffixRules,
		stopExtra:   toSet(words.StopwordsExtra),
		notStop:     toSet(words.NotStopwords),
	}

	for _, tag := range closedOrder {
		for _, w := range words.ClosedClass[tag] {
			if _, ok := t.closed[w]; !ok {
				t.closed[w] = tag
			}
		}
	}
	for w, tag := range words.PreferredTags {
		if _, ok := t.closed[w]; ok {
			t.closed[w] = tag
		}
	}
	for _, tag := range openOrder {
		for _, w := range words.OpenClass[tag] {
			if _, ok := t.open[w]; !ok {
				t.open[w] = tag
			}
		}
	}
	return t
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// IsStopWord checks the Snowball English list plus the extra entries, minus
// the exceptions. Matching is case-insensitive.
func (t *Tagger) IsStopWord(word string) bool {
	key := tokenizer.Key(word)
	if t.notStop[key] {
		return false
	}
	return t.stopExtra[key] || english.IsStopWord(key)
}

// IsModal reports whether word is a modal or semi-modal auxiliary.
func (t *Tagger) IsModal(word string) bool {
	return t.modals[tokenizer.Key(word)]
}

// Known reports whether word is in the open- or closed-class lexicon.
func (t *Tagger) Known(word string) bool {
	key := tokenizer.Key(word)
	if _, ok := t.open[key]; ok {
		return true
	}
	_, ok := t.closed[key]
	return ok
}

// Tag tags every token. Sentence boundaries reset the context pass.
func (t *Tagger) Tag(tokens []tokenizer.Token) []Tagged {
	out := make([]Tagged, len(tokens))
	for i, tok := range tokens {
		initial := i == 0 || tokens[i-1].Sentence != tok.Sentence || isOpener(tokens[i-1])
		out[i] = t.baseline(tok, initial)
	}

	for i := 1; i < len(out); i++ {
		if out[i-1].Sentence != out[i].Sentence {
			continue
		}
		t.applyContext(&out[i-1], &out[i])
	}
	return out
}

func isOpener(tok tokenizer.Token) bool {
	return tok.Kind == tokenizer.Punctuation && strings.ContainsAny(tok.Text, "\"“‘'([")
}

func (t *Tagger) baseline(tok tokenizer.Token, sentenceInitial bool) Tagged {
	tagged := Tagged{Token: tok, Key: tokenizer.Key(tok.Text)}

	switch tok.Kind {
	case tokenizer.Punctuation:
		tagged.Tag = models.PosPunctuation
		return tagged
	case tokenizer.Word:
	default:
		tagged.Tag = models.PosOther
		return tagged
	}

	tagged.IsStopWord = t.IsStopWord(tagged.Key)
	key := openKey(tagged.Key)

	if tag, ok := t.closed[tagged.Key]; ok {
		tagged.Tag, tagged.Source = tag, SourceClosed
		return tagged
	}
	if tag, ok := t.open[key]; ok {
		tagged.Tag, tagged.Source = tag, SourceLexicon
		return tagged
	}
	for _, form := range collapsedForms(key) {
		if tag, ok := t.closed[form]; ok {
			tagged.Tag, tagged.Source = tag, SourceClosed
			return tagged
		}
		if tag, ok := t.open[form]; ok {
			tagged.Tag, tagged.Source = tag, SourceLexicon
			return tagged
		}
	}
	if tag, ok := t.baseForm(key); ok {
		tagged.Tag, tagged.Source = tag, SourceBaseForm
		return tagged
	}
	if !sentenceInitial && isCapitalized(tok.Text) {
		tagged.Tag, tagged.Source = models.PosNoun, SourceProperNoun
		return tagged
	}
	for _, rule := range t.suffixRules {
		if strings.HasSuffix(key, rule.Suffix) && utf8.RuneCountInString(key)-utf8.RuneCountInString(rule.Suffix) >= rule.MinStem {
			tagged.Tag, tagged.Source = rule.Tag, SourceSuffix
			return tagged
		}
	}
	tagged.Tag, tagged.Source = models.PosNoun, SourceDefault
	return tagged
}

type inflection struct {
	suffix string
	stems  func(string) []string
	accept func(stemTag string) (string, bool)
}

var inflections = []inflection{
	{"ies", func(s string) []string { return []string{s + "y"} }, same},
	{"es", func(s string) []string { return []string{s, s + "e"} }, same},
	{"s", func(s string) []string { return []string{s} }, same},
	{"ied", func(s string) []string { return []string{s + "y"} }, only(models.PosVerb, models.PosVerb)},
	{"ed", func(s string) []string { return []string{s, s + "e", undouble(s)} }, only(models.PosVerb, models.PosVerb)},
	{"ing", func(s string) []string { return []string{s, s + "e", undouble(s)} }, only(models.PosVerb, models.PosVerb)},
	{"ier", func(s string) []string { return []string{s + "y"} }, only(models.PosAdjective, models.PosAdjective)},
	{"iest", func(s string) []string { return []string{s + "y"} }, only(models.PosAdjective, models.PosAdjective)},
	{"er", func(s string) []string { return []string{s, s + "e", undouble(s)} }, only(models.PosAdjective, models.PosAdjective)},
	{"est", func(s string) []string { return []string{s, s + "e", undouble(s)} }, only(models.PosAdjective, models.PosAdjective)},
	{"ily", func(s string) []string { return []string{s + "y"} }, only(models.PosAdjective, models.PosAdverb)},
	{"ly", func(s string) []string { return []string{s} }, only(models.PosAdjective, models.PosAdverb)},
}

// baseForm strips an inflection and looks the stem up in the open lexicon.
func (t *Tagger) baseForm(word string) (string, bool) {
	for _, inf := range inflections {
		if !strings.HasSuffix(word, inf.suffix) || len(word) <= len(inf.suffix)+1 {
			continue
		}
		stem := strings.TrimSuffix(word, inf.suffix)
		for _, candidate := range inf.stems(stem) {
			if candidate == "" {
				continue
			}
			if tag, ok := t.open[candidate]; ok {
				if result, ok := inf.accept(tag); ok {
					return result, true
				}
			}
		}
	}
	return "", false
}

// openKey drops abbreviation periods and possessive markers.
// collapsedForms returns the spellings of an elongated word ("sooo" gives
// "soo" then "so"), or nothing when key has no letter runs.
func collapsedForms(key string) []string {
	double := tokenizer.CollapseRuns(key, 2)
	if double == key {
		return nil
	}
	return []string{double, tokenizer.CollapseRuns(key, 1)}
}

func openKey(key string) string {
	key = strings.TrimSuffix(key, ".")
	if strings.HasSuffix(key, "'s") && len(key) > 2 {
		return strings.TrimSuffix(key, "'s")
	}
	if strings.HasSuffix(key, "s'") {
		return strings.TrimSuffix(key, "'")
	}
	return key
}

func same(tag string) (string, bool) {
	return tag, true
}

func only(want, result string) func(string) (string, bool) {
	return func(tag string) (string, bool) {
		return result, tag == want
	}
}

// undouble turns "stopp" into "stop"; other stems map to "".
func undouble(stem string) string {
	n := len(stem)
	if n < 3 || stem[n-1] != stem[n-2] || strings.ContainsRune("aeiouls", rune(stem[n-1])) {
		return ""
	}
	return stem[:n-1]
}

func isCapitalized(word string) bool {
	r, _ := utf8.DecodeRuneInString(word)
	if !unicode.IsUpper(r) {
		return false
	}
	for _, c := range word {
		if unicode.IsLower(c) {
			return true
		}
	}
	// all caps reads as emphasis, not a name
	return false
}
