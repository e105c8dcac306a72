// Package morphology reduces words to stems and lemmas.
//
// Each word gets four forms: an aggressive and a conservative stem derived
// from one ordered suffix table, a dictionary lemma and a heuristic lemma.
// The conservative stem is an earlier step of the aggressive derivation, so
// it is never shorter.
package morphology

import (
	"strings"

	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
)

type Forms struct {
	Aggressive   string
	Conservative string
	Dictionary   string
	Heuristic    string
}

type Reducer struct {
	stemmer             stemmer
	lemmas              map[lemmaKey]string
	irregularVerbs      map[string]string
	irregularPlurals    map[string]string
	irregularAdjectives map[string]string
	dict                Dictionary
	known               func(string) bool
}

type Option func(*Reducer)

// WithDictionary sets the dictionary consulted for lemmas after the lemma
// table.
func WithDictionary(dict Dictionary) Option {
	return func(r *Reducer) {
		r.dict = dict
	}
}

// WithVocabulary lets the heuristic lemmatizer confirm candidate base forms.
func WithVocabulary(known func(string) bool) Option {
	return func(r *Reducer) {
		r.known = known
	}
}

func New(tables *lexicon.MorphologyTables, opts ...Option) *Reducer {
	r := &Reducer{
		stemmer:             stemmer{rules: tables.StemRules},
		lemmas:              make(map[lemmaKey]string, len(tables.Lemmas)),
		irregularVerbs:      tables.IrregularVerbs,
		irregularPlurals:    tables.IrregularPlurals,
		irregularAdjectives: tables.IrregularAdjectives,
	}
	for _, entry := range tables.Lemmas {
		r.lemmas[lemmaKey{entry.Word, entry.POS}] = entry.Lemma
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reduce returns the four forms of word under tag. Punctuation and other
// non-word tags reduce to the word itself.
func (r *Reducer) Reduce(word, tag string) Forms {
	if tag == models.PosPunctuation || tag == models.PosOther {
		return Forms{Aggressive: word, Conservative: word, Dictionary: word, Heuristic: word}
	}

	key := strings.ToLower(strings.ReplaceAll(word, "’", "'"))
	aggressive, conservative := r.stemmer.stems(key)
	coarse := models.CoarsePos(tag)
	base := stripPossessive(strings.TrimSuffix(key, "."))

	return Forms{
		Aggressive:   aggressive,
		Conservative: conservative,
		Dictionary:   r.dictionaryLemma(base, coarse),
		Heuristic:    r.heuristicLemma(base, coarse),
	}
}
