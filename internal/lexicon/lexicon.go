// Package lexicon loads the word lists, polarity tables and rule tables the
// analysis stages read from. Tables are parsed once and never mutated.
package lexicon

import (
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/spacesedan/writeclean/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

const (
	WordsFile      = "words.yaml"
	SentimentFile  = "sentiment.yaml"
	MorphologyFile = "morphology.yaml"
	RewriteFile    = "rewrite.yaml"
)

type SuffixTagRule struct {
	Suffix  string `yaml:"suffix"`
	Tag     string `yaml:"tag"`
	MinStem int    `yaml:"min_stem"`
}

type WordLists struct {
	Version             string              `yaml:"version"`
	StopwordsExtra      []string            `yaml:"stopwords_extra"`
	NotStopwords        []string            `yaml:"not_stopwords"`
	Abbreviations       []string            `yaml:"abbreviations"`
	LeadingContractions []string            `yaml:"leading_contractions"`
	ClosedClass         map[string][]string `yaml:"closed_class"`
	PreferredTags       map[string]string   `yaml:"preferred_tags"`
	Modals              []string            `yaml:"modals"`
	OpenClass           map[string][]string `yaml:"open_class"`
	TagSuffixRules      []SuffixTagRule     `yaml:"tag_suffix_rules"`
}

// SlangEntry is a slang word or idiom. Polarity uses the word valence scale.
type SlangEntry struct {
	Phrase      string  `yaml:"phrase"`
	Polarity    float64 `yaml:"polarity"`
	Replacement string  `yaml:"replacement"`
	Meaning     string  `yaml:"meaning"`
}

type EmojiEntry struct {
	Polarity    float64 `yaml:"polarity"`
	Description string  `yaml:"description"`
}

type SentimentLexicon struct {
	Version  string                `yaml:"version"`
	Polarity map[string]float64    `yaml:"polarity"`
	Boosters map[string]float64    `yaml:"boosters"`
	Negators []string              `yaml:"negators"`
	Slang    []SlangEntry          `yaml:"slang"`
	Emoji    map[string]EmojiEntry `yaml:"emoji"`
}

type StemRule struct {
	Suffix  string `yaml:"suffix"`
	Replace string `yaml:"replace"`
	Stop    bool   `yaml:"stop"`
	Group   string `yaml:"group"`
}

type LemmaEntry struct {
	Word  string `yaml:"word"`
	POS   string `yaml:"pos"`
	Lemma string `yaml:"lemma"`
}

type MorphologyTables struct {
	Version             string            `yaml:"version"`
	StemRules           []StemRule        `yaml:"stem_rules"`
	Lemmas              []LemmaEntry      `yaml:"lemmas"`
	IrregularVerbs      map[string]string `yaml:"irregular_verbs"`
	IrregularPlurals    map[string]string `yaml:"irregular_plurals"`
	IrregularAdjectives map[string]string `yaml:"irregular_adjectives"`
}

type RewriteTables struct {
	Version  string            `yaml:"version"`
	Informal map[string]string `yaml:"informal"`
	Toxic    map[string]string `yaml:"toxic"`
}

// Lexicons bundles every table the engine needs.
type Lexicons struct {
	Words      *WordLists
	Sentiment  *SentimentLexicon
	Morphology *MorphologyTables
	Rewrite    *RewriteTables
	// Source is "embedded" or the override directory.
	Source string
}

// Stats reports table sizes, used by the CLI and startup logs.
type Stats struct {
	Source         string `json:"source"`
	Version        string `json:"version"`
	ClosedClass    int    `json:"closed_class"`
	OpenClass      int    `json:"open_class"`
	Abbreviations  int    `json:"abbreviations"`
	TagSuffixRules int    `json:"tag_suffix_rules"`
	Polarity       int    `json:"polarity"`
	Boosters       int    `json:"boosters"`
	Negators       int    `json:"negators"`
	Slang          int    `json:"slang"`
	Emoji          int    `json:"emoji"`
	StemRules      int    `json:"stem_rules"`
	Lemmas         int    `json:"lemmas"`
	Substitutions  int    `json:"substitutions"`
}

var (
	defaultLexicons *Lexicons
	defaultErr      error
	defaultOnce     sync.Once
)

// Default returns the embedded lexicons, parsed on first use.
func Default() (*Lexicons, error) {
	defaultOnce.Do(func() {
		defaultLexicons, defaultErr = Load("")
	})
	return defaultLexicons, defaultErr
}

// Load reads the four lexicon files from dir, or from the embedded copies
// when dir is empty. Any parse or validation failure is a
// *apperrors.LexiconLoadError.
func Load(dir string) (*Lexicons, error) {
	var fsys fs.FS
	source := "embedded"
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, &apperrors.LexiconLoadError{Name: "embedded", Err: err}
		}
		fsys = sub
	} else {
		fsys = os.DirFS(dir)
		source = dir
	}

	lex := &Lexicons{
		Words:      &WordLists{},
		Sentiment:  &SentimentLexicon{},
		Morphology: &MorphologyTables{},
		Rewrite:    &RewriteTables{},
		Source:     source,
	}

	files := []struct {
		name     string
		target   any
		validate func() error
	}{
		{WordsFile, lex.Words, lex.Words.normalize},
		{SentimentFile, lex.Sentiment, lex.Sentiment.normalize},
		{MorphologyFile, lex.Morphology, lex.Morphology.normalize},
		{RewriteFile, lex.Rewrite, lex.Rewrite.normalize},
	}

	for _, f := range files {
		if err := decodeFile(fsys, f.name, f.target); err != nil {
			return nil, &apperrors.LexiconLoadError{Name: f.name, Path: location(dir, f.name), Err: err}
		}
		if err := f.validate(); err != nil {
			return nil, &apperrors.LexiconLoadError{Name: f.name, Path: location(dir, f.name), Err: err}
		}
	}

	stats := lex.Stats()
	slog.Debug("[Lexicon] Loaded lexicons",
		slog.String("source", stats.Source),
		slog.String("version", stats.Version),
		slog.Int("slang", stats.Slang),
		slog.Int("polarity", stats.Polarity),
		slog.Int("stem_rules", stats.StemRules))

	return lex, nil
}

func location(dir, name string) string {
	if dir == "" {
		return path.Join("embedded", name)
	}
	return path.Join(dir, name)
}

func decodeFile(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("invalid yaml: %w", err)
	}
	return nil
}

func (l *Lexicons) Stats() Stats {
	s := Stats{
		Source:         l.Source,
		Version:        l.Words.Version,
		Abbreviations:  len(l.Words.Abbreviations),
		TagSuffixRules: len(l.Words.TagSuffixRules),
		Polarity:       len(l.Sentiment.Polarity),
		Boosters:       len(l.Sentiment.Boosters),
		Negators:       len(l.Sentiment.Negators),
		Slang:          len(l.Sentiment.Slang),
		Emoji:          len(l.Sentiment.Emoji),
		StemRules:      len(l.Morphology.StemRules),
		Lemmas:         len(l.Morphology.Lemmas),
		Substitutions:  len(l.Rewrite.Informal) + len(l.Rewrite.Toxic),
	}
	for _, words := range l.Words.ClosedClass {
		s.ClosedClass += len(words)
	}
	for _, words := range l.Words.OpenClass {
		s.OpenClass += len(words)
	}
	return s
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func lowerKeys[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

func (w *WordLists) normalize() error {
	w.StopwordsExtra = lowerAll(w.StopwordsExtra)
	w.NotStopwords = lowerAll(w.NotStopwords)
	w.Abbreviations = lowerAll(w.Abbreviations)
	w.LeadingContractions = lowerAll(w.LeadingContractions)
	w.Modals = lowerAll(w.Modals)
	w.PreferredTags = lowerKeys(w.PreferredTags)

	for tag, words := range w.ClosedClass {
		if !models.IsPosTag(tag) {
			return fmt.Errorf("closed_class: unknown tag %q", tag)
		}
		w.ClosedClass[tag] = lowerAll(words)
	}
	for tag, words := range w.OpenClass {
		if !models.IsPosTag(tag) {
			return fmt.Errorf("open_class: unknown tag %q", tag)
		}
		w.OpenClass[tag] = lowerAll(words)
	}
	for word, tag := range w.PreferredTags {
		if !models.IsPosTag(tag) {
			return fmt.Errorf("preferred_tags: unknown tag %q for %q", tag, word)
		}
	}
	for i, rule := range w.TagSuffixRules {
		if rule.Suffix == "" || !models.IsPosTag(rule.Tag) {
			return fmt.Errorf("tag_suffix_rules[%d]: invalid rule %+v", i, rule)
		}
		w.TagSuffixRules[i].Suffix = strings.ToLower(rule.Suffix)
	}
	for _, abbr := range w.Abbreviations {
		if !strings.HasSuffix(abbr, ".") {
			return fmt.Errorf("abbreviations: %q must end with a period", abbr)
		}
	}
	return nil
}

func (s *SentimentLexicon) normalize() error {
	s.Polarity = lowerKeys(s.Polarity)
	s.Boosters = lowerKeys(s.Boosters)
	s.Negators = lowerAll(s.Negators)

	for word, v := range s.Polarity {
		if math.IsNaN(v) || math.Abs(v) > 4 {
			return fmt.Errorf("polarity: %q has out of range valence %v", word, v)
		}
	}
	for word, v := range s.Boosters {
		if math.IsNaN(v) || math.Abs(v) > 1 {
			return fmt.Errorf("boosters: %q has out of range scalar %v", word, v)
		}
	}
	for i, entry := range s.Slang {
		entry.Phrase = strings.Join(strings.Fields(strings.ToLower(entry.Phrase)), " ")
		if entry.Phrase == "" {
			return fmt.Errorf("slang[%d]: empty phrase", i)
		}
		if math.IsNaN(entry.Polarity) || math.Abs(entry.Polarity) > 4 {
			return fmt.Errorf("slang: %q has out of range polarity %v", entry.Phrase, entry.Polarity)
		}
		s.Slang[i] = entry
	}
	for emoji, entry := range s.Emoji {
		if math.IsNaN(entry.Polarity) || math.Abs(entry.Polarity) > 1 {
			return fmt.Errorf("emoji: %q has out of range polarity %v", emoji, entry.Polarity)
		}
		if entry.Description == "" {
			return fmt.Errorf("emoji: %q has no description", emoji)
		}
	}
	return nil
}

func (m *MorphologyTables) normalize() error {
	if len(m.StemRules) == 0 {
		return fmt.Errorf("stem_rules: table is empty")
	}
	for i, rule := range m.StemRules {
		if rule.Suffix == "" {
			return fmt.Errorf("stem_rules[%d]: empty suffix", i)
		}
		if utf8.RuneCountInString(rule.Replace) > utf8.RuneCountInString(rule.Suffix) {
			return fmt.Errorf("stem_rules[%d]: replacement %q is longer than suffix %q", i, rule.Replace, rule.Suffix)
		}
	}
	for i, entry := range m.Lemmas {
		entry.Word = strings.ToLower(entry.Word)
		entry.Lemma = strings.ToLower(entry.Lemma)
		if entry.Word == "" || entry.Lemma == "" {
			return fmt.Errorf("lemmas[%d]: word and lemma are required", i)
		}
		if models.CoarsePos(entry.POS) != entry.POS {
			return fmt.Errorf("lemmas[%d]: %q is not a coarse tag", i, entry.POS)
		}
		m.Lemmas[i] = entry
	}
	m.IrregularVerbs = lowerKeys(m.IrregularVerbs)
	m.IrregularPlurals = lowerKeys(m.IrregularPlurals)
	m.IrregularAdjectives = lowerKeys(m.IrregularAdjectives)
	return nil
}

func (r *RewriteTables) normalize() error {
	r.Informal = lowerKeys(r.Informal)
	r.Toxic = lowerKeys(r.Toxic)
	for term := range r.Informal {
		if term == "" {
			return fmt.Errorf("informal: empty term")
		}
	}
	for term := range r.Toxic {
		if term == "" {
			return fmt.Errorf("toxic: empty term")
		}
	}
	return nil
}
