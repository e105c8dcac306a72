// Package rewrite produces a cleaned-up version of the input text with a
// list of the changes made.
package rewrite

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tokenizer"
)

const capsChange = "Converted all-caps text to sentence case"

type substitution struct {
	words       []string
	replacement string
}

type Generator struct {
	subs    []substitution
	phrases map[string]bool
	known   func(string) bool
}

type Option func(*Generator)

// WithVocabulary lets elongation repair pick the spelling that is a known
// word ("sooo" -> "so", "coool" -> "cool").
func WithVocabulary(known func(string) bool) Option {
	return func(g *Generator) {
		g.known = known
	}
}

// New merges the slang replacements with the toxic and informal tables.
// When a phrase appears in more than one table the first one wins in that
// order.
func New(sentiment *lexicon.SentimentLexicon, tables *lexicon.RewriteTables, opts ...Option) *Generator {
	g := &Generator{phrases: make(map[string]bool)}
	add := func(phrase, replacement string) {
		if g.phrases[phrase] {
			return
		}
		g.phrases[phrase] = true
		g.subs = append(g.subs, substitution{words: strings.Fields(phrase), replacement: replacement})
	}

	for _, entry := range sentiment.Slang {
		add(entry.Phrase, entry.Replacement)
	}
	for _, table := range []map[string]string{tables.Toxic, tables.Informal} {
		for _, phrase := range sortedKeys(table) {
			add(phrase, table[phrase])
		}
	}

	sort.SliceStable(g.subs, func(i, j int) bool {
		return len(g.subs[i].words) > len(g.subs[j].words)
	})

	for _, opt := range opts {
		opt(g)
	}
	return g
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rewrite cleans res. original is returned untouched as Improvement.Original.
func (g *Generator) Rewrite(original string, res *tokenizer.Result) models.Improvement {
	changes := &changeLog{seen: make(map[string]bool)}
	pieces := g.pieces(res, changes)
	pieces = tidy(pieces)

	if !hasContent(pieces) {
		return models.Improvement{
			Original: original,
			Improved: strings.Join(strings.Fields(res.Text), " "),
			Changes:  []string{},
		}
	}

	capitalize(pieces)
	return models.Improvement{
		Original: original,
		Improved: render(pieces),
		Changes:  changes.list(),
	}
}

type pieceKind int

const (
	pieceWord pieceKind = iota
	piecePunct
	pieceOther
)

type piece struct {
	text     string
	space    bool
	kind     pieceKind
	sentence int
	// first piece after a removal
	orphaned bool
}

func (g *Generator) pieces(res *tokenizer.Result, changes *changeLog) []piece {
	var out []piece

	for si, s := range res.Sentences {
		toks := res.SentenceTokens(si)
		shouting := isShoutingSentence(toks)
		if shouting {
			changes.add(capsChange)
		}

		surface := make([]string, len(toks))
		keys := make([]string, len(toks))
		for i, tok := range toks {
			surface[i] = tok.Text
			if tok.Kind != tokenizer.Word {
				continue
			}
			if shouting {
				surface[i] = strings.ToLower(surface[i])
			}
			surface[i] = g.collapseElongation(surface[i])
			keys[i] = tokenizer.Key(surface[i])
		}

		pending, orphan := false, false
		add := func(p piece) {
			p.orphaned = orphan
			out = append(out, p)
			pending, orphan = false, false
		}

		for i := 0; i < len(toks); {
			tok := toks[i]
			gi := s.First + i
			gap := gi > 0 && res.Tokens[gi-1].End < tok.Start

			switch tok.Kind {
			case tokenizer.Emoji:
				changes.removed(tok.Text)
				pending = pending || gap
				orphan = true
				i++
				continue

			case tokenizer.Punctuation:
				text := collapsePunctuation(tok.Text)
				if text != tok.Text {
					changes.replaced(tok.Text, text)
				}
				add(piece{text: text, space: gap, kind: piecePunct, sentence: si})
				i++
				continue

			case tokenizer.Word:

			default:
				if tokenizer.IsInvisible(tok.Text) {
					i++
					continue
				}
				add(piece{text: tok.Text, space: gap || pending, kind: pieceOther, sentence: si})
				i++
				continue
			}

			if sub, n, ok := g.match(toks, keys, i); ok {
				span := res.Text[tok.Start:toks[i+n-1].End]
				if sub.replacement == "" {
					changes.removed(span)
					pending = pending || gap
					orphan = true
				} else {
					changes.replaced(span, sub.replacement)
					if last := len(out) - 1; last >= 0 && out[last].kind == pieceWord && out[last].sentence == si {
						out[last].text = agreeArticle(out[last].text, sub.replacement)
					}
					add(piece{text: sub.replacement, space: gap || pending, kind: pieceWord, sentence: si})
				}
				i += n
				continue
			}

			word := surface[i]
			if !shouting && word != tok.Text {
				changes.replaced(tok.Text, word)
			}
			add(piece{text: capitalizeI(word), space: gap || pending, kind: pieceWord, sentence: si})
			i++
		}
	}
	return out
}

func (g *Generator) match(toks []tokenizer.Token, keys []string, i int) (substitution, int, bool) {
	for _, sub := range g.subs {
		n := len(sub.words)
		if i+n > len(toks) {
			continue
		}
		matched := true
		for k, w := range sub.words {
			if toks[i+k].Kind != tokenizer.Word || keys[i+k] != w {
				matched = false
				break
			}
		}
		if matched {
			return sub, n, true
		}
	}
	return substitution{}, 0, false
}

// collapseElongation shortens letter runs of three or more. The doubled
// spelling is kept unless only the single one is a known word or phrase.
func (g *Generator) collapseElongation(word string) string {
	double := tokenizer.CollapseRuns(word, 2)
	if double == word {
		return word
	}
	single := tokenizer.CollapseRuns(word, 1)
	if !g.recognized(double) && g.recognized(single) {
		return single
	}
	return double
}

func (g *Generator) recognized(word string) bool {
	key := tokenizer.Key(word)
	return g.phrases[key] || (g.known != nil && g.known(key))
}

// collapsePunctuation reduces "!!!" to "!", "?!?" to "?" and long ellipses
// to "...". Dashes are left alone.
func collapsePunctuation(text string) string {
	if utf8.RuneCountInString(text) < 2 {
		return text
	}
	first, _ := utf8.DecodeRuneInString(text)
	uniform := strings.Trim(text, string(first)) == ""

	switch {
	case uniform && first == '.':
		if len(text) == 2 {
			return "."
		}
		return "..."
	case uniform && first == '-':
		return text
	case uniform:
		return string(first)
	case strings.ContainsRune(text, '?'):
		return "?"
	case strings.ContainsRune(text, '!'):
		return "!"
	}
	return text
}

// isShoutingSentence is true when every word of two or more letters is
// upper case and there are at least two of them.
func isShoutingSentence(toks []tokenizer.Token) bool {
	shouting := 0
	for _, tok := range toks {
		if tok.Kind != tokenizer.Word {
			continue
		}
		letters, upper := 0, true
		for _, r := range tok.Text {
			if unicode.IsLetter(r) {
				letters++
				if unicode.IsLower(r) {
					upper = false
				}
			}
		}
		if letters < 2 {
			continue
		}
		if !upper {
			return false
		}
		shouting++
	}
	return shouting >= 2
}

func capitalizeI(word string) string {
	key := tokenizer.Key(word)
	if key == "i" || strings.HasPrefix(key, "i'") {
		return "I" + word[1:]
	}
	return word
}

// agreeArticle returns the indefinite article that fits before next, or
// word unchanged when it is not "a" or "an".
func agreeArticle(word, next string) string {
	key := strings.ToLower(word)
	if key != "a" && key != "an" {
		return word
	}
	article := "a"
	if r, _ := utf8.DecodeRuneInString(next); strings.ContainsRune("aeiou", unicode.ToLower(r)) {
		article = "an"
	}
	if first, _ := utf8.DecodeRuneInString(word); unicode.IsUpper(first) {
		article = upperFirst(article)
	}
	return article
}

type changeLog struct {
	entries []string
	seen    map[string]bool
}

func (c *changeLog) add(entry string) {
	if c.seen[entry] {
		return
	}
	c.seen[entry] = true
	c.entries = append(c.entries, entry)
}

func (c *changeLog) replaced(from, to string) {
	c.add(fmt.Sprintf("Replaced \"%s\" with \"%s\"", from, to))
}

func (c *changeLog) removed(text string) {
	c.add(fmt.Sprintf("Removed \"%s\"", text))
}

func (c *changeLog) list() []string {
	if c.entries == nil {
		return []string{}
	}
	return c.entries
}
