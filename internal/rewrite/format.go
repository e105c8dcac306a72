package rewrite

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/tokenizer"
)

var separators = map[string]bool{",": true, ";": true, ":": true}

func isBoundary(p piece) bool {
	return p.kind == piecePunct && (separators[p.text] || tokenizer.IsTerminal(p.text))
}

// quotePairs maps an opening quote or bracket to its closer.
var quotePairs = map[string]string{`"`: `"`, "“": "”", "‘": "’", "(": ")", "[": "]"}

// tidy cleans up the punctuation that removals leave behind.
func tidy(pieces []piece) []piece {
	pieces = dropEmptyQuotes(pieces)
	pieces = dropEmptySentences(pieces)
	return dropSeparators(pieces)
}

// dropEmptyQuotes removes quotes and brackets that enclose nothing but
// punctuation after a removal. A terminal inside them is kept.
func dropEmptyQuotes(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	straight := 0
	for k := 0; k < len(pieces); k++ {
		p := pieces[k]
		if end := emptyQuoteEnd(pieces, k, straight%2 == 0); end > k {
			for j := end - 1; j > k; j-- {
				if tokenizer.IsTerminal(pieces[j].text) {
					q := pieces[j]
					q.space, q.orphaned = false, true
					out = append(out, q)
					break
				}
			}
			k = end
			continue
		}
		if p.kind == piecePunct && p.text == `"` {
			straight++
		}
		out = append(out, p)
	}
	return out
}

// emptyQuoteEnd returns the index of the closer matching the opener at k,
// or -1 unless only punctuation with an orphaned piece lies between them.
// A straight quote opens only when canOpen is set.
func emptyQuoteEnd(pieces []piece, k int, canOpen bool) int {
	p := pieces[k]
	closer, ok := quotePairs[p.text]
	if p.kind != piecePunct || !ok || (p.text == `"` && !canOpen) {
		return -1
	}
	orphaned := false
	for j := k + 1; j < len(pieces); j++ {
		q := pieces[j]
		if q.kind != piecePunct || q.sentence != p.sentence {
			return -1
		}
		orphaned = orphaned || q.orphaned
		if q.text == closer {
			if orphaned {
				return j
			}
			return -1
		}
	}
	return -1
}

// dropEmptySentences removes sentences that a removal left with only
// punctuation.
func dropEmptySentences(pieces []piece) []piece {
	empty := make(map[int]bool)
	for _, p := range pieces {
		if p.orphaned {
			empty[p.sentence] = true
		}
	}
	for _, p := range pieces {
		if p.kind != piecePunct {
			delete(empty, p.sentence)
		}
	}
	if len(empty) == 0 {
		return pieces
	}

	out := make([]piece, 0, len(pieces))
	for _, p := range pieces {
		if !empty[p.sentence] {
			out = append(out, p)
		}
	}
	return out
}

// dropSeparators drops separators left dangling by removals: at the start
// or end of a sentence and next to another separator.
func dropSeparators(pieces []piece) []piece {
	out := make([]piece, 0, len(pieces))
	for k, p := range pieces {
		if p.kind == piecePunct && separators[p.text] {
			if len(out) == 0 || k+1 >= len(pieces) {
				continue
			}
			prev, next := out[len(out)-1], pieces[k+1]
			if prev.sentence != p.sentence || next.sentence != p.sentence || isBoundary(prev) || isBoundary(next) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func hasContent(pieces []piece) bool {
	for _, p := range pieces {
		if p.kind != piecePunct {
			return true
		}
	}
	return false
}

// capitalize upper-cases the first word of every sentence.
func capitalize(pieces []piece) {
	done := -1
	for i := range pieces {
		p := &pieces[i]
		if p.sentence == done || p.kind == piecePunct {
			continue
		}
		done = p.sentence
		if p.kind == pieceWord {
			p.text = upperFirst(p.text)
		}
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// render joins the pieces with single spaces where the input had whitespace
// and closes the text with a period when it lacks terminal punctuation.
func render(pieces []piece) string {
	var b strings.Builder
	for i, p := range pieces {
		if i > 0 && p.space {
			b.WriteByte(' ')
		}
		b.WriteString(p.text)
	}
	if !terminated(pieces) {
		b.WriteByte('.')
	}
	return b.String()
}

func terminated(pieces []piece) bool {
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		switch {
		case p.kind == pieceWord && strings.HasSuffix(p.text, "."):
			// abbreviation or acronym: "etc.", "U.S."
			return true
		case p.kind != piecePunct:
			return false
		case tokenizer.IsTerminal(p.text):
			return true
		case !tokenizer.IsCloser(p.text):
			return false
		}
	}
	return false
}
