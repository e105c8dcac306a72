// Package tokenizer splits text into word, number, punctuation and emoji
// tokens and groups them into sentences.
package tokenizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"golang.org/x/text/unicode/norm"
)

type Kind int

const (
	Word Kind = iota
	Number
	Punctuation
	Emoji
	Symbol
	URL
)

func (k Kind) String() string {
	switch k {
	case Word:
		return "word"
	case Number:
		return "number"
	case Punctuation:
		return "punctuation"
	case Emoji:
		return "emoji"
	case Symbol:
		return "symbol"
	case URL:
		return "url"
	default:
		return "unknown"
	}
}

// Token is a unit of the normalized text. Start and End are byte offsets
// into Result.Text.
type Token struct {
	Text     string
	Kind     Kind
	Start    int
	End      int
	Sentence int
}

// Sentence spans Tokens[First:Last] and Text[Start:End].
type Sentence struct {
	Index int
	Start int
	End   int
	First int
	Last  int
}

type Result struct {
	Text      string
	Tokens    []Token
	Sentences []Sentence
}

func (r *Result) SentenceText(i int) string {
	s := r.Sentences[i]
	return r.Text[s.Start:s.End]
}

func (r *Result) SentenceTokens(i int) []Token {
	s := r.Sentences[i]
	return r.Tokens[s.First:s.Last]
}

type Tokenizer struct {
	abbreviations map[string]bool
	leading       []string
}

var (
	dottedAcronym = regexp.MustCompile(`^(?:\pL\.){2,}`)
	urlPrefix     = regexp.MustCompile(`^(?i:https?://|www\.)`)
)

// New builds a tokenizer. Abbreviations are lowercase and end with a period
// ("dr.", "e.g."); leading contractions start with an apostrophe ("'cause").
func New(abbreviations, leadingContractions []string) *Tokenizer {
	t := &Tokenizer{abbreviations: make(map[string]bool, len(abbreviations))}
	for _, a := range abbreviations {
		t.abbreviations[strings.ToLower(a)] = true
	}
	for _, c := range leadingContractions {
		t.leading = append(t.leading, strings.ToLower(c))
	}
	return t
}

// Key is the lookup form of a token: lowercased, with typographic
// apostrophes folded to ASCII.
func Key(word string) string {
	return strings.ToLower(strings.ReplaceAll(word, "’", "'"))
}

// CollapseRuns shortens every run of three or more of the same letter to
// keep letters. Case is ignored when comparing.
func CollapseRuns(word string, keep int) string {
	runes := []rune(word)
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i + 1
		for j < len(runes) && unicode.IsLetter(runes[i]) && unicode.ToLower(runes[j]) == unicode.ToLower(runes[i]) {
			j++
		}
		n := j - i
		if n >= 3 {
			n = keep
		}
		b.WriteString(string(runes[i : i+n]))
		i = j
	}
	return b.String()
}

// Tokenize NFC-normalizes text and scans it into tokens and sentences.
func (t *Tokenizer) Tokenize(text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.EmptyInputError{}
	}

	normalized := norm.NFC.String(text)
	res := &Result{Text: normalized}

	sentenceFirst := 0
	closeSentence := func() {
		if len(res.Tokens) == sentenceFirst {
			return
		}
		idx := len(res.Sentences)
		for i := sentenceFirst; i < len(res.Tokens); i++ {
			res.Tokens[i].Sentence = idx
		}
		res.Sentences = append(res.Sentences, Sentence{
			Index: idx,
			Start: res.Tokens[sentenceFirst].Start,
			End:   res.Tokens[len(res.Tokens)-1].End,
			First: sentenceFirst,
			Last:  len(res.Tokens),
		})
		sentenceFirst = len(res.Tokens)
	}

	emit := func(kind Kind, start, end int) {
		res.Tokens = append(res.Tokens, Token{
			Text:  normalized[start:end],
			Kind:  kind,
			Start: start,
			End:   end,
		})
	}

	// runs of invisible characters, kept as symbols when nothing else is
	// visible
	var hidden [][2]int

	i := 0
	for i < len(normalized) {
		rest := normalized[i:]
		r, size := utf8.DecodeRuneInString(rest)

		switch {
		case unicode.IsSpace(r):
			i += size

		case isInvisible(r, size):
			if n := len(hidden); n > 0 && hidden[n-1][1] == i {
				hidden[n-1][1] = i + size
			} else {
				hidden = append(hidden, [2]int{i, i + size})
			}
			i += size

		case atWordStart(normalized, i) && urlPrefix.MatchString(rest):
			n := scanURL(rest)
			emit(URL, i, i+n)
			i += n

		case scanEmoji(rest) > 0:
			n := scanEmoji(rest)
			emit(Emoji, i, i+n)
			i += n

		case unicode.IsLetter(r):
			n := t.scanWord(rest)
			emit(Word, i, i+n)
			i += n

		case unicode.IsDigit(r):
			n, kind := scanNumber(rest)
			emit(kind, i, i+n)
			i += n

		case isApostrophe(r) && t.leadingContraction(rest) > 0:
			n := t.leadingContraction(rest)
			emit(Word, i, i+n)
			i += n

		case isTerminal(r):
			n := scanRun(rest, isTerminal)
			emit(Punctuation, i, i+n)
			i += n
			// closing quotes and brackets stay with the sentence they end
			for i < len(normalized) {
				c, csize := utf8.DecodeRuneInString(normalized[i:])
				if !isCloser(c) {
					break
				}
				emit(Punctuation, i, i+csize)
				i += csize
			}
			closeSentence()

		case unicode.IsPunct(r):
			n := scanRun(rest, func(c rune) bool { return c == r })
			emit(Punctuation, i, i+n)
			i += n

		default:
			emit(Symbol, i, i+size)
			i += size
		}
	}
	closeSentence()

	if len(res.Tokens) == 0 {
		for _, h := range hidden {
			emit(Symbol, h[0], h[1])
		}
		closeSentence()
	}
	return res, nil
}

// isInvisible reports control and format characters and invalid bytes.
func isInvisible(r rune, size int) bool {
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r) || (r == utf8.RuneError && size <= 1)
}

// IsInvisible reports whether token holds only characters that render as
// nothing.
func IsInvisible(token string) bool {
	if token == "" {
		return false
	}
	for i := 0; i < len(token); {
		r, size := utf8.DecodeRuneInString(token[i:])
		if !isInvisible(r, size) {
			return false
		}
		i += size
	}
	return true
}

// scanWord consumes letters, marks and digits, keeping internal apostrophes
// and hyphens, a trailing possessive apostrophe, abbreviation periods and
// dotted acronyms.
func (t *Tokenizer) scanWord(text string) int {
	if m := dottedAcronym.FindString(text); m != "" {
		next, _ := utf8.DecodeRuneInString(text[len(m):])
		if !unicode.IsLetter(next) {
			return len(m)
		}
	}

	i := 0
	var prev rune
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsLetter(r), unicode.IsMark(r), unicode.IsDigit(r):
			i += size
			prev = r
			continue
		case isApostrophe(r) || r == '-':
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if unicode.IsLetter(prev) && unicode.IsLetter(next) {
				i += size
				prev = r
				continue
			}
			if isApostrophe(r) && (prev == 's' || prev == 'S') && !unicode.IsLetter(next) && !unicode.IsDigit(next) {
				i += size
			}
		}
		break
	}

	if i < len(text) && text[i] == '.' && t.abbreviations[Key(text[:i+1])] {
		i++
	}
	return i
}

func (t *Tokenizer) leadingContraction(text string) int {
	key := Key(text)
	for _, c := range t.leading {
		if !strings.HasPrefix(key, c) {
			continue
		}
		// the typographic apostrophe is three bytes, the ASCII one is one
		n := len(c)
		if strings.HasPrefix(text, "’") {
			n += len("’") - 1
		}
		if n > len(text) {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[n:])
		if !unicode.IsLetter(next) {
			return n
		}
	}
	return 0
}

func scanNumber(text string) (int, Kind) {
	kind := Number
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsDigit(r):
			i += size
			continue
		case r == '.' || r == ',' || r == ':':
			next, _ := utf8.DecodeRuneInString(text[i+size:])
			if unicode.IsDigit(next) {
				i += size
				continue
			}
		case unicode.IsLetter(r):
			// 3rd, 90s, 5pm
			kind = Word
			i += size
			continue
		}
		break
	}
	return i, kind
}

func scanURL(text string) int {
	n := strings.IndexFunc(text, unicode.IsSpace)
	if n < 0 {
		n = len(text)
	}
	for n > 0 {
		r, size := utf8.DecodeLastRuneInString(text[:n])
		if !strings.ContainsRune(`.,!?;:)]}"'’”`, r) {
			break
		}
		n -= size
	}
	return n
}

func scanRun(text string, match func(rune) bool) int {
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !match(r) {
			break
		}
		i += size
	}
	return i
}

func atWordStart(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', '’', '”', ')', ']', '}', '»':
		return true
	}
	return false
}

// IsTerminal reports whether a punctuation token ends a sentence.
func IsTerminal(token string) bool {
	return token != "" && strings.IndexFunc(token, isTerminal) >= 0
}

// IsCloser reports whether a punctuation token only closes a quote or
// bracket.
func IsCloser(token string) bool {
	return token != "" && strings.TrimFunc(token, isCloser) == ""
}
