// Package sentiment scores tagged text on a [-1, 1] scale and reports the
// slang, emoji and sentences that drove the verdict.
package sentiment

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tagger"
	"github.com/spacesedan/writeclean/internal/tokenizer"
)

// VADER's empirically derived constants.
const (
	boosterIncrement = 0.293
	capsIncrement    = 0.733
	negationScalar   = -0.74
	exclaimIncrement = 0.292
	maxExclaims      = 4
	lookback         = 3
	emojiScale       = 3.0
	beforeBut        = 0.5
	afterBut         = 1.5
	maxCues          = 3
)

var boosterDecay = [lookback]float64{1, 0.95, 0.9}

// Words whose polarity is meaningless in these roles ("looks like rain").
var neutralTags = map[string]bool{
	models.PosDeterminer:  true,
	models.PosPreposition: true,
	models.PosConjunction: true,
	models.PosPronoun:     true,
}

type Config struct {
	EmotionThreshold float64
	RecencyWeight    float64
	VaderFallback    bool
}

func DefaultConfig() Config {
	return Config{EmotionThreshold: 0.5, RecencyWeight: 0.5, VaderFallback: true}
}

type slangPhrase struct {
	words []string
	entry lexicon.SlangEntry
}

type Analyzer struct {
	cfg          Config
	polarity     map[string]float64
	stemPolarity map[string]float64
	boosters     map[string]float64
	negators     map[string]bool
	slang        []slangPhrase
	emoji        map[string]lexicon.EmojiEntry
	fallback     Fallback
}

type Option func(*Analyzer)

// WithFallback replaces the valence source used for unknown words. A nil
// fallback leaves unknown words neutral.
func WithFallback(f Fallback) Option {
	return func(a *Analyzer) {
		a.fallback = f
	}
}

func New(lex *lexicon.SentimentLexicon, cfg Config, opts ...Option) *Analyzer {
	a := &Analyzer{
		cfg:          cfg,
		polarity:     lex.Polarity,
		stemPolarity: make(map[string]float64, len(lex.Polarity)),
		boosters:     lex.Boosters,
		negators:     make(map[string]bool, len(lex.Negators)),
		emoji:        lex.Emoji,
	}
	if cfg.VaderFallback {
		a.fallback = NewVaderFallback()
	}
	for _, opt := range opts {
		opt(a)
	}

	// first word in sorted order wins a shared stem
	words := make([]string, 0, len(lex.Polarity))
	for w := range lex.Polarity {
		words = append(words, w)
	}
	sort.Strings(words)
	for _, w := range words {
		stem := english.Stem(w, true)
		if _, ok := a.stemPolarity[stem]; !ok {
			a.stemPolarity[stem] = lex.Polarity[w]
		}
	}

	for _, n := range lex.Negators {
		a.negators[n] = true
	}

	for _, entry := range lex.Slang {
		a.slang = append(a.slang, slangPhrase{words: strings.Fields(entry.Phrase), entry: entry})
	}
	sort.SliceStable(a.slang, func(i, j int) bool {
		if len(a.slang[i].words) != len(a.slang[j].words) {
			return len(a.slang[i].words) > len(a.slang[j].words)
		}
		return a.slang[i].entry.Phrase < a.slang[j].entry.Phrase
	})
	return a
}

type cue struct {
	text    string
	valence float64
}

type sentenceScore struct {
	text   string
	score  float64
	scored bool
}

// Analyze scores res. tagged must be aligned with res.Tokens.
func (a *Analyzer) Analyze(res *tokenizer.Result, tagged []tagger.Tagged) models.SentimentResult {
	mixed := mixedCase(tagged)

	var (
		sentences []sentenceScore
		cues      []cue
		slang     = make([]string, 0)
		seenSlang = make(map[string]bool)
		emoji     = make([]string, 0)
		seenEmoji = make(map[string]bool)
	)

	for i, s := range res.Sentences {
		toks := tagged[s.First:s.Last]
		score, scored, sentCues, hits := a.scoreSentence(toks, mixed)
		sentences = append(sentences, sentenceScore{text: res.SentenceText(i), score: score, scored: scored})
		cues = append(cues, sentCues...)

		for _, phrase := range hits {
			if !seenSlang[phrase] {
				seenSlang[phrase] = true
				slang = append(slang, phrase)
			}
		}
		for _, tok := range toks {
			if tok.Kind == tokenizer.Emoji && !seenEmoji[tok.Text] {
				seenEmoji[tok.Text] = true
				emoji = append(emoji, a.describeEmoji(tok.Text))
			}
		}
	}

	score := a.documentScore(sentences)
	label := models.LabelForScore(score)

	emotional := make([]string, 0)
	for _, s := range sentences {
		if s.scored && math.Abs(s.score) > a.cfg.EmotionThreshold {
			emotional = append(emotional, s.text)
		}
	}

	return models.SentimentResult{
		Score:              score,
		Label:              label,
		Explanation:        explain(label, score, len(sentences), cues, slang, len(emoji)),
		EmotionalSentences: emotional,
		SlangDetected:      slang,
		EmojiSentiment:     emoji,
	}
}

// documentScore weights later sentences more heavily, then clamps and
// rounds to four decimals.
func (a *Analyzer) documentScore(sentences []sentenceScore) float64 {
	var scored []float64
	for _, s := range sentences {
		if s.scored {
			scored = append(scored, s.score)
		}
	}
	if len(scored) == 0 {
		return 0
	}

	var sum, weights float64
	n := len(scored)
	for i, s := range scored {
		w := 1.0
		if n > 1 {
			w += a.cfg.RecencyWeight * float64(i) / float64(n-1)
		}
		sum += w * s
		weights += w
	}
	score := sum / weights
	if math.IsNaN(score) {
		return 0
	}
	score = math.Max(-1, math.Min(1, score))
	return math.Round(score*1e4) / 1e4
}

// scoreSentence returns the normalized sentence score, whether the sentence
// had any word or emoji, the polar cues and the slang phrases matched.
func (a *Analyzer) scoreSentence(toks []tagger.Tagged, mixed bool) (float64, bool, []cue, []string) {
	type unit struct {
		index int
		cue
	}

	var (
		units    []unit
		hits     []string
		consumed = make([]bool, len(toks))
		butAt    = -1
		exclaims int
		scored   bool
	)

	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch tok.Kind {
		case tokenizer.Punctuation:
			exclaims += strings.Count(tok.Text, "!")
			continue
		case tokenizer.Emoji:
			scored = true
			if entry, ok := a.lookupEmoji(tok.Text); ok && entry.Polarity != 0 {
				units = append(units, unit{i, cue{tok.Text, entry.Polarity * emojiScale}})
			}
			continue
		case tokenizer.Word:
			scored = true
		default:
			continue
		}
		if consumed[i] {
			continue
		}

		if phrase, n, ok := a.matchSlang(toks, i); ok {
			for k := i; k < i+n; k++ {
				consumed[k] = true
			}
			hits = append(hits, phrase.entry.Phrase)
			if phrase.entry.Polarity != 0 {
				v := a.adjust(toks, consumed, i, phrase.entry.Polarity, mixed)
				units = append(units, unit{i, cue{phrase.entry.Phrase, v}})
			}
			continue
		}

		if tok.Key == "but" {
			if butAt < 0 {
				butAt = i
			}
			continue
		}
		if a.isNegator(tok.Key) || a.isBooster(toks, i) || neutralTags[tok.Tag] || isHedge(toks, i) {
			continue
		}
		if v := a.valence(tok.Key); v != 0 {
			units = append(units, unit{i, cue{tok.Text, a.adjust(toks, consumed, i, v, mixed)}})
		}
	}

	var sum float64
	cues := make([]cue, 0, len(units))
	for _, u := range units {
		if butAt >= 0 {
			if u.index < butAt {
				u.valence *= beforeBut
			} else {
				u.valence *= afterBut
			}
		}
		sum += u.valence
		cues = append(cues, u.cue)
	}
	if sum != 0 {
		sum += math.Copysign(float64(min(exclaims, maxExclaims))*exclaimIncrement, sum)
	}
	return normalize(sum), scored, cues, hits
}

// adjust applies boosters, caps emphasis and negation from the words before
// toks[i]. Lookback stops at punctuation.
func (a *Analyzer) adjust(toks []tagger.Tagged, consumed []bool, i int, v float64, mixed bool) float64 {
	prev := previousWords(toks, i)

	for d, j := range prev {
		b, ok := a.boosterValue(toks, j)
		if !ok {
			continue
		}
		scalar := b * boosterDecay[d]
		if mixed && isShouting(toks[j].Text) {
			scalar += math.Copysign(capsIncrement, b)
		}
		if v < 0 {
			scalar = -scalar
		}
		v += scalar
	}

	if mixed && isShouting(toks[i].Text) {
		v += math.Copysign(capsIncrement, v)
	}

	for _, j := range prev {
		if !consumed[j] && a.isNegator(toks[j].Key) {
			v *= negationScalar
			break
		}
	}
	return v
}

// previousWords returns the indexes of up to three word tokens before i,
// nearest first.
func previousWords(toks []tagger.Tagged, i int) []int {
	out := make([]int, 0, lookback)
	for j := i - 1; j >= 0 && len(out) < lookback; j-- {
		switch toks[j].Kind {
		case tokenizer.Punctuation:
			return out
		case tokenizer.Word:
			out = append(out, j)
		}
	}
	return out
}

func (a *Analyzer) matchSlang(toks []tagger.Tagged, i int) (slangPhrase, int, bool) {
	for _, phrase := range a.slang {
		n := len(phrase.words)
		if i+n > len(toks) {
			continue
		}
		matched := true
		for k, w := range phrase.words {
			if toks[i+k].Kind != tokenizer.Word || toks[i+k].Key != w {
				matched = false
				break
			}
		}
		if matched {
			return phrase, n, true
		}
	}
	return slangPhrase{}, 0, false
}

func (a *Analyzer) valence(key string) float64 {
	if v, ok := a.polarity[key]; ok {
		return v
	}
	if v, ok := a.stemPolarity[english.Stem(key, true)]; ok {
		return v
	}
	if a.fallback != nil {
		return a.fallback.Valence(key)
	}
	return 0
}

func (a *Analyzer) isNegator(key string) bool {
	return a.negators[key] || strings.HasSuffix(key, "n't")
}

func (a *Analyzer) isBooster(toks []tagger.Tagged, i int) bool {
	_, ok := a.boosterValue(toks, i)
	return ok
}

// boosterValue treats "of" in "kind of" and "sort of" as a dampener.
func (a *Analyzer) boosterValue(toks []tagger.Tagged, j int) (float64, bool) {
	key := toks[j].Key
	if b, ok := a.boosters[key]; ok {
		return b, true
	}
	if key == "of" && j > 0 && (toks[j-1].Key == "kind" || toks[j-1].Key == "sort") {
		return -boosterIncrement, true
	}
	return 0, false
}

func isHedge(toks []tagger.Tagged, i int) bool {
	key := toks[i].Key
	return (key == "kind" || key == "sort") && i+1 < len(toks) && toks[i+1].Key == "of"
}

func (a *Analyzer) lookupEmoji(text string) (lexicon.EmojiEntry, bool) {
	if entry, ok := a.emoji[text]; ok {
		return entry, true
	}
	base := strings.Map(func(r rune) rune {
		if r == '\ufe0f' || r == '\ufe0e' || (r >= 0x1F3FB && r <= 0x1F3FF) {
			return -1
		}
		return r
	}, text)
	entry, ok := a.emoji[base]
	return entry, ok
}

func (a *Analyzer) describeEmoji(text string) string {
	entry, ok := a.lookupEmoji(text)
	if !ok {
		return fmt.Sprintf("%s (unrecognized emoji): neutral (+0.00)", text)
	}
	polarity := "neutral"
	switch {
	case entry.Polarity > 0:
		polarity = "positive"
	case entry.Polarity < 0:
		polarity = "negative"
	}
	return fmt.Sprintf("%s (%s): %s (%+.2f)", text, entry.Description, polarity, entry.Polarity)
}

// mixedCase reports whether the text has both all-caps and ordinary words.
// Caps emphasis only counts when it stands out.
func mixedCase(tagged []tagger.Tagged) bool {
	var shouting, normal bool
	for _, tok := range tagged {
		if tok.Kind != tokenizer.Word {
			continue
		}
		if isShouting(tok.Text) {
			shouting = true
		} else {
			normal = true
		}
	}
	return shouting && normal
}

func isShouting(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 2
}
