package tagger

import (
	"testing"

	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*tokenizer.Tokenizer, *Tagger) {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)
	return tokenizer.New(lex.Words.Abbreviations, lex.Words.LeadingContractions), New(lex.Words)
}

func tagText(t *testing.T, text string) []Tagged {
	t.Helper()
	tok, tagger := setup(t)
	res, err := tok.Tokenize(text)
	require.NoError(t, err)
	return tagger.Tag(res.Tokens)
}

func tagsOf(tagged []Tagged) map[string]string {
	out := make(map[string]string, len(tagged))
	for _, tok := range tagged {
		out[tok.Text] = tok.Tag
	}
	return out
}

func TestTagPangram(t *testing.T) {
	tagged := tagText(t, "The quick brown fox jumps over the lazy dog")
	require.Len(t, tagged, 9)

	want := []string{
		models.PosDeterminer,
		models.PosAdjective,
		models.PosAdjective,
		models.PosNoun,
		models.PosVerb,
		models.PosPreposition,
		models.PosDeterminer,
		models.PosAdjective,
		models.PosNoun,
	}
	for i, tok := range tagged {
		assert.Equal(t, want[i], tok.Tag, tok.Text)
	}
	assert.True(t, tagged[0].IsStopWord)
	assert.True(t, tagged[6].IsStopWord)
	assert.False(t, tagged[3].IsStopWord)
}

func TestTagSlangSentence(t *testing.T) {
	tagged := tagText(t, "That movie was totally mid, no cap.")
	tags := tagsOf(tagged)

	assert.Equal(t, models.PosDeterminer, tags["That"])
	assert.Equal(t, models.PosNoun, tags["movie"])
	assert.Equal(t, models.PosVerb, tags["was"])
	assert.Equal(t, models.PosAdverb, tags["totally"])
	assert.Equal(t, models.PosAdjective, tags["mid"])
	assert.Equal(t, models.PosPunctuation, tags[","])
	assert.Equal(t, models.PosPunctuation, tags["."])

	for _, tok := range tagged {
		if tok.Text == "mid" || tok.Text == "cap" {
			assert.False(t, tok.IsStopWord, tok.Text)
		}
	}
}

func TestTagNonWords(t *testing.T) {
	tags := tagsOf(tagText(t, "I paid 20 bucks 😂 !"))
	assert.Equal(t, models.PosOther, tags["20"])
	assert.Equal(t, models.PosOther, tags["😂"])
	assert.Equal(t, models.PosPunctuation, tags["!"])
	assert.Equal(t, models.PosPronoun, tags["I"])
}

func TestTagBaselineSources(t *testing.T) {
	tests := []struct {
		text string
		word string
		tag  string
	}{
		{"she jumped", "jumped", models.PosVerb},
		{"the dogs barked", "dogs", models.PosNoun},
		{"a happier day", "happier", models.PosAdjective},
		{"the happiness", "happiness", models.PosNoun},
		{"very quickly", "quickly", models.PosAdverb},
		{"a dangerous plan", "dangerous", models.PosAdjective},
		{"we met Alice today", "Alice", models.PosNoun},
		{"hello there", "hello", models.PosInterjection},
		{"the fox's den", "fox's", models.PosNoun},
		{"that is sooo good", "sooo", models.PosAdverb},
		{"this is coooool", "coooool", models.PosAdjective},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			tags := tagsOf(tagText(t, tt.text))
			assert.Equal(t, tt.tag, tags[tt.word])
		})
	}
}

func TestTagContextRules(t *testing.T) {
	tests := []struct {
		name string
		text string
		word string
		tag  string
	}{
		{"determiner before verb", "that was a good run", "run", models.PosNoun},
		{"modal before noun", "we will work later", "work", models.PosVerb},
		{"infinitive of unknown word", "I want to yeet it", "yeet", models.PosVerb},
		{"pronoun before like", "I like pizza", "like", models.PosVerb},
		{"like stays a preposition", "it looks like rain", "like", models.PosPreposition},
		{"pronoun before unknown inflected word", "she yeets it", "yeets", models.PosVerb},
		{"copula before unknown word", "the knife was sharp", "sharp", models.PosAdjective},
		{"negated copula before unknown word", "it isn't sharp", "sharp", models.PosAdjective},
		{"copula keeps known noun", "that is dog food", "dog", models.PosNoun},
		{"copula keeps suffix noun", "it was happiness", "happiness", models.PosNoun},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags := tagsOf(tagText(t, tt.text))
			assert.Equal(t, tt.tag, tags[tt.word])
		})
	}
}

func TestIsStopWord(t *testing.T) {
	_, tagger := setup(t)

	tests := []struct {
		word string
		want bool
	}{
		{"the", true},
		{"THE", true},
		{"and", true},
		{"also", true},
		{"don't", true},
		{"don’t", true},
		{"mid", false},
		{"not", false},
		{"no", false},
		{"fox", false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, tagger.IsStopWord(tt.word))
		})
	}
}

func TestTagIsDeterministic(t *testing.T) {
	text := "Honestly the vibes were off but the food hit different."
	first := tagText(t, text)
	second := tagText(t, text)
	assert.Equal(t, first, second)
}

func TestKnown(t *testing.T) {
	_, tagger := setup(t)
	assert.True(t, tagger.Known("Movie"))
	assert.True(t, tagger.Known("the"))
	assert.False(t, tagger.Known("movies"))
	assert.False(t, tagger.Known("flibbertigibbet"))
}
