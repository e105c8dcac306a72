package rewrite

import (
	"testing"

	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tagger"
	"github.com/spacesedan/writeclean/internal/tokenizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRewriter(t *testing.T) func(string) models.Improvement {
	t.Helper()
	lex, err := lexicon.Default()
	require.NoError(t, err)

	tok := tokenizer.New(lex.Words.Abbreviations, lex.Words.LeadingContractions)
	g := New(lex.Sentiment, lex.Rewrite, WithVocabulary(tagger.New(lex.Words).Known))

	return func(text string) models.Improvement {
		res, err := tok.Tokenize(text)
		require.NoError(t, err)
		return g.Rewrite(text, res)
	}
}

func TestRewrite(t *testing.T) {
	rewrite := newTestRewriter(t)

	tests := []struct {
		name     string
		input    string
		improved string
		changes  []string
	}{
		{
			name:     "slang phrases",
			input:    "That movie was totally mid, no cap.",
			improved: "That movie was totally mediocre, honestly.",
			changes:  []string{`Replaced "mid" with "mediocre"`, `Replaced "no cap" with "honestly"`},
		},
		{
			name:     "elongation and removals",
			input:    "ngl this is sooo good lol 😂😂",
			improved: "Honestly this is so good.",
			changes: []string{
				`Replaced "ngl" with "honestly"`,
				`Replaced "sooo" with "so"`,
				`Removed "lol"`,
				`Removed "😂"`,
			},
		},
		{
			name:     "informal contraction and pronoun",
			input:    "i'm gonna be late!!!",
			improved: "I'm going to be late!",
			changes:  []string{`Replaced "gonna" with "going to"`, `Replaced "!!!" with "!"`},
		},
		{
			name:     "all caps sentence",
			input:    "THIS IS SO BAD",
			improved: "This is so bad.",
			changes:  []string{capsChange},
		},
		{
			name:     "dangling comma after removal",
			input:    "lol, this sucks.",
			improved: "This is disappointing.",
			changes:  []string{`Removed "lol"`, `Replaced "sucks" with "is disappointing"`},
		},
		{
			name:     "mixed terminal run",
			input:    "what?!?! no way...",
			improved: "What? No way...",
			changes:  []string{`Replaced "?!?!" with "?"`},
		},
		{
			name:     "multi-word toxic phrase",
			input:    "Shut up and listen",
			improved: "Be quiet and listen.",
			changes:  []string{`Replaced "Shut up" with "be quiet"`},
		},
		{
			name:     "doubled spelling kept when known",
			input:    "That was coooool.",
			improved: "That was cool.",
			changes:  []string{`Replaced "coooool" with "cool"`},
		},
		{
			name:     "acronym ends the text",
			input:    "I live in the U.S.",
			improved: "I live in the U.S.",
			changes:  []string{},
		},
		{
			name:     "abbreviation ends the text",
			input:    "Bring snacks, drinks, etc.",
			improved: "Bring snacks, drinks, etc.",
			changes:  []string{},
		},
		{
			name:     "emptied quote dropped",
			input:    `he said "lol."`,
			improved: "He said.",
			changes:  []string{`Removed "lol"`},
		},
		{
			name:     "emptied brackets dropped",
			input:    "she was (lol) fine",
			improved: "She was fine.",
			changes:  []string{`Removed "lol"`},
		},
		{
			name:     "emptied sentence dropped",
			input:    "Great. lol.",
			improved: "Great.",
			changes:  []string{`Removed "lol"`},
		},
		{
			name:     "article before consonant replacement",
			input:    "you're an idiot lol!",
			improved: "You're a person!",
			changes:  []string{`Replaced "idiot" with "person"`, `Removed "lol"`},
		},
		{
			name:     "article before vowel replacement",
			input:    "What a dumb idea",
			improved: "What an unwise idea.",
			changes:  []string{`Replaced "dumb" with "unwise"`},
		},
		{
			name:     "whitespace normalized",
			input:    "  hello   world  ",
			improved: "Hello world.",
			changes:  []string{},
		},
		{
			name:     "clean text untouched",
			input:    "The quick brown fox jumps over the lazy dog.",
			improved: "The quick brown fox jumps over the lazy dog.",
			changes:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rewrite(tt.input)
			assert.Equal(t, tt.input, got.Original)
			assert.Equal(t, tt.improved, got.Improved)
			assert.Equal(t, tt.changes, got.Changes)
		})
	}
}

func TestRewriteNeverEmpty(t *testing.T) {
	rewrite := newTestRewriter(t)

	for _, input := range []string{"lol 😂", "😂😂😂", "bruh", "!!!", "lol\n\nlmao"} {
		got := rewrite(input)
		assert.NotEmpty(t, got.Improved, input)
		assert.Equal(t, input, got.Original)
	}

	got := rewrite("lol 😂")
	assert.Equal(t, "lol 😂", got.Improved)
	assert.Empty(t, got.Changes)
}

func TestAgreeArticle(t *testing.T) {
	tests := []struct {
		word, next, want string
	}{
		{"an", "person", "a"},
		{"a", "unwise", "an"},
		{"A", "old", "An"},
		{"An", "poor", "A"},
		{"the", "old", "the"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, agreeArticle(tt.word, tt.next), "%s %s", tt.word, tt.next)
	}
}

func TestCollapsePunctuation(t *testing.T) {
	tests := map[string]string{
		"!":     "!",
		"!!!":   "!",
		"??":    "?",
		"?!":    "?",
		"!?!":   "?",
		"..":    ".",
		"...":   "...",
		".....": "...",
		",,":    ",",
		"--":    "--",
	}
	for in, want := range tests {
		assert.Equal(t, want, collapsePunctuation(in), in)
	}
}
