package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedTables(t *testing.T) {
	lex, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "embedded", lex.Source)
	assert.Contains(t, lex.Words.ClosedClass["determiner"], "the")
	assert.Contains(t, lex.Words.NotStopwords, "mid")
	assert.NotEmpty(t, lex.Words.TagSuffixRules)
	assert.Contains(t, lex.Sentiment.Polarity, "love")
	assert.Contains(t, lex.Sentiment.Emoji, "😍")
	assert.NotEmpty(t, lex.Morphology.StemRules)
	assert.Equal(t, "going to", lex.Rewrite.Informal["gonna"])

	stats := lex.Stats()
	assert.Equal(t, len(lex.Sentiment.Slang), stats.Slang)
	assert.Positive(t, stats.ClosedClass)
	assert.Positive(t, stats.OpenClass)
}

func TestDefaultIsShared(t *testing.T) {
	a, err := Default()
	require.NoError(t, err)
	b, err := Default()
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestSlangPhrasesAreNormalized(t *testing.T) {
	lex, err := Default()
	require.NoError(t, err)

	phrases := map[string]SlangEntry{}
	for _, entry := range lex.Sentiment.Slang {
		phrases[entry.Phrase] = entry
	}
	require.Contains(t, phrases, "no cap")
	assert.Equal(t, "honestly", phrases["no cap"].Replacement)
	require.Contains(t, phrases, "mid")
	assert.Negative(t, phrases["mid"].Polarity)
}

func TestStemRulesNeverLengthen(t *testing.T) {
	lex, err := Default()
	require.NoError(t, err)

	for _, rule := range lex.Morphology.StemRules {
		assert.LessOrEqual(t, len(rule.Replace), len(rule.Suffix), rule.Suffix)
	}
}

func writeDir(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{WordsFile, SentimentFile, MorphologyFile, RewriteFile} {
		data, err := embedded.ReadFile("data/" + name)
		require.NoError(t, err)
		if body, ok := overrides[name]; ok {
			data = []byte(body)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return dir
}

func TestLoadFromDirectory(t *testing.T) {
	dir := writeDir(t, nil)

	lex, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, lex.Source)
	assert.Contains(t, lex.Sentiment.Polarity, "great")
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		file      string
	}{
		{
			name:      "malformed yaml",
			overrides: map[string]string{SentimentFile: "polarity: [unclosed"},
			file:      SentimentFile,
		},
		{
			name:      "lengthening stem rule",
			overrides: map[string]string{MorphologyFile: "stem_rules:\n  - {suffix: \"s\", replace: \"ses\"}\n"},
			file:      MorphologyFile,
		},
		{
			name:      "stem rule lengthening in runes",
			overrides: map[string]string{MorphologyFile: "stem_rules:\n  - {suffix: \"é\", replace: \"ab\"}\n"},
			file:      MorphologyFile,
		},
		{
			name:      "empty stem table",
			overrides: map[string]string{MorphologyFile: "version: \"x\"\n"},
			file:      MorphologyFile,
		},
		{
			name:      "unknown tag",
			overrides: map[string]string{WordsFile: "closed_class:\n  gerund: [\"running\"]\n"},
			file:      WordsFile,
		},
		{
			name:      "emoji polarity out of range",
			overrides: map[string]string{SentimentFile: "emoji:\n  \"😍\": {polarity: 3, description: \"heart eyes\"}\n"},
			file:      SentimentFile,
		},
		{
			name:      "abbreviation without period",
			overrides: map[string]string{WordsFile: "abbreviations: [\"dr\"]\n"},
			file:      WordsFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeDir(t, tt.overrides)

			lex, err := Load(dir)
			require.Error(t, err)
			assert.Nil(t, lex)
			assert.True(t, apperrors.IsLexiconLoadError(err))

			var loadErr *apperrors.LexiconLoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.file, loadErr.Name)
			assert.Equal(t, filepath.Join(dir, tt.file), loadErr.Path)
		})
	}
}

func TestLoadMissingDirectory(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, apperrors.IsLexiconLoadError(err))
}
