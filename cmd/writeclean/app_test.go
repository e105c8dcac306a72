package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spacesedan/writeclean/internal/apperrors"
	"github.com/spacesedan/writeclean/internal/lexicon"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp(UI{In: strings.NewReader(stdin), Out: &out, Err: &errOut})
	err := app.Run(append([]string{"writeclean"}, args...))
	return out.String(), err
}

func decodeResult(t *testing.T, out string) models.AnalysisResult {
	t.Helper()
	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func TestAnalyzeCommand(t *testing.T) {
	t.Run("argument", func(t *testing.T) {
		out, err := run(t, "", "analyze", "That movie was totally mid, no cap.")
		require.NoError(t, err)

		result := decodeResult(t, out)
		assert.Contains(t, result.Sentiment.SlangDetected, "no cap")
		assert.Equal(t, "That movie was totally mid, no cap.", result.RawText)
	})

	t.Run("words joined", func(t *testing.T) {
		out, err := run(t, "", "analyze", "Hello", "world")
		require.NoError(t, err)
		assert.Equal(t, "Hello world", decodeResult(t, out).RawText)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := run(t, "I love this movie!", "analyze")
		require.NoError(t, err)
		assert.Equal(t, models.LabelVeryGood, decodeResult(t, out).Sentiment.Label)
	})

	t.Run("file and markdown", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "review.md")
		require.NoError(t, os.WriteFile(path, []byte("# Verdict\n\nThis is **great**."), 0o644))

		out, err := run(t, "", "analyze", "--markdown", "--file", path)
		require.NoError(t, err)
		assert.Equal(t, "Verdict. This is great.", decodeResult(t, out).RawText)
	})

	t.Run("pretty", func(t *testing.T) {
		out, err := run(t, "", "analyze", "--pretty", "Hello")
		require.NoError(t, err)
		assert.Contains(t, out, "\n  \"tokens\": [")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := run(t, "   ", "analyze")
		assert.True(t, apperrors.IsEmptyInput(err), "%v", err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "", "analyze", "--file", filepath.Join(t.TempDir(), "nope.txt"))
		assert.Error(t, err)
	})
}

func TestLexiconCommand(t *testing.T) {
	out, err := run(t, "", "lexicon")
	require.NoError(t, err)

	var stats lexicon.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, "embedded", stats.Source)
	assert.Positive(t, stats.Polarity)
	assert.Positive(t, stats.Slang)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "writeclean version dev (commit: none)\n", out)
}
