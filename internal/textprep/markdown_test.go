package textprep

import (
	"testing"

	"github.com/spacesedan/writeclean/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveLinks(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"markdown link", "read [the docs](https://example.com/docs) first", "read the docs first"},
		{"bare url", "see https://example.com/a?b=c now", "see  now"},
		{"www url", "visit www.example.com", "visit "},
		{"no links", "nothing to strip", "nothing to strip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveLinks(tt.input))
		})
	}
}

func TestConvertMarkdownToText(t *testing.T) {
	input := "# Great news\n\n" +
		"I *love* this [library](https://example.com)!\n\n" +
		"- first item\n" +
		"- second item.\n\n" +
		"```\ncode here\n```\n\n" +
		"Visit https://example.com today\n"

	assert.Equal(t,
		"Great news. I love this library! first item. second item. Visit today",
		ConvertMarkdownToText(input))
}

func TestConvertMarkdownDropsImages(t *testing.T) {
	assert.Equal(t, "Look at this", ConvertMarkdownToText("Look at this ![a cat](https://example.com/cat.png)"))
}

func TestPrepare(t *testing.T) {
	plain := "  **not** markdown  "
	got, err := Prepare(plain, models.InputFormatPlain)
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	got, err = Prepare(plain, "")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	got, err = Prepare(plain, models.InputFormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "not markdown", got)

	_, err = Prepare(plain, "html")
	assert.Error(t, err)
}
