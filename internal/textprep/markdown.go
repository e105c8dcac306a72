// Package textprep turns request payloads into the plain text the analyzer
// reads.
package textprep

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/russross/blackfriday/v2"
	"github.com/spacesedan/writeclean/internal/models"
	"github.com/spacesedan/writeclean/internal/tokenizer"
)

var (
	linkPattern = regexp.MustCompile(`\[(.*?)\]\((https?:\/\/[^\s\)]+)\)`)
	urlPattern  = regexp.MustCompile(`https?://\S+|www\.\S+`)
)

// Prepare returns the text to analyze for the given format. An empty format
// means plain text.
func Prepare(text, format string) (string, error) {
	switch format {
	case "", models.InputFormatPlain:
		return text, nil
	case models.InputFormatMarkdown:
		return ConvertMarkdownToText(text), nil
	default:
		return "", fmt.Errorf("[TextPrep] unknown input format %q", format)
	}
}

// RemoveLinks keeps the text of markdown links and drops bare URLs.
func RemoveLinks(input string) string {
	input = linkPattern.ReplaceAllString(input, "$1")
	return urlPattern.ReplaceAllString(input, "")
}

// ConvertMarkdownToText renders markdown as prose. Headings and list items
// become sentences of their own, code blocks and images are dropped.
func ConvertMarkdownToText(input string) string {
	md := blackfriday.New(blackfriday.WithExtensions(blackfriday.CommonExtensions))
	root := md.Parse([]byte(input))

	var (
		blocks []string
		cur    strings.Builder
		stop   bool
	)
	flush := func() {
		text := strings.Join(strings.Fields(cur.String()), " ")
		cur.Reset()
		if text == "" {
			return
		}
		if stop && !endsSentence(text) {
			text += "."
		}
		blocks = append(blocks, text)
	}

	root.Walk(func(node *blackfriday.Node, entering bool) blackfriday.WalkStatus {
		switch node.Type {
		case blackfriday.CodeBlock, blackfriday.Image, blackfriday.HTMLBlock, blackfriday.HTMLSpan:
			return blackfriday.SkipChildren

		case blackfriday.Paragraph, blackfriday.Heading, blackfriday.Item:
			flush()
			if entering {
				stop = node.Type != blackfriday.Paragraph || (node.Parent != nil && node.Parent.Type == blackfriday.Item)
			}

		case blackfriday.TableCell:
			if !entering {
				cur.WriteByte(' ')
			}

		case blackfriday.TableRow:
			if !entering {
				stop = true
				flush()
			}

		case blackfriday.Text, blackfriday.Code:
			cur.Write(node.Literal)

		case blackfriday.Softbreak, blackfriday.Hardbreak:
			cur.WriteByte(' ')
		}
		return blackfriday.GoToNext
	})
	flush()

	plain := RemoveLinks(strings.Join(blocks, " "))
	return strings.Join(strings.Fields(plain), " ")
}

func endsSentence(text string) bool {
	trimmed := strings.TrimRightFunc(text, func(r rune) bool {
		return tokenizer.IsCloser(string(r))
	})
	r, _ := utf8.DecodeLastRuneInString(trimmed)
	return tokenizer.IsTerminal(string(r))
}
