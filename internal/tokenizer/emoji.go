package tokenizer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/rangetable"
)

const (
	zeroWidthJoiner     = '\u200d'
	variationSelector15 = '\ufe0e'
	variationSelector16 = '\ufe0f'
	combiningKeycap     = '\u20e3'
)

var pictographs = rangetable.Merge(
	&unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x203c, Hi: 0x203c, Stride: 1},
			{Lo: 0x2049, Hi: 0x2049, Stride: 1},
			{Lo: 0x231a, Hi: 0x231b, Stride: 1},
			{Lo: 0x2328, Hi: 0x2328, Stride: 1},
			{Lo: 0x23e9, Hi: 0x23fa, Stride: 1},
			{Lo: 0x24c2, Hi: 0x24c2, Stride: 1},
			{Lo: 0x25aa, Hi: 0x25ab, Stride: 1},
			{Lo: 0x25b6, Hi: 0x25b6, Stride: 1},
			{Lo: 0x25c0, Hi: 0x25c0, Stride: 1},
			{Lo: 0x25fb, Hi: 0x25fe, Stride: 1},
			{Lo: 0x2600, Hi: 0x27bf, Stride: 1},
			{Lo: 0x2934, Hi: 0x2935, Stride: 1},
			{Lo: 0x2b05, Hi: 0x2b07, Stride: 1},
			{Lo: 0x2b1b, Hi: 0x2b1c, Stride: 1},
			{Lo: 0x2b50, Hi: 0x2b50, Stride: 1},
			{Lo: 0x2b55, Hi: 0x2b55, Stride: 1},
			{Lo: 0x3030, Hi: 0x3030, Stride: 1},
			{Lo: 0x303d, Hi: 0x303d, Stride: 1},
			{Lo: 0x3297, Hi: 0x3297, Stride: 1},
			{Lo: 0x3299, Hi: 0x3299, Stride: 1},
		},
	},
	&unicode.RangeTable{
		R32: []unicode.Range32{
			{Lo: 0x1f000, Hi: 0x1f1e5, Stride: 1},
			{Lo: 0x1f200, Hi: 0x1f2ff, Stride: 1},
			{Lo: 0x1f300, Hi: 0x1f3fa, Stride: 1},
			{Lo: 0x1f400, Hi: 0x1faff, Stride: 1},
		},
	},
)

// Emoji modifiers and regional indicators are kept out of the pictograph
// table so they only ever extend a cluster.
func isSkinTone(r rune) bool {
	return r >= 0x1f3fb && r <= 0x1f3ff
}

func isRegionalIndicator(r rune) bool {
	return r >= 0x1f1e6 && r <= 0x1f1ff
}

func isTagRune(r rune) bool {
	return r >= 0xe0020 && r <= 0xe007f
}

func isPictograph(r rune) bool {
	return unicode.Is(pictographs, r)
}

func isKeycapBase(r rune) bool {
	return (r >= '0' && r <= '9') || r == '#' || r == '*'
}

// IsEmoji reports whether s starts with an emoji pictograph or flag.
func IsEmoji(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isPictograph(r) || isRegionalIndicator(r) || isSkinTone(r)
}

// scanEmoji returns the byte length of the emoji cluster starting at text[0],
// or 0 when text does not start with one.
func scanEmoji(text string) int {
	var runes []rune
	var sizes []int
	// no real cluster exceeds this many code points
	for i := 0; i < len(text) && len(runes) < 32; {
		r, size := utf8.DecodeRuneInString(text[i:])
		runes = append(runes, r)
		sizes = append(sizes, size)
		i += size
	}
	if len(runes) == 0 {
		return 0
	}

	n := 0
	first := runes[0]
	switch {
	case isRegionalIndicator(first):
		n = 1
		if len(runes) > 1 && isRegionalIndicator(runes[1]) {
			n = 2
		}
		return byteLen(sizes, n)
	case isKeycapBase(first):
		if len(runes) > 2 && runes[1] == variationSelector16 && runes[2] == combiningKeycap {
			return byteLen(sizes, 3)
		}
		if len(runes) > 1 && runes[1] == combiningKeycap {
			return byteLen(sizes, 2)
		}
		return 0
	case isPictograph(first), isSkinTone(first):
		n = 1
	default:
		return 0
	}

	for n < len(runes) {
		r := runes[n]
		switch {
		case r == variationSelector16, r == variationSelector15, isSkinTone(r), isTagRune(r), r == combiningKeycap:
			n++
		case r == zeroWidthJoiner && n+1 < len(runes) && (isPictograph(runes[n+1]) || isSkinTone(runes[n+1])):
			n += 2
		default:
			return byteLen(sizes, n)
		}
	}
	return byteLen(sizes, n)
}

func byteLen(sizes []int, n int) int {
	total := 0
	for _, s := range sizes[:n] {
		total += s
	}
	return total
}
