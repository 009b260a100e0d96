package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes, drops combining marks, and recomposes what is left.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds text for matching: diacritics stripped, lowercased, and
// surrounding whitespace trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	return Fold(s).Text
}

// Folded is the normalized form of an utterance that remembers where each
// normalized byte came from, so captured slots can be read back with their
// original accents (lowercased).
type Folded struct {
	Text string

	source  string
	offsets []int // len(Text)+1 entries into source
}

// Fold normalizes s rune by rune, keeping an offset map into the lowercased
// original.
func Fold(s string) Folded {
	lower := strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(lower))
	offsets := make([]int, 0, len(lower)+1)

	for i, r := range lower {
		folded := foldRune(r)
		for range len(folded) {
			offsets = append(offsets, i)
		}
		b.WriteString(folded)
	}
	offsets = append(offsets, len(lower))

	full := b.String()
	start := len(full) - len(strings.TrimLeftFunc(full, unicode.IsSpace))
	end := len(strings.TrimRightFunc(full, unicode.IsSpace))
	if end < start {
		end = start
	}

	return Folded{
		Text:    full[start:end],
		source:  lower,
		offsets: offsets[start : end+1],
	}
}

// Source returns the lowercased original text behind Text[from:to], trimmed.
// Out-of-range bounds are clamped.
func (f Folded) Source(from, to int) string {
	if len(f.offsets) == 0 {
		return ""
	}
	from = clamp(from, 0, len(f.offsets)-1)
	to = clamp(to, from, len(f.offsets)-1)
	return strings.TrimSpace(f.source[f.offsets[from]:f.offsets[to]])
}

func foldRune(r rune) string {
	if r < utf8.RuneSelf {
		return string(r)
	}
	out, _, err := transform.String(stripMarks, string(r))
	if err != nil {
		return string(r)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
