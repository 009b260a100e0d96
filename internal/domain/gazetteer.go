package domain

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// GazetteerCutoff is the minimum similarity (0–100) for a fragment to be
// replaced by a gazetteer entry.
const GazetteerCutoff = 86.0

var defaultPlaces = []string{
	"Managua", "León", "Santa Teresa, Carazo", "Masaya", "Granada",
	"Chinandega", "Estelí", "Matagalpa", "Jinotepe", "Tipitapa", "Masatepe",
}

// Gazetteer is an immutable ordered list of canonical place names.
// Order only breaks ties: the earlier entry wins.
type Gazetteer struct {
	entries []gazetteerEntry
	metric  strutil.StringMetric
}

type gazetteerEntry struct {
	name   string
	folded string
}

// NewGazetteer copies names into a Gazetteer. Blank names are skipped.
func NewGazetteer(names []string) Gazetteer {
	entries := make([]gazetteerEntry, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		entries = append(entries, gazetteerEntry{name: n, folded: Normalize(n)})
	}
	return Gazetteer{entries: entries, metric: metrics.NewJaro()}
}

// DefaultGazetteer returns the built-in list of Nicaraguan municipalities and
// departments.
func DefaultGazetteer() Gazetteer {
	return NewGazetteer(defaultPlaces)
}

// Names returns the canonical names in order.
func (g Gazetteer) Names() []string {
	names := make([]string, len(g.entries))
	for i, e := range g.entries {
		names[i] = e.name
	}
	return names
}

// Len reports the number of entries.
func (g Gazetteer) Len() int { return len(g.entries) }

// Best returns the highest scoring entry for an already-cleaned fragment and
// its score on a 0–100 scale. ok is false for an empty gazetteer or fragment.
func (g Gazetteer) Best(fragment string) (name string, score float64, ok bool) {
	folded := Normalize(fragment)
	if folded == "" || len(g.entries) == 0 {
		return "", 0, false
	}
	for _, e := range g.entries {
		s := strutil.Similarity(folded, e.folded, g.metric) * 100
		if !ok || s > score {
			name, score, ok = e.name, s, true
		}
	}
	return name, score, ok
}

// Correct cleans fragment and replaces it with the best gazetteer entry when
// that entry scores at least GazetteerCutoff. Otherwise the cleaned fragment
// is returned as is.
func (g Gazetteer) Correct(fragment string) string {
	cleaned := CleanPlace(fragment)
	if name, score, ok := g.Best(cleaned); ok && score >= GazetteerCutoff {
		return name
	}
	return cleaned
}

var imperativePrefix = regexp.MustCompile(`(?i)^(?:ir a|ll[eé]vame a|llevar|vamos a|ub[ií]came en)\s+`)

// CleanPlace strips leading imperative phrases, drops characters outside
// letters, digits, space, comma, period and hyphen, collapses whitespace, and
// trims trailing punctuation.
func CleanPlace(fragment string) string {
	s := imperativePrefix.ReplaceAllString(strings.TrimSpace(fragment), "")
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case r == ',', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, " ,.-")
}
