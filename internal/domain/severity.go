package domain

import (
	"regexp"
	"strings"
)

// Severity is the canonical color-coded incident severity.
type Severity string

const (
	SeverityRed    Severity = "red"
	SeverityYellow Severity = "yellow"
	SeverityGreen  Severity = "green"
	SeverityBlue   Severity = "blue"
	SeverityPurple Severity = "purple"

	// SeverityNone means no severity was requested.
	SeverityNone Severity = ""
)

// Severities lists every canonical color.
var Severities = []Severity{SeverityRed, SeverityYellow, SeverityGreen, SeverityBlue, SeverityPurple}

// logicalSeverities maps the logical vocabulary used by field reporters onto colors.
var logicalSeverities = map[string]Severity{
	"grave":          SeverityRed,
	"medio":          SeverityYellow,
	"leve":           SeverityGreen,
	"transito_menor": SeverityBlue,
	"muy_grande":     SeverityPurple,
}

// severityLabels are the human-readable Spanish labels used in replies.
var severityLabels = map[Severity]string{
	SeverityRed:    "grave",
	SeverityYellow: "medio",
	SeverityGreen:  "leve",
	SeverityBlue:   "tránsito menor",
	SeverityPurple: "muy grande",
}

// NormalizeSeverity maps a color or logical label onto a canonical color.
// Input is trimmed and case-insensitive. Anything unrecognized, including the
// empty string, becomes yellow; callers cannot tell that apart from an
// explicit yellow.
func NormalizeSeverity(value string) Severity {
	v := strings.ToLower(strings.TrimSpace(value))
	if s := Severity(v); s.Valid() {
		return s
	}
	if s, ok := logicalSeverities[v]; ok {
		return s
	}
	return SeverityYellow
}

// Valid reports whether s is one of the canonical colors.
func (s Severity) Valid() bool {
	switch s {
	case SeverityRed, SeverityYellow, SeverityGreen, SeverityBlue, SeverityPurple:
		return true
	default:
		return false
	}
}

// Label returns the reply label for s, or "" when s is not a canonical color.
func (s Severity) Label() string {
	return severityLabels[s]
}

// LogicalLabel returns the logical vocabulary entry that maps onto s.
func (s Severity) LogicalLabel() string {
	for logical, color := range logicalSeverities {
		if color == s {
			return logical
		}
	}
	return ""
}

// severityKeywords is checked in order: purple before red, red before yellow,
// and so on, since one utterance can hit several.
var severityKeywords = []struct {
	re       *regexp.Regexp
	severity Severity
}{
	{regexp.MustCompile(`muy grande|morado|morada`), SeverityPurple},
	{regexp.MustCompile(`grave|severa|alto`), SeverityRed},
	{regexp.MustCompile(`medio|media|amarill`), SeverityYellow},
	{regexp.MustCompile(`leve|verde`), SeverityGreen},
	{regexp.MustCompile(`transito|azul`), SeverityBlue},
}

// MatchSeverity finds the severity mentioned in normalized text, or SeverityNone.
func MatchSeverity(text string) Severity {
	for _, k := range severityKeywords {
		if k.re.MatchString(text) {
			return k.severity
		}
	}
	return SeverityNone
}
