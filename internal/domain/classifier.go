package domain

import "regexp"

// Rule is one entry of the classifier's decision list. Match receives the
// folded utterance and reports whether the rule fires, with its slots filled.
type Rule struct {
	Name  string
	Match func(f Folded) (Intent, bool)
}

// Classifier evaluates its rules in order; the first rule that fires wins.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier over rules, or over DefaultRules when none
// are given.
func NewClassifier(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify maps raw text to exactly one Intent. Text no rule accepts,
// including the empty string, is IntentUnknown.
func (c *Classifier) Classify(text string) Intent {
	f := Fold(text)
	if f.Text == "" {
		return Intent{Kind: IntentUnknown}
	}
	for _, r := range c.rules {
		if in, ok := r.Match(f); ok {
			in.Rule = r.Name
			return in
		}
	}
	return Intent{Kind: IntentUnknown}
}

// RuleNames returns the rule names in evaluation order.
func (c *Classifier) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.Name
	}
	return names
}

var (
	articleTrigger  = regexp.MustCompile(`articul|noticia|informacion|que es|definicion`)
	articleQuery    = regexp.MustCompile(`(?:sobre|de)\s+(.*)$`)
	incidentTrigger = regexp.MustCompile(`incidencia|insidencia|accidente|evento|alerta`)
	navigateTrigger = regexp.MustCompile(`(?:(?:ir|ve|vamos)\s+a|buscar|donde queda|ubicacion de)\s+(.+)$`)
	placeAfterEn    = regexp.MustCompile(`en\s+(.+)$`)
)

// tipTopics is checked in order. "accidente" also triggers incidents, which
// sit earlier in the rule list.
var tipTopics = []struct {
	topic string
	re    *regexp.Regexp
}{
	{"transito", regexp.MustCompile(`transito|trafico|conducir|accidente`)},
	{"terremoto", regexp.MustCompile(`terremoto|sismo`)},
	{"inundacion", regexp.MustCompile(`inundacion|lluvia|crecida`)},
	{"huracan", regexp.MustCompile(`huracan|tormenta`)},
	{"incendio", regexp.MustCompile(`incendio|fuego`)},
	{"deslizamiento", regexp.MustCompile(`deslizamiento|derrumbe`)},
	{"volcan", regexp.MustCompile(`volcan|erupcion|ceniza`)},
	{"general", regexp.MustCompile(`seguridad|desastres|emergencia|prevencion`)},
}

// DefaultRules returns the production decision list:
// articles, incidents, navigate, tips, then the "en <place>" fallback.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "articles", Match: matchArticles},
		{Name: "incidents", Match: matchIncidents},
		{Name: "navigate", Match: matchNavigate},
		{Name: "tips", Match: matchTips},
		{Name: "navigate_fallback", Match: matchFallbackNavigate},
	}
}

func matchArticles(f Folded) (Intent, bool) {
	if !articleTrigger.MatchString(f.Text) {
		return Intent{}, false
	}
	query := capture(f, articleQuery)
	if query == "" {
		query = f.Source(0, len(f.Text))
	}
	return Intent{Kind: IntentArticles, Query: query}, true
}

func matchIncidents(f Folded) (Intent, bool) {
	if !incidentTrigger.MatchString(f.Text) {
		return Intent{}, false
	}
	return Intent{
		Kind:     IntentIncidents,
		Place:    capture(f, placeAfterEn),
		Severity: MatchSeverity(f.Text),
	}, true
}

func matchNavigate(f Folded) (Intent, bool) {
	loc := navigateTrigger.FindStringSubmatchIndex(f.Text)
	if loc == nil {
		return Intent{}, false
	}
	return Intent{Kind: IntentNavigate, Place: f.Source(loc[2], loc[3])}, true
}

func matchTips(f Folded) (Intent, bool) {
	for _, t := range tipTopics {
		if t.re.MatchString(f.Text) {
			return Intent{Kind: IntentTips, Topic: t.topic}, true
		}
	}
	return Intent{}, false
}

func matchFallbackNavigate(f Folded) (Intent, bool) {
	loc := placeAfterEn.FindStringSubmatchIndex(f.Text)
	if loc == nil {
		return Intent{}, false
	}
	return Intent{Kind: IntentNavigate, Place: f.Source(loc[2], loc[3])}, true
}

// capture returns the first group of re in f, read back from the original
// text, or "" when re does not match.
func capture(f Folded, re *regexp.Regexp) string {
	loc := re.FindStringSubmatchIndex(f.Text)
	if loc == nil || loc[2] < 0 {
		return ""
	}
	return f.Source(loc[2], loc[3])
}
