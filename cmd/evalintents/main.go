// Command evalintents runs a labelled corpus of utterances through the intent
// classifier, the gazetteer and the severity normalizer and reports which
// expectations hold. It makes no network calls.
//
// Usage:
//
//	go run ./cmd/evalintents -corpus cmd/evalintents/data/utterances.json
//
// Without -corpus the built-in corpus is used.
package main

import (
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
)

//go:embed data/utterances.json
var builtinCorpus []byte

type utterance struct {
	Text      string `json:"text"`
	Intent    string `json:"intent"`
	Place     string `json:"place,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Query     string `json:"query,omitempty"`
	Corrected string `json:"corrected,omitempty"`
}

type severityCase struct {
	Input string `json:"input"`
	Want  string `json:"want"`
}

type corpus struct {
	Utterances []utterance    `json:"utterances"`
	Severities []severityCase `json:"severities"`
}

// phase tracks pass/fail for one evaluation phase.
type phase struct {
	name   string
	checks int
	errors []string
}

func (p *phase) check(ok bool, format string, args ...any) {
	p.checks++
	if !ok {
		p.errors = append(p.errors, fmt.Sprintf(format, args...))
	}
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	corpusPath := flag.String("corpus", "", "path to a JSON corpus of labelled utterances")
	gazetteer := flag.String("gazetteer", "", "comma-separated place names replacing the built-in gazetteer")
	flag.Parse()

	data := builtinCorpus
	if *corpusPath != "" {
		b, err := os.ReadFile(*corpusPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read corpus: %v\n", err)
			os.Exit(1)
		}
		data = b
	}

	g := domain.DefaultGazetteer()
	if *gazetteer != "" {
		g = domain.NewGazetteer(strings.Split(*gazetteer, ","))
	}

	os.Exit(run(os.Stdout, data, domain.NewClassifier(), g))
}

func run(out io.Writer, data []byte, c *domain.Classifier, g domain.Gazetteer) int {
	var cp corpus
	if err := json.Unmarshal(data, &cp); err != nil {
		fmt.Fprintf(out, "FATAL: parse corpus: %v\n", err)
		return 1
	}

	fmt.Fprintln(out, "=== Intent Evaluation ===")
	fmt.Fprintf(out, "Rules: %s\n", strings.Join(c.RuleNames(), " > "))
	fmt.Fprintf(out, "Gazetteer: %d places, cutoff %.0f\n\n", g.Len(), domain.GazetteerCutoff)

	phases := []*phase{
		evalIntents(cp.Utterances, c),
		evalSlots(cp.Utterances, c),
		evalGazetteer(cp.Utterances, c, g),
		evalSeverities(cp.Severities),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d/%d)\033[0m", len(p.errors), p.checks)
			allPassed = false
		}
		fmt.Fprintf(out, "  %-28s %3d checks  %s\n", p.name, p.checks, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll evaluations passed.")
		return 0
	}
	fmt.Fprintln(out, "\nEvaluation FAILED.")
	return 1
}

func evalIntents(us []utterance, c *domain.Classifier) *phase {
	p := &phase{name: "Intent classification"}
	for _, u := range us {
		got := c.Classify(u.Text)
		p.check(string(got.Kind) == u.Intent, "%q: intent %s, want %s (rule %q)", u.Text, got.Kind, u.Intent, got.Rule)
	}
	return p
}

// evalSlots compares every slot exactly; an absent expectation means the slot
// must be empty.
func evalSlots(us []utterance, c *domain.Classifier) *phase {
	p := &phase{name: "Slot extraction"}
	for _, u := range us {
		got := c.Classify(u.Text)
		if string(got.Kind) != u.Intent {
			continue
		}
		p.check(got.Place == u.Place, "%q: place %q, want %q", u.Text, got.Place, u.Place)
		p.check(string(got.Severity) == u.Severity, "%q: severity %q, want %q", u.Text, got.Severity, u.Severity)
		p.check(got.Topic == u.Topic, "%q: topic %q, want %q", u.Text, got.Topic, u.Topic)
		p.check(got.Query == u.Query, "%q: query %q, want %q", u.Text, got.Query, u.Query)
	}
	return p
}

func evalGazetteer(us []utterance, c *domain.Classifier, g domain.Gazetteer) *phase {
	p := &phase{name: "Gazetteer correction"}
	for _, u := range us {
		if u.Corrected == "" {
			continue
		}
		place := c.Classify(u.Text).Place
		got := g.Correct(place)
		_, score, _ := g.Best(domain.CleanPlace(place))
		p.check(got == u.Corrected, "%q: corrected to %q, want %q (best score %.1f)", u.Text, got, u.Corrected, score)
	}
	return p
}

func evalSeverities(cases []severityCase) *phase {
	p := &phase{name: "Severity normalization"}
	for _, sc := range cases {
		got := domain.NormalizeSeverity(sc.Input)
		p.check(string(got) == sc.Want, "%q: %s, want %s", sc.Input, got, sc.Want)
	}
	return p
}
