package domain

// ActionType tags a DialogueAction.
type ActionType string

const (
	ActionNavigate    ActionType = "navigate"
	ActionIncidents   ActionType = "incidents"
	ActionTips        ActionType = "tips"
	ActionSuggestions ActionType = "suggestions"
)

// Action is a structured instruction for the presentation layer. Fields are
// populated according to Type:
//
//	navigate:    Place, Destination (nil when the place could not be verified)
//	incidents:   Place, Severity
//	tips:        Topic, Tips
//	suggestions: Chips
type Action struct {
	Type        ActionType  `json:"type"`
	Place       string      `json:"place,omitempty"`
	Destination *Coordinate `json:"destination,omitempty"`
	Severity    Severity    `json:"severity,omitempty"`
	Topic       string      `json:"topic,omitempty"`
	Tips        []string    `json:"tips,omitempty"`
	Chips       []Chip      `json:"chips,omitempty"`
}

// Chip is a selectable suggestion offered while disambiguating a place.
type Chip struct {
	Text        string     `json:"text"`
	Place       string     `json:"place"`
	Destination Coordinate `json:"destination"`
}

// DialogueResponse is the outcome of one turn. Actions is never nil.
type DialogueResponse struct {
	Intent   Intent    `json:"intent"`
	Reply    string    `json:"reply"`
	Actions  []Action  `json:"actions"`
	Articles []Article `json:"articles,omitempty"`
}

// MaxSuggestions caps the chips offered in one disambiguation prompt.
const MaxSuggestions = 3

// NavigateAction builds a Navigate action. dest may be nil.
func NavigateAction(place string, dest *Coordinate) Action {
	return Action{Type: ActionNavigate, Place: place, Destination: dest}
}

// IncidentsAction builds an Incidents action.
func IncidentsAction(place string, sev Severity) Action {
	return Action{Type: ActionIncidents, Place: place, Severity: sev}
}

// TipsAction builds a Tips action.
func TipsAction(topic string, tips []string) Action {
	return Action{Type: ActionTips, Topic: topic, Tips: tips}
}

// SuggestionsAction builds a Suggestions action from candidates, keeping at
// most MaxSuggestions.
func SuggestionsAction(candidates []Candidate) Action {
	n := min(len(candidates), MaxSuggestions)
	chips := make([]Chip, 0, n)
	for _, c := range candidates[:n] {
		chips = append(chips, Chip{
			Text:        "Ir a " + c.Label,
			Place:       c.Label,
			Destination: c.Coordinate,
		})
	}
	return Action{Type: ActionSuggestions, Chips: chips}
}
