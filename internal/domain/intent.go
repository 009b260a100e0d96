package domain

// IntentKind is the closed set of things a user can ask for in one turn.
type IntentKind string

const (
	IntentNavigate  IntentKind = "navigate"
	IntentIncidents IntentKind = "incidents"
	IntentArticles  IntentKind = "articles"
	IntentTips      IntentKind = "tips"
	IntentUnknown   IntentKind = "unknown"
)

// Intent is the classifier's verdict for one utterance plus the slots it
// extracted. Which slots are meaningful depends on Kind:
//
//	navigate:  Place
//	incidents: Place, Severity (may be SeverityNone)
//	articles:  Query
//	tips:      Topic
type Intent struct {
	Kind     IntentKind `json:"kind"`
	Place    string     `json:"place,omitempty"`
	Severity Severity   `json:"severity,omitempty"`
	Query    string     `json:"query,omitempty"`
	Topic    string     `json:"topic,omitempty"`

	// Rule names the classifier rule that produced the intent.
	Rule string `json:"rule,omitempty"`
}
