package domain

import "context"

// Article is one article-search hit.
type Article struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// ArticleSearcher finds informational articles. An empty slice is a valid
// answer, not an error.
type ArticleSearcher interface {
	Search(ctx context.Context, query string) ([]Article, error)
}

// SessionStore keeps small per-conversation slots.
type SessionStore interface {
	Get(ctx context.Context, session, key string) (value string, ok bool, err error)
	Set(ctx context.Context, session, key, value string) error
}

// IncidentStore persists and queries incident reports.
type IncidentStore interface {
	Create(ctx context.Context, inc Incident) error
	Get(ctx context.Context, id string) (Incident, error)
	List(ctx context.Context, filter IncidentFilter) ([]Incident, error)
	Ping(ctx context.Context) error
}

// IncidentPublisher announces newly created incidents.
type IncidentPublisher interface {
	Publish(ctx context.Context, inc Incident) error
}

// IntentClassifier maps raw text to one Intent.
type IntentClassifier interface {
	Classify(text string) Intent
}
