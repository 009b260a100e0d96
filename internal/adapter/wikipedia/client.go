// Package wikipedia implements domain.ArticleSearcher over the MediaWiki
// opensearch API.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
)

// DefaultBaseURL is the Spanish Wikipedia API endpoint.
const DefaultBaseURL = "https://es.wikipedia.org/w/api.php"

// Client searches article titles and short descriptions.
type Client struct {
	baseURL    string
	userAgent  string
	limit      int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Wikipedia search client returning at most limit articles.
func NewClient(baseURL, userAgent string, limit int, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if limit <= 0 {
		limit = 5
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		limit:     limit,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Search returns matching articles in relevance order. No matches is an empty
// slice; failures wrap domain.ErrArticleSearchUnavailable.
func (c *Client) Search(ctx context.Context, query string) ([]domain.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Article{}, nil
	}

	params := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {strconv.Itoa(c.limit)},
		"namespace": {"0"},
		"format":    {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: search request: %w", domain.ErrArticleSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: wikipedia status %d: %s", domain.ErrArticleSearchUnavailable, resp.StatusCode, body)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrArticleSearchUnavailable, err)
	}

	articles := sr.articles(c.pageURL)
	c.logger.Debug("article search", "query", query, "results", len(articles))
	return articles, nil
}

// pageURL builds the article link for title when the API omitted one.
func (c *Client) pageURL(title string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s://%s/wiki/%s", u.Scheme, u.Host, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}

// searchResponse is the opensearch array: [query, titles, descriptions, urls].
type searchResponse struct {
	Titles       []string
	Descriptions []string
	URLs         []string
}

func (s *searchResponse) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("opensearch: expected at least 2 elements, got %d", len(raw))
	}
	fields := []*[]string{&s.Titles, &s.Descriptions, &s.URLs}
	for i, dst := range fields {
		if i+1 >= len(raw) {
			break
		}
		if err := json.Unmarshal(raw[i+1], dst); err != nil {
			return fmt.Errorf("opensearch element %d: %w", i+1, err)
		}
	}
	return nil
}

func (s searchResponse) articles(pageURL func(string) string) []domain.Article {
	out := make([]domain.Article, 0, len(s.Titles))
	for i, title := range s.Titles {
		a := domain.Article{Title: title}
		if i < len(s.Descriptions) {
			a.Snippet = s.Descriptions[i]
		}
		if i < len(s.URLs) && s.URLs[i] != "" {
			a.URL = s.URLs[i]
		} else {
			a.URL = pageURL(title)
		}
		out = append(out, a)
	}
	return out
}
