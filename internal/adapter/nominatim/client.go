// Package nominatim implements domain.Geocoder over the OpenStreetMap
// Nominatim search API, biased to the service region.
package nominatim

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
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client implements domain.Geocoder using the Nominatim search endpoint.
type Client struct {
	baseURL      string
	userAgent    string
	countryCodes string
	httpClient   *http.Client
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates a Nominatim client. Nominatim's usage policy requires an
// identifying User-Agent.
func NewClient(baseURL, userAgent, countryCodes string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		userAgent:    userAgent,
		countryCodes: countryCodes,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Geocode searches for place, returning up to limit candidates. Zero hits is
// domain.ErrGeocodingNoMatch; transport and HTTP failures wrap
// domain.ErrGeocodingUnavailable.
func (c *Client) Geocode(ctx context.Context, place string, limit int) (domain.GeocodeResult, error) {
	if limit <= 0 {
		limit = 1
	}
	box := domain.Region.BBox
	params := url.Values{
		"q":               {place},
		"format":          {"jsonv2"},
		"limit":           {strconv.Itoa(limit)},
		"accept-language": {"es"},
		"addressdetails":  {"1"},
		"viewbox":         {fmt.Sprintf("%g,%g,%g,%g", box.West, box.North, box.East, box.South)},
		"bounded":         {"1"},
	}
	if c.countryCodes != "" {
		params.Set("countrycodes", c.countryCodes)
	}

	hits, err := c.doRequest(ctx, c.baseURL+"/search?"+params.Encode())
	if err != nil {
		return domain.GeocodeResult{}, err
	}
	if len(hits) == 0 {
		return domain.GeocodeResult{}, domain.ErrGeocodingNoMatch
	}

	result := domain.GeocodeResult{BBox: domain.Region.BBox, Source: "nominatim"}
	for _, h := range hits {
		coord, ok := h.coordinate()
		if !ok {
			c.logger.Debug("skipping nominatim hit without coordinates", "place", place, "label", h.DisplayName)
			continue
		}
		result.Candidates = append(result.Candidates, domain.Candidate{Label: h.DisplayName, Coordinate: coord})
	}
	if len(result.Candidates) == 0 {
		return domain.GeocodeResult{}, domain.ErrGeocodingNoMatch
	}

	result.Center = result.Candidates[0].Coordinate
	if bbox, ok := hits[0].bbox(); ok {
		result.BBox = bbox
	}
	return result, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]hit, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.GeocodeAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("%w: geocode request: %w", domain.ErrGeocodingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: nominatim status %d: %s", domain.ErrGeocodingUnavailable, resp.StatusCode, body)
	}

	var hits []hit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrGeocodingUnavailable, err)
	}
	return hits, nil
}

// Nominatim API response types. Numbers arrive as strings.

type hit struct {
	Lat         string   `json:"lat"`
	Lon         string   `json:"lon"`
	DisplayName string   `json:"display_name"`
	BoundingBox []string `json:"boundingbox"` // [south, north, west, east]
	Importance  float64  `json:"importance"`
}

func (h hit) coordinate() (domain.Coordinate, bool) {
	lat, err1 := strconv.ParseFloat(h.Lat, 64)
	lon, err2 := strconv.ParseFloat(h.Lon, 64)
	if err1 != nil || err2 != nil {
		return domain.Coordinate{}, false
	}
	return domain.Coordinate{Lat: lat, Lon: lon}, true
}

func (h hit) bbox() (domain.BoundingBox, bool) {
	if len(h.BoundingBox) != 4 {
		return domain.BoundingBox{}, false
	}
	var v [4]float64
	for i, s := range h.BoundingBox {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.BoundingBox{}, false
		}
		v[i] = f
	}
	return domain.BoundingBox{South: v[0], North: v[1], West: v[2], East: v[3]}, true
}
