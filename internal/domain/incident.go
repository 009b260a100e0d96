package domain

import (
	"fmt"
	"strings"
	"time"
)

// Incident is a georeferenced report.
type Incident struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    Severity  `json:"severity"`
	Type        string    `json:"type,omitempty"`
	Lat         float64   `json:"lat"`
	Lon         float64   `json:"lon"`
	ReportedAt  time.Time `json:"reported_at"`
}

// NewIncident is the user-supplied part of an incident. Severity accepts
// colors or logical labels.
type NewIncident struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Severity    string  `json:"severity"`
	Type        string  `json:"type"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Validate checks required fields and coordinate ranges.
func (n NewIncident) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidIncident)
	}
	if n.Lat < -90 || n.Lat > 90 {
		return fmt.Errorf("%w: lat %v out of range", ErrInvalidIncident, n.Lat)
	}
	if n.Lon < -180 || n.Lon > 180 {
		return fmt.Errorf("%w: lon %v out of range", ErrInvalidIncident, n.Lon)
	}
	return nil
}

// BuildIncident validates n and stamps it with id and the current time.
func BuildIncident(n NewIncident, id string) (Incident, error) {
	if err := n.Validate(); err != nil {
		return Incident{}, err
	}
	return Incident{
		ID:          id,
		Title:       strings.TrimSpace(n.Title),
		Description: strings.TrimSpace(n.Description),
		Severity:    NormalizeSeverity(n.Severity),
		Type:        strings.TrimSpace(n.Type),
		Lat:         n.Lat,
		Lon:         n.Lon,
		ReportedAt:  clock.Now().UTC(),
	}, nil
}

// IncidentFilter selects incidents inside BBox, newest first.
// Severity SeverityNone matches every severity.
type IncidentFilter struct {
	BBox     BoundingBox
	Severity Severity
	Limit    int
}

// IncidentWindow is the half-width in degrees of the search box around a place.
const IncidentWindow = 0.25

// MaxIncidents caps a single incident query.
const MaxIncidents = 200

// WindowAround returns the box extending delta degrees each way from c.
func WindowAround(c Coordinate, delta float64) BoundingBox {
	return BoundingBox{
		West:  c.Lon - delta,
		South: c.Lat - delta,
		East:  c.Lon + delta,
		North: c.Lat + delta,
	}
}
