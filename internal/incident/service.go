// Package incident creates incident reports and looks them up around a place.
package incident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

// Service coordinates storage, event publishing and geocoding for incidents.
type Service struct {
	store     domain.IncidentStore
	publisher domain.IncidentPublisher
	geocoder  domain.Geocoder
	newID     func() string
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService wires a Service. publisher and geocoder may be nil.
func NewService(store domain.IncidentStore, publisher domain.IncidentPublisher, geocoder domain.Geocoder, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		geocoder:  geocoder,
		newID:     uuid.NewString,
		metrics:   metrics,
		logger:    logger,
	}
}

// Create validates and stores a report, then publishes it. Publishing is
// best effort: a failure is logged and the stored incident is still returned.
func (s *Service) Create(ctx context.Context, n domain.NewIncident) (domain.Incident, error) {
	inc, err := domain.BuildIncident(n, s.newID())
	if err != nil {
		return domain.Incident{}, err
	}
	if err := s.store.Create(ctx, inc); err != nil {
		return domain.Incident{}, fmt.Errorf("store incident: %w", err)
	}
	s.metrics.IncidentsCreated.Inc()

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, inc); err != nil {
			s.logger.Warn("incident event not published", "id", inc.ID, "error", err)
		}
	}

	s.logger.Info("incident created", "id", inc.ID, "severity", inc.Severity, "lat", inc.Lat, "lon", inc.Lon)
	return inc, nil
}

// Get loads one incident.
func (s *Service) Get(ctx context.Context, id string) (domain.Incident, error) {
	return s.store.Get(ctx, id)
}

// NearResult is the answer to an incident query around a place.
type NearResult struct {
	Place     string             `json:"place"`
	Center    domain.Coordinate  `json:"center"`
	BBox      domain.BoundingBox `json:"bbox"`
	Severity  domain.Severity    `json:"severity,omitempty"`
	Incidents []domain.Incident  `json:"incidents"`
}

// Near returns up to domain.MaxIncidents incidents within domain.IncidentWindow
// degrees of place, newest first. An empty severity matches all; anything
// else goes through the severity normalizer.
func (s *Service) Near(ctx context.Context, place, severity string) (NearResult, error) {
	loc := s.Locate(ctx, place)

	filter := domain.IncidentFilter{
		BBox:  domain.WindowAround(loc.Center, domain.IncidentWindow),
		Limit: domain.MaxIncidents,
	}
	if strings.TrimSpace(severity) != "" {
		filter.Severity = domain.NormalizeSeverity(severity)
	}

	incidents, err := s.store.List(ctx, filter)
	if err != nil {
		return NearResult{}, fmt.Errorf("list incidents: %w", err)
	}
	return NearResult{
		Place:     place,
		Center:    loc.Center,
		BBox:      filter.BBox,
		Severity:  filter.Severity,
		Incidents: incidents,
	}, nil
}

// Locate geocodes place, falling back to the region center when the place is
// empty or cannot be resolved.
func (s *Service) Locate(ctx context.Context, place string) domain.GeocodeResult {
	place = strings.TrimSpace(place)
	if place == "" || s.geocoder == nil {
		return domain.FallbackGeocode()
	}
	res, err := s.geocoder.Geocode(ctx, place, 1)
	if err != nil {
		if !errors.Is(err, domain.ErrGeocodingNoMatch) {
			s.logger.Warn("geocoding failed, using region center", "place", place, "error", err)
		}
		return domain.FallbackGeocode()
	}
	return res
}

// CheckReadiness reports whether the incident store is reachable.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.store.Ping(ctx)
}
