package incident

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

type memStore struct {
	mu        sync.Mutex
	incidents map[string]domain.Incident
	filters   []domain.IncidentFilter
	err       error
}

func newMemStore() *memStore {
	return &memStore{incidents: map[string]domain.Incident{}}
}

func (m *memStore) Create(_ context.Context, inc domain.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.incidents[inc.ID] = inc
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inc, ok := m.incidents[id]
	if !ok {
		return domain.Incident{}, domain.ErrIncidentNotFound
	}
	return inc, nil
}

func (m *memStore) List(_ context.Context, f domain.IncidentFilter) ([]domain.Incident, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.Incident{}
	for _, inc := range m.incidents {
		out = append(out, inc)
	}
	return out, nil
}

func (m *memStore) Ping(context.Context) error { return m.err }

type fakePublisher struct {
	published []domain.Incident
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, inc domain.Incident) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, inc)
	return nil
}

type fakeGeocoder struct {
	result domain.GeocodeResult
	err    error
}

func (f fakeGeocoder) Geocode(context.Context, string, int) (domain.GeocodeResult, error) {
	return f.result, f.err
}

func newTestService(store domain.IncidentStore, pub domain.IncidentPublisher, geo domain.Geocoder) (*Service, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	s := NewService(store, pub, geo, m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.newID = func() string { return "fixed-id" }
	return s, m
}

func TestService_Create(t *testing.T) {
	now := time.Date(2025, 9, 14, 18, 30, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(now))
	t.Cleanup(func() { domain.SetClock(nil) })

	store := newMemStore()
	pub := &fakePublisher{}
	s, m := newTestService(store, pub, nil)

	inc, err := s.Create(context.Background(), domain.NewIncident{
		Title: "Árbol caído", Severity: "muy_grande", Lat: 12.1, Lon: -86.2,
	})
	require.NoError(t, err)

	assert.Equal(t, "fixed-id", inc.ID)
	assert.Equal(t, domain.SeverityPurple, inc.Severity)
	assert.Equal(t, now, inc.ReportedAt)
	assert.Equal(t, inc, store.incidents["fixed-id"])
	assert.Equal(t, []domain.Incident{inc}, pub.published)
	assert.InDelta(t, 1, testutil.ToFloat64(m.IncidentsCreated), 0)
}

func TestService_Create_RealIDs(t *testing.T) {
	store := newMemStore()
	s := NewService(store, nil, nil, observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	a, err := s.Create(context.Background(), domain.NewIncident{Title: "a"})
	require.NoError(t, err)
	b, err := s.Create(context.Background(), domain.NewIncident{Title: "b"})
	require.NoError(t, err)

	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestService_Create_Invalid(t *testing.T) {
	store := newMemStore()
	s, _ := newTestService(store, nil, nil)

	_, err := s.Create(context.Background(), domain.NewIncident{Title: "", Lat: 12})
	require.ErrorIs(t, err, domain.ErrInvalidIncident)
	assert.Empty(t, store.incidents)
}

func TestService_Create_PublishFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	s, _ := newTestService(store, &fakePublisher{err: errors.New("kafka down")}, nil)

	inc, err := s.Create(context.Background(), domain.NewIncident{Title: "x"})
	require.NoError(t, err)
	assert.Contains(t, store.incidents, inc.ID)
}

func TestService_Create_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")
	pub := &fakePublisher{}
	s, _ := newTestService(store, pub, nil)

	_, err := s.Create(context.Background(), domain.NewIncident{Title: "x"})
	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestService_Near(t *testing.T) {
	managua := domain.Coordinate{Lat: 12.13, Lon: -86.25}

	t.Run("geocoded center and severity", func(t *testing.T) {
		store := newMemStore()
		geo := fakeGeocoder{result: domain.GeocodeResult{Center: managua}}
		s, _ := newTestService(store, nil, geo)

		res, err := s.Near(context.Background(), "Managua", "grave")
		require.NoError(t, err)

		assert.Equal(t, managua, res.Center)
		assert.Equal(t, domain.SeverityRed, res.Severity)
		require.Len(t, store.filters, 1)
		f := store.filters[0]
		assert.Equal(t, domain.WindowAround(managua, 0.25), f.BBox)
		assert.Equal(t, domain.SeverityRed, f.Severity)
		assert.Equal(t, 200, f.Limit)
		assert.NotNil(t, res.Incidents)
	})

	t.Run("no severity matches all", func(t *testing.T) {
		store := newMemStore()
		s, _ := newTestService(store, nil, fakeGeocoder{result: domain.GeocodeResult{Center: managua}})

		res, err := s.Near(context.Background(), "Managua", "  ")
		require.NoError(t, err)
		assert.Equal(t, domain.SeverityNone, res.Severity)
	})

	t.Run("geocoding failure falls back to region center", func(t *testing.T) {
		store := newMemStore()
		s, _ := newTestService(store, nil, fakeGeocoder{err: domain.ErrGeocodingUnavailable})

		res, err := s.Near(context.Background(), "Managua", "")
		require.NoError(t, err)
		assert.Equal(t, domain.Region.Center, res.Center)
	})

	t.Run("store failure", func(t *testing.T) {
		store := newMemStore()
		store.err = errors.New("locked")
		s, _ := newTestService(store, nil, nil)

		_, err := s.Near(context.Background(), "Managua", "")
		require.Error(t, err)
	})
}

func TestService_Locate(t *testing.T) {
	s, _ := newTestService(newMemStore(), nil, fakeGeocoder{err: domain.ErrGeocodingNoMatch})

	assert.Equal(t, domain.FallbackGeocode(), s.Locate(context.Background(), ""))
	assert.Equal(t, domain.FallbackGeocode(), s.Locate(context.Background(), "nowhere"))
}
