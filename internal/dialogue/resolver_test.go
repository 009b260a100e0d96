package dialogue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

var leon = domain.Coordinate{Lat: 12.4356, Lon: -86.8794}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeGeocoder struct {
	result domain.GeocodeResult
	err    error
	block  bool

	mu     sync.Mutex
	places []string
	limits []int
}

func (f *fakeGeocoder) Geocode(ctx context.Context, place string, limit int) (domain.GeocodeResult, error) {
	f.mu.Lock()
	f.places = append(f.places, place)
	f.limits = append(f.limits, limit)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return domain.GeocodeResult{}, ctx.Err()
	}
	return f.result, f.err
}

func singleHit(label string, c domain.Coordinate) *fakeGeocoder {
	return &fakeGeocoder{result: domain.GeocodeResult{
		Center:     c,
		Candidates: []domain.Candidate{{Label: label, Coordinate: c}},
	}}
}

type fakeArticles struct {
	articles []domain.Article
	err      error
	queries  []string
}

func (f *fakeArticles) Search(_ context.Context, query string) ([]domain.Article, error) {
	f.queries = append(f.queries, query)
	return f.articles, f.err
}

type fakeSessions struct {
	values map[string]string
	getErr error
	setErr error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{values: map[string]string{}}
}

func (f *fakeSessions) Get(_ context.Context, session, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	v, ok := f.values[session+"/"+key]
	return v, ok, nil
}

func (f *fakeSessions) Set(_ context.Context, session, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.values[session+"/"+key] = value
	return nil
}

func newTestResolver(deps Deps) (*Resolver, *observability.Metrics) {
	if deps.Gazetteer.Len() == 0 {
		deps.Gazetteer = domain.DefaultGazetteer()
	}
	m := observability.NewMetricsForTesting()
	return NewResolver(deps, discardLogger(), m), m
}

func TestResolve_NavigateSingleHit(t *testing.T) {
	geo := singleHit("León, León, Nicaragua", leon)
	sessions := newFakeSessions()
	r, m := newTestResolver(Deps{Geocoder: geo, Sessions: sessions})

	resp := r.Resolve(context.Background(), "s1", "ir a León")

	assert.Equal(t, domain.IntentNavigate, resp.Intent.Kind)
	assert.Equal(t, "león", resp.Intent.Place)
	assert.Contains(t, resp.Reply, "León")
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, domain.NavigateAction("León", &leon), resp.Actions[0])

	assert.Equal(t, []string{"León"}, geo.places)
	assert.Equal(t, []int{domain.MaxSuggestions}, geo.limits)
	assert.Equal(t, "León", sessions.values["s1/"+LocationSlot])

	assert.InDelta(t, 1, testutil.ToFloat64(m.DialogueTurns.WithLabelValues("navigate")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CollaboratorCalls.WithLabelValues("geocoder", "success")), 0)
}

func TestResolve_NavigateCorrectsTypo(t *testing.T) {
	geo := singleHit("Managua, Nicaragua", domain.Coordinate{Lat: 12.13, Lon: -86.25})
	r, _ := newTestResolver(Deps{Geocoder: geo})

	resp := r.Resolve(context.Background(), "", "vamos a managwa")

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "Managua", resp.Actions[0].Place)
	assert.Equal(t, []string{"Managua"}, geo.places)
}

func TestResolve_NavigateKeepsDistinctPlace(t *testing.T) {
	jinotega := domain.Coordinate{Lat: 13.09, Lon: -86.0}
	geo := singleHit("Jinotega, Nicaragua", jinotega)
	r, _ := newTestResolver(Deps{Geocoder: geo})

	resp := r.Resolve(context.Background(), "s1", "ir a Jinotega")

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "jinotega", resp.Actions[0].Place)
	assert.Equal(t, []string{"jinotega"}, geo.places)
	assert.NotContains(t, resp.Reply, "Jinotepe")
}

func TestResolve_NavigateDisambiguation(t *testing.T) {
	candidates := []domain.Candidate{
		{Label: "Santa Teresa, Carazo, Nicaragua", Coordinate: domain.Coordinate{Lat: 11.73, Lon: -86.21}},
		{Label: "Santa Teresa, Managua, Nicaragua", Coordinate: domain.Coordinate{Lat: 12.1, Lon: -86.3}},
		{Label: "Santa Teresa, Jinotega, Nicaragua", Coordinate: domain.Coordinate{Lat: 13.2, Lon: -85.9}},
		{Label: "Santa Teresa, Rivas, Nicaragua", Coordinate: domain.Coordinate{Lat: 11.4, Lon: -85.8}},
	}
	sessions := newFakeSessions()
	r, _ := newTestResolver(Deps{
		Geocoder: &fakeGeocoder{result: domain.GeocodeResult{Candidates: candidates}},
		Sessions: sessions,
	})

	resp := r.Resolve(context.Background(), "s1", "ir a Santa Teresa")

	assert.NotEmpty(t, resp.Reply)
	require.Len(t, resp.Actions, 1)
	a := resp.Actions[0]
	assert.Equal(t, domain.ActionSuggestions, a.Type)
	assert.LessOrEqual(t, len(a.Chips), 3)
	assert.Equal(t, "Ir a Santa Teresa, Carazo, Nicaragua", a.Chips[0].Text)
	for _, act := range resp.Actions {
		assert.NotEqual(t, domain.ActionNavigate, act.Type)
	}
	assert.Empty(t, sessions.values, "ambiguous turns do not update the last place")
}

func TestResolve_NavigateDegraded(t *testing.T) {
	tests := []struct {
		name string
		geo  domain.Geocoder
	}{
		{"gateway error", &fakeGeocoder{err: errors.New("connection refused")}},
		{"no match", &fakeGeocoder{err: domain.ErrGeocodingNoMatch}},
		{"zero candidates", &fakeGeocoder{}},
		{"no geocoder configured", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestResolver(Deps{Geocoder: tt.geo})

			resp := r.Resolve(context.Background(), "", "ir a Bluefields")

			assert.Contains(t, resp.Reply, "bluefields")
			require.Len(t, resp.Actions, 1)
			assert.Equal(t, domain.NavigateAction("bluefields", nil), resp.Actions[0])
		})
	}
}

func TestResolve_NavigateTimeout(t *testing.T) {
	geo := &fakeGeocoder{block: true}
	r, m := newTestResolver(Deps{Geocoder: geo, CallTimeout: 20 * time.Millisecond})

	resp := r.Resolve(context.Background(), "", "ir a León")

	require.Len(t, resp.Actions, 1)
	assert.Nil(t, resp.Actions[0].Destination)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CollaboratorCalls.WithLabelValues("geocoder", "error")), 0)
}

func TestResolve_NavigateUsesLastPlace(t *testing.T) {
	sessions := newFakeSessions()
	sessions.values["s1/"+LocationSlot] = "Granada"
	geo := singleHit("Granada, Nicaragua", domain.Coordinate{Lat: 11.93, Lon: -85.95})
	r, _ := newTestResolver(Deps{Geocoder: geo, Sessions: sessions})

	resp := r.Resolve(context.Background(), "s1", "vamos a ???")

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, "Granada", resp.Actions[0].Place)
}

func TestResolve_NavigateWithoutAnyPlace(t *testing.T) {
	r, _ := newTestResolver(Deps{Geocoder: singleHit("x", leon), Sessions: newFakeSessions()})

	resp := r.Resolve(context.Background(), "s1", "vamos a ???")

	assert.Empty(t, resp.Actions)
	assert.Contains(t, resp.Reply, "Puedo llevarte al mapa")
}

func TestResolve_Incidents(t *testing.T) {
	r, _ := newTestResolver(Deps{})

	resp := r.Resolve(context.Background(), "", "incidencia grave en Managua")

	assert.Equal(t, domain.IntentIncidents, resp.Intent.Kind)
	assert.Equal(t, domain.SeverityRed, resp.Intent.Severity)
	assert.Contains(t, resp.Reply, "grave")
	assert.Equal(t, []domain.Action{domain.IncidentsAction("managua", domain.SeverityRed)}, resp.Actions)
}

func TestResolve_IncidentsSeverityLabels(t *testing.T) {
	tests := []struct {
		text  string
		label string
		sev   domain.Severity
	}{
		{"alerta morada en Masaya", "muy grande", domain.SeverityPurple},
		{"accidente leve en León", "leve", domain.SeverityGreen},
		{"accidente de tránsito en Tipitapa", "tránsito menor", domain.SeverityBlue},
		{"incidencia media en Granada", "medio", domain.SeverityYellow},
	}

	r, _ := newTestResolver(Deps{})
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			resp := r.Resolve(context.Background(), "", tt.text)
			assert.Contains(t, resp.Reply, "severidad "+tt.label)
			require.Len(t, resp.Actions, 1)
			assert.Equal(t, tt.sev, resp.Actions[0].Severity)
		})
	}
}

func TestResolve_IncidentsPlaceFallback(t *testing.T) {
	sessions := newFakeSessions()
	r, _ := newTestResolver(Deps{Sessions: sessions})

	t.Run("no place anywhere asks for one", func(t *testing.T) {
		resp := r.Resolve(context.Background(), "s1", "alerta de terremoto")
		assert.NotEmpty(t, resp.Reply)
		assert.Empty(t, resp.Actions)
	})

	t.Run("session place is used", func(t *testing.T) {
		sessions.values["s1/"+LocationSlot] = "León"
		resp := r.Resolve(context.Background(), "s1", "incidencias graves")
		assert.Equal(t, []domain.Action{domain.IncidentsAction("León", domain.SeverityRed)}, resp.Actions)
	})

	t.Run("session failure reads as empty", func(t *testing.T) {
		failing := &fakeSessions{getErr: errors.New("redis down")}
		r, _ := newTestResolver(Deps{Sessions: failing})
		resp := r.Resolve(context.Background(), "s1", "incidencias")
		assert.Empty(t, resp.Actions)
	})
}

func TestResolve_Articles(t *testing.T) {
	t.Run("zero results", func(t *testing.T) {
		articles := &fakeArticles{}
		r, _ := newTestResolver(Deps{Articles: articles})

		resp := r.Resolve(context.Background(), "", "articulos sobre terremotos")

		assert.Equal(t, domain.IntentArticles, resp.Intent.Kind)
		assert.Equal(t, "terremotos", resp.Intent.Query)
		assert.Equal(t, "No encontré artículos para ese tema.", resp.Reply)
		assert.Empty(t, resp.Actions)
		assert.NotNil(t, resp.Actions)
		assert.Equal(t, []string{"terremotos"}, articles.queries)
	})

	t.Run("results", func(t *testing.T) {
		found := []domain.Article{{Title: "Terremoto", Snippet: "Un terremoto es…", URL: "https://es.wikipedia.org/wiki/Terremoto"}}
		r, _ := newTestResolver(Deps{Articles: &fakeArticles{articles: found}})

		resp := r.Resolve(context.Background(), "", "noticias sobre terremotos")

		assert.Contains(t, resp.Reply, "terremotos")
		assert.Equal(t, found, resp.Articles)
		assert.Empty(t, resp.Actions)
	})

	t.Run("gateway failure", func(t *testing.T) {
		r, m := newTestResolver(Deps{Articles: &fakeArticles{err: domain.ErrArticleSearchUnavailable}})

		resp := r.Resolve(context.Background(), "", "definicion de huracan")

		assert.Equal(t, "No pude consultar artículos en este momento.", resp.Reply)
		assert.Empty(t, resp.Articles)
		assert.InDelta(t, 1, testutil.ToFloat64(m.CollaboratorCalls.WithLabelValues("articles", "error")), 0)
	})
}

func TestResolve_Tips(t *testing.T) {
	r, _ := newTestResolver(Deps{})

	resp := r.Resolve(context.Background(), "", "qué hago en una inundación")

	assert.Equal(t, domain.IntentTips, resp.Intent.Kind)
	assert.Contains(t, resp.Reply, "inundación")
	require.Len(t, resp.Actions, 1)
	assert.Equal(t, domain.ActionTips, resp.Actions[0].Type)
	assert.Equal(t, "inundación", resp.Actions[0].Topic)
	assert.NotEmpty(t, resp.Actions[0].Tips)
}

func TestResolve_TipsUnknownTopic(t *testing.T) {
	noTopic := domain.Rule{
		Name: "blank_tips",
		Match: func(domain.Folded) (domain.Intent, bool) {
			return domain.Intent{Kind: domain.IntentTips}, true
		},
	}
	r, _ := newTestResolver(Deps{Classifier: domain.NewClassifier(noTopic)})

	resp := r.Resolve(context.Background(), "", "cualquier cosa")

	assert.Equal(t, "Dime el riesgo: terremoto, inundación, incendio o huracán.", resp.Reply)
	assert.Empty(t, resp.Actions)
}

func TestResolve_Unknown(t *testing.T) {
	r, m := newTestResolver(Deps{})

	resp := r.Resolve(context.Background(), "", "asdkjhasdkjh")

	assert.Equal(t, domain.IntentUnknown, resp.Intent.Kind)
	assert.Contains(t, resp.Reply, "ir a León")
	assert.Contains(t, resp.Reply, "incidencia grave en Managua")
	assert.Contains(t, resp.Reply, "artículos sobre terremotos")
	assert.NotNil(t, resp.Actions)
	assert.Empty(t, resp.Actions)
	assert.InDelta(t, 1, testutil.ToFloat64(m.DialogueTurns.WithLabelValues("unknown")), 0)
}

func TestResolve_AlwaysReplies(t *testing.T) {
	r, _ := newTestResolver(Deps{
		Geocoder: &fakeGeocoder{err: errors.New("boom")},
		Articles: &fakeArticles{err: errors.New("boom")},
		Sessions: &fakeSessions{getErr: errors.New("boom"), setErr: errors.New("boom")},
	})

	inputs := []string{
		"", " ", "ir a", "ir a León", "incidencia", "articulos", "terremoto",
		"en", "en ", "estoy en ", "¿?", "\xff\xfe", "ve a !!!", "accidente en Managua",
	}
	for _, in := range inputs {
		resp := r.Resolve(context.Background(), "s1", in)
		assert.NotEmpty(t, resp.Reply, "input %q", in)
		assert.NotNil(t, resp.Actions, "input %q", in)
	}
}

func TestResolve_SessionWriteFailureStillNavigates(t *testing.T) {
	r, _ := newTestResolver(Deps{
		Geocoder: singleHit("León", leon),
		Sessions: &fakeSessions{setErr: errors.New("redis down")},
	})

	resp := r.Resolve(context.Background(), "s1", "ir a León")

	require.Len(t, resp.Actions, 1)
	assert.Equal(t, &leon, resp.Actions[0].Destination)
}
