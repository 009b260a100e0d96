// Package dialogue resolves one user utterance into a reply and a list of
// actions for the map client.
package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

// LocationSlot is the session key holding the last resolved place.
const LocationSlot = "location"

// DefaultCallTimeout bounds each geocoding or article-search call.
const DefaultCallTimeout = 8 * time.Second

// Deps are the resolver's collaborators. Geocoder, Articles and Sessions may
// be nil; a missing collaborator behaves like one that is down.
type Deps struct {
	Classifier  domain.IntentClassifier
	Gazetteer   domain.Gazetteer
	Geocoder    domain.Geocoder
	Articles    domain.ArticleSearcher
	Sessions    domain.SessionStore
	CallTimeout time.Duration
}

// Resolver turns one utterance into a DialogueResponse.
type Resolver struct {
	classifier domain.IntentClassifier
	gazetteer  domain.Gazetteer
	geocoder   domain.Geocoder
	articles   domain.ArticleSearcher
	sessions   domain.SessionStore
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewResolver wires a Resolver. A nil Classifier means the default rule list.
func NewResolver(deps Deps, logger *slog.Logger, metrics *observability.Metrics) *Resolver {
	r := &Resolver{
		classifier: deps.Classifier,
		gazetteer:  deps.Gazetteer,
		geocoder:   deps.Geocoder,
		articles:   deps.Articles,
		sessions:   deps.Sessions,
		timeout:    deps.CallTimeout,
		logger:     logger,
		metrics:    metrics,
	}
	if r.classifier == nil {
		r.classifier = domain.NewClassifier()
	}
	if r.timeout <= 0 {
		r.timeout = DefaultCallTimeout
	}
	return r
}

// Resolve classifies text and produces the turn's reply and actions. It
// always returns a response; collaborator failures only change the reply.
func (r *Resolver) Resolve(ctx context.Context, session, text string) domain.DialogueResponse {
	start := time.Now()
	intent := r.classifier.Classify(text)

	var resp domain.DialogueResponse
	switch intent.Kind {
	case domain.IntentNavigate:
		resp = r.navigate(ctx, session, intent)
	case domain.IntentIncidents:
		resp = r.incidents(ctx, session, intent)
	case domain.IntentArticles:
		resp = r.searchArticles(ctx, intent)
	case domain.IntentTips:
		resp = tips(intent)
	default:
		resp = unknown()
	}

	resp.Intent = intent
	if resp.Actions == nil {
		resp.Actions = []domain.Action{}
	}

	r.metrics.DialogueTurns.WithLabelValues(string(intent.Kind)).Inc()
	r.metrics.DialogueTurnDuration.Observe(time.Since(start).Seconds())
	r.logger.Debug("dialogue turn resolved",
		"session", session,
		"intent", intent.Kind,
		"rule", intent.Rule,
		"actions", len(resp.Actions),
	)
	return resp
}

func (r *Resolver) navigate(ctx context.Context, session string, in domain.Intent) domain.DialogueResponse {
	place := r.gazetteer.Correct(in.Place)
	if place == "" {
		place = r.lastPlace(ctx, session)
	}
	if place == "" {
		return unknown()
	}

	res := r.geocode(ctx, place)
	switch {
	case !res.IsOK() && !errors.Is(res.Err, domain.ErrGeocodingNoMatch):
		r.logger.Warn("geocoding failed, navigating unverified", "place", place, "session", session, "error", res.Err)
		return domain.DialogueResponse{
			Reply:   fmt.Sprintf("No pude verificar el lugar, pero intento llevarte a **%s**.", place),
			Actions: []domain.Action{domain.NavigateAction(place, nil)},
		}

	case !res.IsOK() || len(res.Value.Candidates) == 0:
		return domain.DialogueResponse{
			Reply:   fmt.Sprintf("No pude verificar «%s». Prueba con municipio y departamento; igual intento llevarte allí.", place),
			Actions: []domain.Action{domain.NavigateAction(place, nil)},
		}

	case len(res.Value.Candidates) == 1:
		dest := res.Value.Candidates[0].Coordinate
		r.remember(ctx, session, place)
		return domain.DialogueResponse{
			Reply:   fmt.Sprintf("Te llevo a **%s**.", place),
			Actions: []domain.Action{domain.NavigateAction(place, &dest)},
		}

	default:
		return domain.DialogueResponse{
			Reply:   "¿A cuál te refieres?",
			Actions: []domain.Action{domain.SuggestionsAction(res.Value.Candidates)},
		}
	}
}

func (r *Resolver) incidents(ctx context.Context, session string, in domain.Intent) domain.DialogueResponse {
	place := domain.CleanPlace(in.Place)
	if place == "" {
		place = r.lastPlace(ctx, session)
	}
	if place == "" {
		return domain.DialogueResponse{
			Reply: "¿En qué lugar? Prueba con “incidencia en Managua”.",
		}
	}

	reply := fmt.Sprintf("Buscando incidencias en **%s**…", place)
	if label := in.Severity.Label(); label != "" {
		reply = fmt.Sprintf("Buscando incidencias en **%s** (severidad %s)…", place, label)
	}
	return domain.DialogueResponse{
		Reply:   reply,
		Actions: []domain.Action{domain.IncidentsAction(place, in.Severity)},
	}
}

func (r *Resolver) searchArticles(ctx context.Context, in domain.Intent) domain.DialogueResponse {
	res := r.search(ctx, in.Query)
	switch {
	case !res.IsOK():
		r.logger.Warn("article search failed", "query", in.Query, "error", res.Err)
		return domain.DialogueResponse{Reply: "No pude consultar artículos en este momento."}
	case len(res.Value) == 0:
		return domain.DialogueResponse{Reply: "No encontré artículos para ese tema."}
	default:
		return domain.DialogueResponse{
			Reply:    fmt.Sprintf("Buscando artículos sobre **%s**…", in.Query),
			Articles: res.Value,
		}
	}
}

func tips(in domain.Intent) domain.DialogueResponse {
	topic, list, ok := domain.LookupTips(in.Topic)
	if !ok {
		return domain.DialogueResponse{Reply: "Dime el riesgo: terremoto, inundación, incendio o huracán."}
	}
	return domain.DialogueResponse{
		Reply:   fmt.Sprintf("Te doy medidas de **%s**. ¿Quieres que además te lleve a un lugar? (Ej.: “incidencia en Managua”).", topic),
		Actions: []domain.Action{domain.TipsAction(topic, list)},
	}
}

func unknown() domain.DialogueResponse {
	return domain.DialogueResponse{
		Reply: "Puedo llevarte al mapa (ej. “ir a León”), mostrar incidencias (ej. “incidencia grave en Managua”) " +
			"o buscar artículos (ej. “artículos sobre terremotos en Nicaragua”).",
	}
}
