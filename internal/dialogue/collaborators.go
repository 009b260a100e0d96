package dialogue

import (
	"context"
	"errors"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
)

// geocode asks for up to MaxSuggestions candidates within the call timeout.
func (r *Resolver) geocode(ctx context.Context, place string) domain.Result[domain.GeocodeResult] {
	if r.geocoder == nil {
		r.observe("geocoder", "error")
		return domain.Fail[domain.GeocodeResult](domain.ErrGeocodingUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := domain.From(r.geocoder.Geocode(ctx, place, domain.MaxSuggestions))
	r.observe("geocoder", outcome(res.Err, len(res.Value.Candidates)))
	return res
}

func (r *Resolver) search(ctx context.Context, query string) domain.Result[[]domain.Article] {
	if r.articles == nil {
		r.observe("articles", "error")
		return domain.Fail[[]domain.Article](domain.ErrArticleSearchUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res := domain.From(r.articles.Search(ctx, query))
	r.observe("articles", outcome(res.Err, len(res.Value)))
	return res
}

// lastPlace reads the session's last resolved place. Failures read as empty.
func (r *Resolver) lastPlace(ctx context.Context, session string) string {
	if r.sessions == nil || session == "" {
		return ""
	}
	v, ok, err := r.sessions.Get(ctx, session, LocationSlot)
	if err != nil {
		r.observe("sessions", "error")
		r.logger.Warn("session read failed", "session", session, "error", err)
		return ""
	}
	if !ok {
		r.observe("sessions", "empty")
		return ""
	}
	r.observe("sessions", "success")
	return v
}

func (r *Resolver) remember(ctx context.Context, session, place string) {
	if r.sessions == nil || session == "" {
		return
	}
	if err := r.sessions.Set(ctx, session, LocationSlot, place); err != nil {
		r.observe("sessions", "error")
		r.logger.Warn("session write failed", "session", session, "place", place, "error", err)
		return
	}
	r.observe("sessions", "success")
}

func (r *Resolver) observe(collaborator, result string) {
	r.metrics.CollaboratorCalls.WithLabelValues(collaborator, result).Inc()
}

func outcome(err error, n int) string {
	switch {
	case errors.Is(err, domain.ErrGeocodingNoMatch):
		return "empty"
	case err != nil:
		return "error"
	case n == 0:
		return "empty"
	default:
		return "success"
	}
}
