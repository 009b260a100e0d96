// Package httpadapter exposes the assistant, geocoding and incident APIs plus
// health, readiness and metrics endpoints.
package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/incident"
)

// Assistant resolves one dialogue turn.
type Assistant interface {
	Resolve(ctx context.Context, session, text string) domain.DialogueResponse
}

// Incidents is the incident service as seen by the HTTP layer.
type Incidents interface {
	Create(ctx context.Context, n domain.NewIncident) (domain.Incident, error)
	Get(ctx context.Context, id string) (domain.Incident, error)
	Near(ctx context.Context, place, severity string) (incident.NearResult, error)
	Locate(ctx context.Context, place string) domain.GeocodeResult
}

// Options configures the HTTP server.
type Options struct {
	Addr string
	// AssistantRateLimit is the number of POST /assistant requests allowed
	// per client IP per minute. Zero disables the limit.
	AssistantRateLimit int
}

// Server is the service's HTTP surface.
type Server struct {
	httpServer *http.Server
	assistant  Assistant
	incidents  Incidents
	logger     *slog.Logger
}

// NewServer builds the router and the underlying http.Server.
func NewServer(opts Options, assistant Assistant, incidents Incidents, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{
		assistant: assistant,
		incidents: incidents,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", sharedobs.LivenessHandler())
	r.Get("/readyz", sharedobs.ReadinessHandler(ready))
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if opts.AssistantRateLimit > 0 {
			r.Use(httprate.Limit(
				opts.AssistantRateLimit,
				time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
					writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				}),
			))
		}
		r.Post("/assistant", s.handleAssistant)
	})

	r.Get("/geocode", s.handleGeocode)
	r.Route("/incidents", func(r chi.Router) {
		r.Get("/", s.handleListIncidents)
		r.Post("/", s.handleCreateIncident)
		r.Get("/{id}", s.handleGetIncident)
	})

	s.httpServer = &http.Server{
		Addr:         opts.Addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
