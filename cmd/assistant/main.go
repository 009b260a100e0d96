package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/riaar-assistant/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/riaar-assistant/internal/adapter/kafka"
	"github.com/couchcryptid/riaar-assistant/internal/adapter/nominatim"
	"github.com/couchcryptid/riaar-assistant/internal/adapter/session"
	"github.com/couchcryptid/riaar-assistant/internal/adapter/sqlite"
	"github.com/couchcryptid/riaar-assistant/internal/adapter/wikipedia"
	"github.com/couchcryptid/riaar-assistant/internal/config"
	"github.com/couchcryptid/riaar-assistant/internal/dialogue"
	"github.com/couchcryptid/riaar-assistant/internal/domain"
	"github.com/couchcryptid/riaar-assistant/internal/incident"
	"github.com/couchcryptid/riaar-assistant/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	geoClient := nominatim.NewClient(cfg.NominatimURL, cfg.GeocodeUserAgent, cfg.GeocodeCountryCodes, cfg.GeocodeTimeout, metrics, logger)
	geocoder := nominatim.NewCachedGeocoder(geoClient, cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL, clock, metrics)
	logger.Info("geocoding configured", "url", cfg.NominatimURL, "cache_size", cfg.GeocodeCacheSize, "cache_ttl", cfg.GeocodeCacheTTL)

	articles := wikipedia.NewClient(cfg.ArticleSearchURL, cfg.GeocodeUserAgent, cfg.ArticleSearchLimit, cfg.ArticleSearchTimeout, logger)

	sessions, err := openSessions(ctx, cfg, clock, logger)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(ctx, cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open incident store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	// Left as a nil interface when disabled so the service skips publishing.
	var publisher domain.IncidentPublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled() {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaIncidentTopic, metrics, logger)
		publisher = kafkaPublisher
		logger.Info("incident events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaIncidentTopic)
	} else {
		logger.Info("incident events disabled")
	}

	gazetteer := domain.DefaultGazetteer()
	if len(cfg.Gazetteer) > 0 {
		gazetteer = domain.NewGazetteer(cfg.Gazetteer)
	}

	resolver := dialogue.NewResolver(dialogue.Deps{
		Classifier: domain.NewClassifier(),
		Gazetteer:  gazetteer,
		Geocoder:   geocoder,
		Articles:   articles,
		Sessions:   sessions,
	}, logger, metrics)

	incidents := incident.NewService(store, publisher, geocoder, metrics, logger)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:               cfg.HTTPAddr,
		AssistantRateLimit: cfg.AssistantRateLimit,
	}, resolver, incidents, incidents, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}
	if err := sessions.Close(); err != nil {
		logger.Error("session store close error", "error", err)
	}
	if err := store.Close(); err != nil {
		logger.Error("incident store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

type sessionStore interface {
	domain.SessionStore
	io.Closer
}

// openSessions uses Redis when REDIS_ADDR is set and process memory otherwise.
func openSessions(ctx context.Context, cfg *config.Config, clock clockwork.Clock, logger *slog.Logger) (sessionStore, error) {
	if cfg.RedisAddr == "" {
		logger.Info("sessions kept in memory", "ttl", cfg.SessionTTL)
		return session.NewMemoryStore(cfg.SessionTTL, clock), nil
	}
	store, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.SessionTTL, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("sessions kept in redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	return store, nil
}
