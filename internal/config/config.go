package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Nominatim geocoding.
	NominatimURL        string
	GeocodeUserAgent    string
	GeocodeCountryCodes string
	GeocodeTimeout      time.Duration
	GeocodeCacheSize    int
	GeocodeCacheTTL     time.Duration

	// Wikipedia article search.
	ArticleSearchURL     string
	ArticleSearchTimeout time.Duration
	ArticleSearchLimit   int

	// Empty RedisAddr keeps sessions in memory.
	RedisAddr  string
	SessionTTL time.Duration

	DatabasePath string

	// Empty KafkaBrokers disables incident events.
	KafkaBrokers       []string
	KafkaIncidentTopic string

	// Requests per minute per client IP on POST /assistant. Zero disables the limit.
	AssistantRateLimit int

	// Gazetteer overrides the built-in place list when non-empty.
	Gazetteer []string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("GEOCODE_CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	articleTimeout, err := parseDuration("ARTICLE_SEARCH_TIMEOUT", "8s")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parseDuration("SESSION_TTL", "24h")
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("GEOCODE_CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	articleLimit, err := parsePositiveInt("ARTICLE_SEARCH_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	rateLimit, err := parseNonNegativeInt("ASSISTANT_RATE_LIMIT", 60)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		brokers = sharedcfg.ParseBrokers(raw)
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		NominatimURL:        sharedcfg.EnvOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		GeocodeUserAgent:    sharedcfg.EnvOrDefault("GEOCODE_USER_AGENT", "riaar-assistant/1.0"),
		GeocodeCountryCodes: sharedcfg.EnvOrDefault("GEOCODE_COUNTRY_CODES", "ni"),
		GeocodeTimeout:      geocodeTimeout,
		GeocodeCacheSize:    cacheSize,
		GeocodeCacheTTL:     cacheTTL,

		ArticleSearchURL:     sharedcfg.EnvOrDefault("ARTICLE_SEARCH_URL", "https://es.wikipedia.org/w/api.php"),
		ArticleSearchTimeout: articleTimeout,
		ArticleSearchLimit:   articleLimit,

		RedisAddr:  os.Getenv("REDIS_ADDR"),
		SessionTTL: sessionTTL,

		DatabasePath: sharedcfg.EnvOrDefault("DATABASE_PATH", "riaar.db"),

		KafkaBrokers:       brokers,
		KafkaIncidentTopic: sharedcfg.EnvOrDefault("KAFKA_INCIDENT_TOPIC", "incident-reports"),

		AssistantRateLimit: rateLimit,
		Gazetteer:          parseList(os.Getenv("GAZETTEER")),
	}

	if cfg.DatabasePath == "" {
		return nil, errors.New("DATABASE_PATH is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaIncidentTopic == "" {
		return nil, errors.New("KAFKA_INCIDENT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// KafkaEnabled reports whether incident events should be published.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseNonNegativeInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
