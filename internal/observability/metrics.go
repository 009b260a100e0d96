package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for the assistant.
type Metrics struct {
	// Dialogue metrics.
	DialogueTurns        *prometheus.CounterVec // labels: intent
	DialogueTurnDuration prometheus.Histogram
	CollaboratorCalls    *prometheus.CounterVec // labels: collaborator={geocoder,articles,sessions}, outcome={success,empty,error}

	// Geocoding metrics.
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	// Incident metrics.
	IncidentsCreated prometheus.Counter
	IncidentEvents   *prometheus.CounterVec // labels: outcome={published,failed}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DialogueTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riaar",
			Name:      "dialogue_turns_total",
			Help:      "Dialogue turns resolved, by classified intent.",
		}, []string{"intent"}),
		DialogueTurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riaar",
			Name:      "dialogue_turn_duration_seconds",
			Help:      "Duration of a dialogue turn including collaborator calls.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CollaboratorCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riaar",
			Name:      "collaborator_calls_total",
			Help:      "External collaborator calls made during dialogue turns, by outcome.",
		}, []string{"collaborator", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riaar",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riaar",
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		IncidentsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riaar",
			Name:      "incidents_created_total",
			Help:      "Incident reports stored.",
		}),
		IncidentEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "riaar",
			Name:      "incident_events_total",
			Help:      "Incident events sent to Kafka, by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.DialogueTurns,
		m.DialogueTurnDuration,
		m.CollaboratorCalls,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.IncidentsCreated,
		m.IncidentEvents,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DialogueTurns:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "riaar", Name: "dialogue_turns_total"}, []string{"intent"}),
		DialogueTurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "riaar", Name: "dialogue_turn_duration_seconds"}),
		CollaboratorCalls:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "riaar", Name: "collaborator_calls_total"}, []string{"collaborator", "outcome"}),
		GeocodeCache:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "riaar", Name: "geocode_cache_total"}, []string{"result"}),
		GeocodeAPIDuration:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "riaar", Name: "geocode_api_duration_seconds"}),
		IncidentsCreated:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "riaar", Name: "incidents_created_total"}),
		IncidentEvents:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "riaar", Name: "incident_events_total"}, []string{"outcome"}),
	}
}
