// Package metrics declares the Prometheus collectors CineMind exports on
// /metrics. Collectors register with the default registry at init.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for recommendation requests.
const (
	OutcomeOK         = "ok"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "validation"
	OutcomeError      = "error"
)

// Source labels for metadata lookups.
const (
	SourceMemory   = "memory"
	SourcePersist  = "persistent"
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_recommendations_total",
			Help: "Recommendation requests by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cinemind_recommendation_duration_seconds",
			Help: "Time spent ranking candidates in seconds",
			// Ranking is an in-memory sort over the catalog.
			Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"strategy"},
	)

	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_metadata_lookups_total",
			Help: "Metadata lookups by the source that answered them",
		},
		[]string{"source"},
	)

	MetadataFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_metadata_fallbacks_total",
			Help: "Metadata lookups answered with placeholder details, by failure reason",
		},
		[]string{"reason"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinemind_http_requests_total",
			Help: "HTTP API requests by route pattern and status code",
		},
		[]string{"route", "code"},
	)
)

// RecordRecommendation counts one ranking call and observes its latency.
func RecordRecommendation(strategy, outcome string, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(strategy, outcome).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordMetadataLookup counts a lookup answered by source.
func RecordMetadataLookup(source string) {
	MetadataLookupsTotal.WithLabelValues(source).Inc()
}

// RecordMetadataFallback counts a lookup that degraded to placeholders.
func RecordMetadataFallback(reason string) {
	MetadataFallbacksTotal.WithLabelValues(reason).Inc()
}

// RecordHTTPRequest counts an API response.
func RecordHTTPRequest(route string, code int) {
	HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
