// Package metrics provides the centralized Prometheus registry for the
// analysis and settlement pipelines.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	FixturesAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "fixtures_analyzed_total",
		Help:      "Total number of fixtures run through the analysis pipeline",
	})
	NormalizationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "normalization_failures_total",
		Help:      "Total number of fixtures skipped because a league or team name could not be resolved",
	})
	HistoricalMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "historical_matches_total",
		Help:      "Historical match attempts by outcome",
	}, []string{"outcome"})
	DecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "decisions_total",
		Help:      "Market decisions by method and value flag",
	}, []string{"method", "value"})
	ClassifierAbstentionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "classifier_abstentions_total",
		Help:      "Total number of markets where the classifier abstained or was unavailable",
	})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "riftline",
		Name:      "bets_settled_total",
		Help:      "Settled bets by final status",
	}, []string{"status"})
)

// Histogram metrics
var (
	FixtureAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "riftline",
		Name:      "fixture_analysis_duration_seconds",
		Help:      "Duration of per-fixture analysis in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(FixturesAnalyzedTotal)
		registry.MustRegister(NormalizationFailuresTotal)
		registry.MustRegister(HistoricalMatchesTotal)
		registry.MustRegister(DecisionsTotal)
		registry.MustRegister(ClassifierAbstentionsTotal)
		registry.MustRegister(BetsSettledTotal)

		registry.MustRegister(FixtureAnalysisDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}
