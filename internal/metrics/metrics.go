package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AnalysesTotal counts analyses by provider and outcome kind ("success" when the analysis worked).
	AnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsnap",
		Name:      "analyses_total",
		Help:      "Total number of image analyses, labeled by provider and outcome.",
	}, []string{"provider", "outcome"})

	// AnalysisDurationSeconds is the time spent waiting on the provider plus extraction.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "boardsnap",
		Name:      "analysis_duration_seconds",
		Help:      "Time to analyze one image, from request build to extracted position.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"provider"})

	// ExtractionStrategyTotal counts which extraction step produced the position.
	ExtractionStrategyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsnap",
		Name:      "extraction_strategy_total",
		Help:      "Total number of successful extractions, labeled by matching strategy.",
	}, []string{"strategy"})

	// LinksTotal counts lichess hand-offs by kind (direct or form).
	LinksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "boardsnap",
		Name:      "links_total",
		Help:      "Total number of lichess links built, labeled by kind.",
	}, []string{"kind"})
)

// Register registers boardsnap metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AnalysesTotal,
			AnalysisDurationSeconds,
			ExtractionStrategyTotal,
			LinksTotal,
		)
	})
}

// OutcomeSuccess labels analyses that produced a position
const OutcomeSuccess = "success"

// ObserveAnalysis records one finished analysis. An empty outcome counts as success.
func ObserveAnalysis(provider, outcome string, elapsed time.Duration) {
	if outcome == "" {
		outcome = OutcomeSuccess
	}
	if provider == "" {
		provider = "none"
	}
	AnalysesTotal.WithLabelValues(provider, outcome).Inc()
	AnalysisDurationSeconds.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// ObserveExtraction records the strategy that produced a usable position
func ObserveExtraction(strategy string) {
	ExtractionStrategyTotal.WithLabelValues(strategy).Inc()
}

// ObserveLink records a built lichess link
func ObserveLink(kind string) {
	LinksTotal.WithLabelValues(kind).Inc()
}
