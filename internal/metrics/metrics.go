// Package metrics provides the centralized Prometheus metrics registry for
// the signal engine.
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
	QuotesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "quotes_ingested_total",
		Help:      "Total number of odds quotes ingested",
	}, []string{"sport", "sportsbook"})
	GamesEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "games_evaluated_total",
		Help:      "Total number of games evaluated for signals",
	})
	SignalsGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "signals_generated_total",
		Help:      "Total number of signals generated",
	}, []string{"market_type", "confidence_tier"})
	SignalsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "signals_expired_total",
		Help:      "Total number of signals marked expired",
	})
	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "bets_placed_total",
		Help:      "Total number of paper bets placed",
	})
	BetsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "bets_skipped_total",
		Help:      "Total number of signals skipped by the agent",
	}, []string{"reason"})
	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled",
	}, []string{"status"})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sharpline",
		Name:      "ingestion_errors_total",
		Help:      "Total number of errors during odds ingestion",
	}, []string{"source", "code"})
)

// Gauge metrics
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
	PendingExposure = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "pending_exposure",
		Help:      "Total stake across pending bets",
	})
	ActiveSignals = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "active_signals",
		Help:      "Number of currently active signals",
	})
	TrackedTeamRatings = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sharpline",
		Name:      "tracked_team_ratings",
		Help:      "Number of teams with stored ratings",
	})
)

// Histogram metrics
var (
	SignalGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "signal_generation_duration_seconds",
		Help:      "Duration of signal generation runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	SettlementDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "settlement_duration_seconds",
		Help:      "Duration of settlement runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	IngestionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "ingestion_duration_seconds",
		Help:      "Duration of odds ingestion runs in seconds",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})
	SignalEdgePercent = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sharpline",
		Name:      "signal_edge_percent",
		Help:      "Edge distribution of generated signals in percent",
		Buckets:   []float64{2, 3, 4, 5, 7.5, 10, 15, 20},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(QuotesIngestedTotal)
		registry.MustRegister(GamesEvaluatedTotal)
		registry.MustRegister(SignalsGeneratedTotal)
		registry.MustRegister(SignalsExpiredTotal)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsSkippedTotal)
		registry.MustRegister(BetsSettledTotal)
		registry.MustRegister(IngestionErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(PendingExposure)
		registry.MustRegister(ActiveSignals)
		registry.MustRegister(TrackedTeamRatings)

		// Register histogram metrics
		registry.MustRegister(SignalGenerationDuration)
		registry.MustRegister(SettlementDuration)
		registry.MustRegister(IngestionDuration)
		registry.MustRegister(SignalEdgePercent)
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

// RecordQuoteIngested records an ingested odds quote.
func RecordQuoteIngested(sport, sportsbook string) {
	QuotesIngestedTotal.WithLabelValues(sport, sportsbook).Inc()
}

// RecordSignalGenerated records a generated signal and its edge.
func RecordSignalGenerated(marketType, tier string, edgePercent float64) {
	SignalsGeneratedTotal.WithLabelValues(marketType, tier).Inc()
	SignalEdgePercent.Observe(edgePercent)
}

// RecordSignalsExpired records signals marked expired.
func RecordSignalsExpired(count int) {
	SignalsExpiredTotal.Add(float64(count))
}

// RecordBetPlaced records a bet placement event.
func RecordBetPlaced() {
	BetsPlacedTotal.Inc()
}

// RecordBetSkipped records an agent skip decision.
func RecordBetSkipped(reason string) {
	BetsSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordBetSettled records a bet settlement event.
func RecordBetSettled(status string) {
	BetsSettledTotal.WithLabelValues(status).Inc()
}

// RecordIngestionError records an odds ingestion error.
func RecordIngestionError(source, code string) {
	IngestionErrorsTotal.WithLabelValues(source, code).Inc()
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}

// UpdateExposure updates the pending exposure gauge.
func UpdateExposure(amount float64) {
	PendingExposure.Set(amount)
}

// UpdateActiveSignals updates the active signals gauge.
func UpdateActiveSignals(count float64) {
	ActiveSignals.Set(count)
}

// UpdateTrackedRatings updates the tracked team ratings gauge.
func UpdateTrackedRatings(count float64) {
	TrackedTeamRatings.Set(count)
}

// RecordGamesEvaluated records games evaluated during a generation run.
func RecordGamesEvaluated(count int) {
	GamesEvaluatedTotal.Add(float64(count))
}

// RecordSignalGenerationDuration records a signal generation run duration.
func RecordSignalGenerationDuration(durationSeconds float64) {
	SignalGenerationDuration.Observe(durationSeconds)
}

// RecordSettlementDuration records a settlement run duration.
func RecordSettlementDuration(durationSeconds float64) {
	SettlementDuration.Observe(durationSeconds)
}

// RecordIngestionDuration records an ingestion run duration.
func RecordIngestionDuration(durationSeconds float64) {
	IngestionDuration.Observe(durationSeconds)
}
