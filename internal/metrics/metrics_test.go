package metrics

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	// Initialize the registry
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordQuoteIngested(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordQuoteIngested("nfl", "draftkings")
	})
}

func TestRecordSignalGenerated(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSignalGenerated("spread", "high", 5.2)
	})
}

func TestRecordBetLifecycle(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordBetPlaced()
		RecordBetSkipped("correlated_exposure")
		RecordBetSettled("won")
	})
}

func TestUpdateBankroll(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		bankroll float64
	}{
		{
			name:     "positive bankroll",
			bankroll: 10000,
		},
		{
			name:     "zero bankroll",
			bankroll: 0,
		},
		{
			name:     "negative bankroll",
			bankroll: -100, // still recorded
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateBankroll(tt.bankroll)
			})
		})
	}
}

func TestUpdateExposure(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		exposure float64
	}{
		{
			name:     "normal exposure",
			exposure: 150,
		},
		{
			name:     "high exposure",
			exposure: 5000,
		},
		{
			name:     "zero exposure",
			exposure: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateExposure(tt.exposure)
			})
		})
	}
}

func TestRecordIngestionError(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordIngestionError("the_odds_api", "rate_limit_exceeded")
	})
}

func TestRecordRunDurations(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordGamesEvaluated(12)
		RecordSignalGenerationDuration(0.5)
		RecordSettlementDuration(1.2)
		RecordIngestionDuration(3.4)
	})
}

func TestMetricsHandler(t *testing.T) {
	InitRegistry()

	handler := Handler()
	assert.NotNil(t, handler)
	assert.Implements(t, (*http.Handler)(nil), handler)
}

func BenchmarkRecordBetPlaced(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordBetPlaced()
	}
}

func BenchmarkUpdateBankroll(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		UpdateBankroll(10000.0)
	}
}

func BenchmarkRecordSignalGenerated(b *testing.B) {
	InitRegistry()

	for i := 0; i < b.N; i++ {
		RecordSignalGenerated("moneyline", "medium", 3.5)
	}
}
