package agent

import (
	"time"

	"github.com/yourusername/sharpline/internal/models"
)

// Band awards points when a value is at or above its threshold. Bands are
// evaluated in order, first match wins.
type Band struct {
	Threshold float64
	Points    float64
}

// HorizonBand awards points when the hours until kickoff are at or below
// MaxHours.
type HorizonBand struct {
	MaxHours float64
	Points   float64
}

// ScoringTable is the full set of confidence-score weights. Keeping it in one
// place makes the scoring function data rather than scattered constants; the
// bucket maxima sum to 1.0.
type ScoringTable struct {
	// Edge magnitude, up to 0.30
	EdgeBands []Band
	EdgeFloor float64

	// Model confidence tier, up to 0.30
	TierPoints map[models.ConfidenceTier]float64

	// Trailing CLV per (sportsbook, market), up to 0.20. Thresholds are
	// exclusive; no history earns the neutral bonus.
	CLVBands   []Band
	CLVNeutral float64

	// Time to kickoff, up to 0.10. Early lines carry line-movement risk, so
	// shorter horizons score lower.
	HorizonBands   []HorizonBand
	HorizonDefault float64

	// Market liquidity, up to 0.10
	MarketPoints map[models.MarketType]float64
	MarketFloor  float64
}

// DefaultScoringTable returns the standard weights
func DefaultScoringTable() ScoringTable {
	return ScoringTable{
		EdgeBands: []Band{
			{Threshold: 10, Points: 0.30},
			{Threshold: 7, Points: 0.25},
			{Threshold: 5, Points: 0.20},
			{Threshold: 3, Points: 0.15},
		},
		EdgeFloor: 0.10,
		TierPoints: map[models.ConfidenceTier]float64{
			models.ConfidenceHigh:   0.30,
			models.ConfidenceMedium: 0.20,
			models.ConfidenceLow:    0.10,
		},
		CLVBands: []Band{
			{Threshold: 2.0, Points: 0.20},
			{Threshold: 1.0, Points: 0.15},
			{Threshold: 0.0, Points: 0.10},
		},
		CLVNeutral: 0.05,
		HorizonBands: []HorizonBand{
			{MaxHours: 24, Points: 0.05},
			{MaxHours: 48, Points: 0.08},
		},
		HorizonDefault: 0.10,
		MarketPoints: map[models.MarketType]float64{
			models.MarketMoneyline: 0.10,
			models.MarketSpread:    0.08,
		},
		MarketFloor: 0.05,
	}
}

// Score computes the deterministic confidence score in [0,1] for a signal.
// clvAvg is the trailing average CLV for the signal's (sportsbook, market)
// pair; clvKnown is false when there is no history.
func (t ScoringTable) Score(sig *models.Signal, game *models.Game, clvAvg float64, clvKnown bool, now time.Time) float64 {
	score := t.edgePoints(sig.EdgePercent)

	if pts, ok := t.TierPoints[sig.ConfidenceTier]; ok {
		score += pts
	}

	score += t.clvPoints(clvAvg, clvKnown)
	score += t.horizonPoints(game.ScheduledAt.Sub(now).Hours())

	if pts, ok := t.MarketPoints[sig.MarketType]; ok {
		score += pts
	} else {
		score += t.MarketFloor
	}

	if score > 1.0 {
		return 1.0
	}
	return score
}

func (t ScoringTable) edgePoints(edge float64) float64 {
	for _, b := range t.EdgeBands {
		if edge >= b.Threshold {
			return b.Points
		}
	}
	return t.EdgeFloor
}

func (t ScoringTable) clvPoints(avg float64, known bool) float64 {
	if !known {
		return t.CLVNeutral
	}
	for _, b := range t.CLVBands {
		if avg > b.Threshold {
			return b.Points
		}
	}
	return t.CLVNeutral
}

func (t ScoringTable) horizonPoints(hours float64) float64 {
	for _, b := range t.HorizonBands {
		if hours <= b.MaxHours {
			return b.Points
		}
	}
	return t.HorizonDefault
}
