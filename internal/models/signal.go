package models

import (
	"time"

	"github.com/google/uuid"
)

// ConfidenceTier classifies signal reliability from edge size and sample adequacy
type ConfidenceTier string

const (
	ConfidenceLow    ConfidenceTier = "low"
	ConfidenceMedium ConfidenceTier = "medium"
	ConfidenceHigh   ConfidenceTier = "high"
)

// Rank returns an ordering value for tier comparisons (low=1 .. high=3)
func (c ConfidenceTier) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	default:
		return 1
	}
}

// Downgrade returns the next tier down; low stays low
func (c ConfidenceTier) Downgrade() ConfidenceTier {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	case ConfidenceMedium:
		return ConfidenceLow
	}
	return ConfidenceLow
}

// SignalStatus represents the lifecycle state of a signal
type SignalStatus string

const (
	SignalStatusActive   SignalStatus = "active"
	SignalStatusExpired  SignalStatus = "expired"
	SignalStatusConsumed SignalStatus = "consumed"
)

// Signal represents an actionable betting opportunity: a quote whose fair
// probability exceeds the vig-removed market probability by the configured
// edge threshold.
type Signal struct {
	ID                 uuid.UUID      `db:"id" json:"id" validate:"required,uuid4"`
	GameID             uuid.UUID      `db:"game_id" json:"game_id" validate:"required,uuid4"`
	MarketType         MarketType     `db:"market_type" json:"market_type" validate:"required"`
	Side               SelectionSide  `db:"side" json:"side" validate:"required"`
	SelectionText      string         `db:"selection_text" json:"selection_text"`
	LineValue          *float64       `db:"line_value" json:"line_value"`
	Sportsbook         string         `db:"sportsbook" json:"sportsbook" validate:"required"`
	PriceAmerican      int            `db:"price_american" json:"price_american" validate:"required"`
	FairProbability    float64        `db:"fair_probability" json:"fair_probability" validate:"gte=0,lte=1"`
	ImpliedProbability float64        `db:"implied_probability" json:"implied_probability" validate:"gte=0,lte=1"`
	RawImpliedProb     float64        `db:"raw_implied_probability" json:"raw_implied_probability" validate:"gte=0,lte=1"`
	EdgePercent        float64        `db:"edge_percent" json:"edge_percent"`
	ConfidenceTier     ConfidenceTier `db:"confidence_tier" json:"confidence_tier" validate:"required,oneof=low medium high"`
	KellyFraction      float64        `db:"kelly_fraction" json:"kelly_fraction"`
	CLVPercent         *float64       `db:"clv_percent" json:"clv_percent"`
	ModelVersion       string         `db:"model_version" json:"model_version"`
	Status             SignalStatus   `db:"status" json:"status" validate:"required"`
	GeneratedAt        time.Time      `db:"generated_at" json:"generated_at"`
	ExpiresAt          time.Time      `db:"expires_at" json:"expires_at" validate:"required"`
}

// Key returns the natural key under which this signal is active
func (s *Signal) Key() SignalKey {
	return SignalKey{
		GameID:        s.GameID,
		MarketType:    s.MarketType,
		Sportsbook:    s.Sportsbook,
		PriceAmerican: s.PriceAmerican,
	}
}

// IsActive reports whether the signal can still be acted on at the given time
func (s *Signal) IsActive(now time.Time) bool {
	return s.Status == SignalStatusActive && now.Before(s.ExpiresAt)
}
