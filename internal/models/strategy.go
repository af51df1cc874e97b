package models

import (
	"time"

	"github.com/google/uuid"
)

// Strategy holds the staking policy knobs for the decision agent. All limits
// are percentages of the current bankroll unless noted.
type Strategy struct {
	ID                 uuid.UUID      `db:"id" json:"id" validate:"required,uuid4"`
	Name               string         `db:"name" json:"name" validate:"required,min=1,max=255"`
	Description        string         `db:"description" json:"description"`
	MinEdge            float64        `db:"min_edge" json:"min_edge" validate:"gte=0"`
	MinConfidence      ConfidenceTier `db:"min_confidence" json:"min_confidence" validate:"required,oneof=low medium high"`
	KellyFraction      float64        `db:"kelly_fraction" json:"kelly_fraction" validate:"gt=0,lte=1"`
	MaxStakePct        float64        `db:"max_stake_pct" json:"max_stake_pct" validate:"gt=0"`
	MaxExposurePerGame float64        `db:"max_exposure_per_game" json:"max_exposure_per_game" validate:"gt=0"`
	MaxDailyBets       *int           `db:"max_daily_bets" json:"max_daily_bets"`
	Enabled            bool           `db:"enabled" json:"enabled"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// Validate performs basic validation on the strategy
func (s *Strategy) Validate() error {
	if s.Name == "" {
		return ErrStrategyNameRequired
	}
	return nil
}

// AcceptsTier reports whether a signal tier meets the strategy minimum
func (s *Strategy) AcceptsTier(tier ConfidenceTier) bool {
	return tier.Rank() >= s.MinConfidence.Rank()
}
