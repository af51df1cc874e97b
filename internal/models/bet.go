package models

import (
	"time"

	"github.com/google/uuid"
)

// BetStatus represents the status of a bet. The only valid transitions are
// pending -> {won, lost, push, void}, applied exactly once by settlement.
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusPush    BetStatus = "push"
	BetStatusVoid    BetStatus = "void"
)

// Terminal reports whether the status is a settlement outcome
func (s BetStatus) Terminal() bool {
	return s == BetStatusWon || s == BetStatusLost || s == BetStatusPush || s == BetStatusVoid
}

// Bet represents a placed (paper) bet tied to the signal that produced it
type Bet struct {
	ID            uuid.UUID     `db:"id" json:"id" validate:"required,uuid4"`
	SignalID      uuid.UUID     `db:"signal_id" json:"signal_id" validate:"required,uuid4"`
	GameID        uuid.UUID     `db:"game_id" json:"game_id" validate:"required,uuid4"`
	MarketType    MarketType    `db:"market_type" json:"market_type" validate:"required"`
	Side          SelectionSide `db:"side" json:"side" validate:"required"`
	SelectionText string        `db:"selection_text" json:"selection_text"`
	LineValue     *float64      `db:"line_value" json:"line_value"`
	Sportsbook    string        `db:"sportsbook" json:"sportsbook"`
	Stake         float64       `db:"stake" json:"stake" validate:"required,gt=0"`
	PriceAmerican int           `db:"price_american" json:"price_american" validate:"required"`
	EdgePercent   float64       `db:"edge_percent" json:"edge_percent"`
	Status        BetStatus     `db:"status" json:"status" validate:"required"`
	ProfitLoss    *float64      `db:"profit_loss" json:"profit_loss"`
	CLVPercent    *float64      `db:"clv_percent" json:"clv_percent"`
	PlacedAt      time.Time     `db:"placed_at" json:"placed_at" validate:"required"`
	SettledAt     *time.Time    `db:"settled_at" json:"settled_at"`
}

// IsSettled checks if the bet has been settled
func (b *Bet) IsSettled() bool {
	return b.Status.Terminal() && b.SettledAt != nil
}

// Settle applies a terminal outcome exactly once
func (b *Bet) Settle(status BetStatus, profitLoss float64, at time.Time) error {
	if b.Status != BetStatusPending {
		return ErrBetAlreadySettled
	}
	if !status.Terminal() {
		return ErrInvalidID
	}
	b.Status = status
	b.ProfitLoss = &profitLoss
	b.SettledAt = &at
	return nil
}

// GetROI returns the return on investment percentage
func (b *Bet) GetROI() float64 {
	if b.Stake == 0 || b.ProfitLoss == nil {
		return 0
	}
	return (*b.ProfitLoss / b.Stake) * 100
}
