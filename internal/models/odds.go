package models

import (
	"time"

	"github.com/google/uuid"
)

// OddsQuote represents a point-in-time odds snapshot for one selection.
// Quotes are append-only; the latest quote per (game, market, sportsbook,
// selection) is the one with the greatest ObservedAt.
type OddsQuote struct {
	ID            uuid.UUID     `db:"id" json:"id" validate:"required,uuid4"`
	GameID        uuid.UUID     `db:"game_id" json:"game_id" validate:"required,uuid4"`
	MarketType    MarketType    `db:"market_type" json:"market_type" validate:"required,oneof=moneyline spread total prop"`
	Side          SelectionSide `db:"side" json:"side" validate:"required,oneof=home away over under"`
	SelectionText string        `db:"selection_text" json:"selection_text"`
	LineValue     *float64      `db:"line_value" json:"line_value"`
	PriceAmerican int           `db:"price_american" json:"price_american" validate:"required"`
	Sportsbook    string        `db:"sportsbook" json:"sportsbook" validate:"required"`
	ObservedAt    time.Time     `db:"observed_at" json:"observed_at" validate:"required"`
}

// Selection returns the structured selection for this quote
func (q *OddsQuote) Selection() Selection {
	return Selection{Side: q.Side, Label: q.SelectionText, Line: q.LineValue}
}

// PairKey identifies the two-way group a quote belongs to for vig removal.
// Both sides of a spread share the same absolute line, so the key folds the
// sign of the line value.
type PairKey struct {
	MarketType MarketType
	Sportsbook string
	Line       float64
	HasLine    bool
}

// GroupKey returns the vig-removal grouping key for this quote
func (q *OddsQuote) GroupKey() PairKey {
	key := PairKey{MarketType: q.MarketType, Sportsbook: q.Sportsbook}
	if q.LineValue != nil {
		key.HasLine = true
		key.Line = *q.LineValue
		if q.MarketType == MarketSpread && key.Line < 0 {
			key.Line = -key.Line
		}
	}
	return key
}

// SignalKey is the natural key under which at most one active signal exists
type SignalKey struct {
	GameID        uuid.UUID
	MarketType    MarketType
	Sportsbook    string
	PriceAmerican int
}

// Key returns the active-signal natural key for this quote
func (q *OddsQuote) Key() SignalKey {
	return SignalKey{
		GameID:        q.GameID,
		MarketType:    q.MarketType,
		Sportsbook:    q.Sportsbook,
		PriceAmerican: q.PriceAmerican,
	}
}
