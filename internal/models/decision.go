package models

import (
	"time"

	"github.com/google/uuid"
)

// DecisionAction is the agent's verdict on a signal
type DecisionAction string

const (
	ActionPlace DecisionAction = "place"
	ActionSkip  DecisionAction = "skip"
)

// CorrelationRisk classifies dependence on already-open positions
type CorrelationRisk string

const (
	CorrelationLow    CorrelationRisk = "low"
	CorrelationMedium CorrelationRisk = "medium"
	CorrelationHigh   CorrelationRisk = "high"
)

// Decision is the append-only audit record the agent writes for every
// evaluated signal, placed or skipped.
type Decision struct {
	ID                 uuid.UUID       `db:"id" json:"id" validate:"required,uuid4"`
	SignalID           uuid.UUID       `db:"signal_id" json:"signal_id" validate:"required,uuid4"`
	Action             DecisionAction  `db:"action" json:"action" validate:"required,oneof=place skip"`
	Reasoning          string          `db:"reasoning" json:"reasoning" validate:"required"`
	ConfidenceScore    float64         `db:"confidence_score" json:"confidence_score" validate:"gte=0,lte=1"`
	KellyStake         float64         `db:"kelly_stake" json:"kelly_stake"`
	ActualStake        float64         `db:"actual_stake" json:"actual_stake"`
	EdgePercent        float64         `db:"edge_percent" json:"edge_percent"`
	BankrollAtDecision float64         `db:"bankroll_at_decision" json:"bankroll_at_decision"`
	ExposurePct        float64         `db:"exposure_pct" json:"exposure_pct"`
	CorrelationRisk    CorrelationRisk `db:"correlation_risk" json:"correlation_risk" validate:"required,oneof=low medium high"`
	DecidedAt          time.Time       `db:"decided_at" json:"decided_at"`
}

// Placed reports whether the decision resulted in a bet
func (d *Decision) Placed() bool {
	return d.Action == ActionPlace
}
