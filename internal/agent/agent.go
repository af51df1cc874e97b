// Package agent implements the staking decision agent: it turns active
// signals into auditable place/skip decisions under bankroll policy limits.
package agent

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
)

// Limits are the operator-tunable bankroll guardrails applied on top of the
// per-strategy settings.
type Limits struct {
	// MinStakeDollars is the floor below which a bet is not worth placing
	MinStakeDollars float64
	// MaxExposurePct caps total pending stake across all games as a
	// percentage of bankroll
	MaxExposurePct float64
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MinStakeDollars: 1.0,
		MaxExposurePct:  30.0,
	}
}

// Agent evaluates candidate signals against one strategy and a fixed snapshot
// of bankroll and pending-bet state. The snapshot is taken once per run;
// bets placed during the run are added to the in-memory pending set so later
// candidates in the same pass see correct exposure and correlation.
type Agent struct {
	strategy *models.Strategy
	bankroll *models.BankrollState
	pending  []*models.Bet
	games    map[uuid.UUID]*models.Game
	clv      CLVHistory
	limits   Limits
	table    ScoringTable
	logger   *logrus.Logger
}

// New creates an agent over a run snapshot. games must contain every game
// referenced by a pending bet or a candidate signal.
func New(
	strategy *models.Strategy,
	bankroll *models.BankrollState,
	pending []*models.Bet,
	games map[uuid.UUID]*models.Game,
	clv CLVHistory,
	limits Limits,
	logger *logrus.Logger,
) *Agent {
	return &Agent{
		strategy: strategy,
		bankroll: bankroll,
		pending:  pending,
		games:    games,
		clv:      clv,
		limits:   limits,
		table:    DefaultScoringTable(),
		logger:   logger,
	}
}

// Evaluate decides place or skip for one signal. Every call produces a
// decision record; a non-nil bet is returned only on place. The returned bet
// is already counted against the agent's pending exposure.
func (a *Agent) Evaluate(ctx context.Context, sig *models.Signal, now time.Time) (*models.Decision, *models.Bet) {
	game, ok := a.games[sig.GameID]
	if !ok {
		return a.skip(sig, 0, 0, 0, models.CorrelationLow, "game not found for signal", now), nil
	}

	if !sig.IsActive(now) {
		return a.skip(sig, 0, 0, 0, models.CorrelationLow, "signal expired or already consumed", now), nil
	}
	if sig.EdgePercent < a.strategy.MinEdge {
		reason := fmt.Sprintf("edge %.2f%% below strategy minimum %.2f%%", sig.EdgePercent, a.strategy.MinEdge)
		return a.skip(sig, 0, 0, 0, models.CorrelationLow, reason, now), nil
	}
	if !a.strategy.AcceptsTier(sig.ConfidenceTier) {
		reason := fmt.Sprintf("confidence tier %s below strategy minimum %s", sig.ConfidenceTier, a.strategy.MinConfidence)
		return a.skip(sig, 0, 0, 0, models.CorrelationLow, reason, now), nil
	}

	confidence := a.confidenceScore(ctx, sig, game, now)
	risk := a.correlationRisk(game)

	if risk == models.CorrelationHigh {
		reason := fmt.Sprintf("high correlation risk, pending bet already on game %s", sig.GameID)
		return a.skip(sig, confidence, 0, 0, risk, reason, now), nil
	}

	kellyStake, actualStake, err := a.stake(sig, confidence)
	if err != nil {
		return a.skip(sig, confidence, 0, 0, risk, fmt.Sprintf("stake calculation failed: %v", err), now), nil
	}

	if actualStake < a.limits.MinStakeDollars {
		reason := fmt.Sprintf("stake $%.2f below $%.2f minimum", actualStake, a.limits.MinStakeDollars)
		return a.skip(sig, confidence, kellyStake, 0, risk, reason, now), nil
	}

	if reason, ok := a.withinLimits(sig.GameID, actualStake, now); !ok {
		return a.skip(sig, confidence, kellyStake, actualStake, risk, reason, now), nil
	}

	bet := &models.Bet{
		ID:            uuid.New(),
		SignalID:      sig.ID,
		GameID:        sig.GameID,
		MarketType:    sig.MarketType,
		Side:          sig.Side,
		SelectionText: sig.SelectionText,
		LineValue:     sig.LineValue,
		Sportsbook:    sig.Sportsbook,
		Stake:         actualStake,
		PriceAmerican: sig.PriceAmerican,
		EdgePercent:   sig.EdgePercent,
		Status:        models.BetStatusPending,
		PlacedAt:      now,
	}
	a.pending = append(a.pending, bet)

	factors := []string{
		fmt.Sprintf("edge %.1f%%", sig.EdgePercent),
		fmt.Sprintf("model confidence %s", sig.ConfidenceTier),
		fmt.Sprintf("confidence score %.2f", confidence),
		fmt.Sprintf("correlation risk %s", risk),
		fmt.Sprintf("kelly stake $%.2f", kellyStake),
		fmt.Sprintf("actual stake $%.2f (%.2f%% of bankroll)", actualStake, actualStake/a.bankroll.Balance*100),
	}

	decision := &models.Decision{
		ID:                 uuid.New(),
		SignalID:           sig.ID,
		Action:             models.ActionPlace,
		Reasoning:          "PLACE: " + strings.Join(factors, " | "),
		ConfidenceScore:    confidence,
		KellyStake:         kellyStake,
		ActualStake:        actualStake,
		EdgePercent:        sig.EdgePercent,
		BankrollAtDecision: a.bankroll.Balance,
		ExposurePct:        a.exposurePct(),
		CorrelationRisk:    risk,
		DecidedAt:          now,
	}

	a.logger.WithFields(logrus.Fields{
		"signal_id":  sig.ID,
		"game_id":    sig.GameID,
		"market":     sig.MarketType,
		"stake":      actualStake,
		"confidence": confidence,
	}).Info("Bet placed")

	return decision, bet
}

// PendingBets returns the current pending set including bets placed this run
func (a *Agent) PendingBets() []*models.Bet {
	return a.pending
}

func (a *Agent) confidenceScore(ctx context.Context, sig *models.Signal, game *models.Game, now time.Time) float64 {
	clvAvg, clvKnown, err := a.clv.AverageCLV(ctx, sig.Sportsbook, sig.MarketType)
	if err != nil {
		// No history is a neutral input, not a failure
		a.logger.WithError(err).WithField("sportsbook", sig.Sportsbook).Warn("CLV history lookup failed")
		clvAvg, clvKnown = 0, false
	}
	return a.table.Score(sig, game, clvAvg, clvKnown, now)
}

// correlationRisk is high when any pending bet is on the same game, medium
// when two or more pending bets involve either of the game's teams.
func (a *Agent) correlationRisk(game *models.Game) models.CorrelationRisk {
	sameTeam := 0
	for _, bet := range a.pending {
		if bet.GameID == game.ID {
			return models.CorrelationHigh
		}
		betGame, ok := a.games[bet.GameID]
		if !ok {
			continue
		}
		if sharesTeam(betGame, game) {
			sameTeam++
		}
	}
	if sameTeam >= 2 {
		return models.CorrelationMedium
	}
	return models.CorrelationLow
}

func sharesTeam(a, b *models.Game) bool {
	return a.HomeTeamID == b.HomeTeamID || a.HomeTeamID == b.AwayTeamID ||
		a.AwayTeamID == b.HomeTeamID || a.AwayTeamID == b.AwayTeamID
}

// stake sizes the bet: fractional Kelly scaled by the confidence score,
// capped at the per-bet maximum stake percentage.
func (a *Agent) stake(sig *models.Signal, confidence float64) (kellyStake, actualStake float64, err error) {
	decimalOdds, err := oddsmath.AmericanToDecimal(sig.PriceAmerican)
	if err != nil {
		return 0, 0, err
	}
	kellyPct, err := oddsmath.KellyFraction(sig.FairProbability, decimalOdds, a.strategy.KellyFraction)
	if err != nil {
		return 0, 0, err
	}

	kellyStake = a.bankroll.Balance * kellyPct
	adjusted := kellyStake * confidence

	maxStake := a.bankroll.Balance * a.strategy.MaxStakePct / 100
	actualStake = math.Min(adjusted, maxStake)

	return roundCents(kellyStake), roundCents(actualStake), nil
}

// withinLimits enforces the per-game exposure cap, the optional daily bet
// count, and the blanket bankroll-wide exposure ceiling.
func (a *Agent) withinLimits(gameID uuid.UUID, stake float64, now time.Time) (string, bool) {
	var gameExposure, totalExposure float64
	placedToday := 0
	for _, bet := range a.pending {
		totalExposure += bet.Stake
		if bet.GameID == gameID {
			gameExposure += bet.Stake
		}
		if sameDay(bet.PlacedAt, now) {
			placedToday++
		}
	}

	maxGameExposure := a.bankroll.Balance * a.strategy.MaxExposurePerGame / 100
	if gameExposure+stake > maxGameExposure {
		return fmt.Sprintf("game exposure limit $%.2f would be exceeded", maxGameExposure), false
	}

	if a.strategy.MaxDailyBets != nil && placedToday >= *a.strategy.MaxDailyBets {
		return fmt.Sprintf("daily bet limit %d reached", *a.strategy.MaxDailyBets), false
	}

	maxTotal := a.bankroll.Balance * a.limits.MaxExposurePct / 100
	if totalExposure+stake > maxTotal {
		return fmt.Sprintf("total exposure limit %.0f%% of bankroll would be exceeded", a.limits.MaxExposurePct), false
	}

	return "", true
}

func (a *Agent) skip(
	sig *models.Signal,
	confidence, kellyStake, actualStake float64,
	risk models.CorrelationRisk,
	reason string,
	now time.Time,
) *models.Decision {
	a.logger.WithFields(logrus.Fields{
		"signal_id": sig.ID,
		"game_id":   sig.GameID,
		"reason":    reason,
	}).Info("Signal skipped")

	return &models.Decision{
		ID:                 uuid.New(),
		SignalID:           sig.ID,
		Action:             models.ActionSkip,
		Reasoning:          "SKIP: " + reason,
		ConfidenceScore:    confidence,
		KellyStake:         kellyStake,
		ActualStake:        actualStake,
		EdgePercent:        sig.EdgePercent,
		BankrollAtDecision: a.bankroll.Balance,
		ExposurePct:        a.exposurePct(),
		CorrelationRisk:    risk,
		DecidedAt:          now,
	}
}

func (a *Agent) exposurePct() float64 {
	if a.bankroll.Balance <= 0 {
		return 0
	}
	var total float64
	for _, bet := range a.pending {
		total += bet.Stake
	}
	return roundCents(total / a.bankroll.Balance * 100)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
