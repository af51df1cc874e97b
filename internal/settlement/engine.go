// Package settlement resolves pending bets against final scores, computes
// profit/loss and closing line value, and feeds results back into the team
// strength model.
package settlement

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/oddsmath"
	"github.com/yourusername/sharpline/internal/rating"
)

// DefaultCLVWindow is how far before kickoff a quote still counts as the close
const DefaultCLVWindow = 30 * time.Minute

// Engine settles bets for completed games. It is the only writer of rating
// state and bankroll aggregates.
type Engine struct {
	model     *rating.Model
	clvWindow time.Duration
	logger    *logrus.Logger
}

// NewEngine creates a settlement engine over the strength model
func NewEngine(model *rating.Model, logger *logrus.Logger) *Engine {
	return &Engine{
		model:     model,
		clvWindow: DefaultCLVWindow,
		logger:    logger,
	}
}

// Outcome determines the terminal status for a bet given the final game state.
// Cancelled games void the bet. Spread and total bets landing exactly on the
// line push; a tied moneyline also pushes rather than losing both sides.
func Outcome(bet *models.Bet, game *models.Game) (models.BetStatus, error) {
	if game.Status == models.GameStatusCancelled {
		return models.BetStatusVoid, nil
	}
	if !game.IsFinal() {
		return "", fmt.Errorf("game %s is not final", game.ID)
	}
	homeScore, awayScore := *game.HomeScore, *game.AwayScore

	switch bet.MarketType {
	case models.MarketMoneyline:
		return moneylineOutcome(bet.Side, homeScore, awayScore)
	case models.MarketSpread:
		return spreadOutcome(bet, homeScore, awayScore)
	case models.MarketTotal:
		return totalOutcome(bet, homeScore+awayScore)
	case models.MarketProp:
		// Prop grading needs player stat feeds we do not ingest
		return models.BetStatusVoid, nil
	}
	return "", fmt.Errorf("unknown market type %q", bet.MarketType)
}

func moneylineOutcome(side models.SelectionSide, homeScore, awayScore int) (models.BetStatus, error) {
	if homeScore == awayScore {
		return models.BetStatusPush, nil
	}
	homeWon := homeScore > awayScore
	switch side {
	case models.SideHome:
		return wonOrLost(homeWon), nil
	case models.SideAway:
		return wonOrLost(!homeWon), nil
	}
	return "", fmt.Errorf("moneyline bet on side %q: %w", side, models.ErrUnresolvedSelection)
}

// spreadOutcome grades the side's score plus its recorded line against the
// opponent. The line is stored per side at ingestion, so no sign juggling is
// needed here.
func spreadOutcome(bet *models.Bet, homeScore, awayScore int) (models.BetStatus, error) {
	if bet.LineValue == nil {
		return "", fmt.Errorf("spread bet %s has no line value", bet.ID)
	}
	line := *bet.LineValue

	var adjusted, opponent float64
	switch bet.Side {
	case models.SideHome:
		adjusted, opponent = float64(homeScore)+line, float64(awayScore)
	case models.SideAway:
		adjusted, opponent = float64(awayScore)+line, float64(homeScore)
	default:
		return "", fmt.Errorf("spread bet on side %q: %w", bet.Side, models.ErrUnresolvedSelection)
	}

	switch {
	case adjusted > opponent:
		return models.BetStatusWon, nil
	case adjusted == opponent:
		return models.BetStatusPush, nil
	}
	return models.BetStatusLost, nil
}

func totalOutcome(bet *models.Bet, actualTotal int) (models.BetStatus, error) {
	if bet.LineValue == nil {
		return "", fmt.Errorf("total bet %s has no line value", bet.ID)
	}
	line := *bet.LineValue
	total := float64(actualTotal)

	if total == line {
		return models.BetStatusPush, nil
	}
	switch bet.Side {
	case models.SideOver:
		return wonOrLost(total > line), nil
	case models.SideUnder:
		return wonOrLost(total < line), nil
	}
	return "", fmt.Errorf("total bet on side %q: %w", bet.Side, models.ErrUnresolvedSelection)
}

func wonOrLost(won bool) models.BetStatus {
	if won {
		return models.BetStatusWon
	}
	return models.BetStatusLost
}

// ProfitLoss returns the realized P&L for a terminal status
func ProfitLoss(bet *models.Bet, status models.BetStatus) (float64, error) {
	switch status {
	case models.BetStatusWon:
		return oddsmath.ProfitFromBet(bet.Stake, bet.PriceAmerican, true)
	case models.BetStatusLost:
		return -bet.Stake, nil
	case models.BetStatusPush, models.BetStatusVoid:
		return 0, nil
	}
	return 0, fmt.Errorf("status %q is not terminal", status)
}

// SetCLVWindow overrides the pre-kickoff window in which a quote counts as
// the close. Non-positive values keep the current window.
func (e *Engine) SetCLVWindow(window time.Duration) {
	if window > 0 {
		e.clvWindow = window
	}
}

// ClosingQuote picks the closing quote for CLV: the latest quote for the same
// (market, sportsbook, side, line) observed within the pre-kickoff window.
// Returns nil when no qualifying quote exists.
func (e *Engine) ClosingQuote(bet *models.Bet, game *models.Game, quotes []*models.OddsQuote) *models.OddsQuote {
	windowStart := game.ScheduledAt.Add(-e.clvWindow)

	var closing *models.OddsQuote
	for _, q := range quotes {
		if q.MarketType != bet.MarketType || q.Sportsbook != bet.Sportsbook || q.Side != bet.Side {
			continue
		}
		if !lineMatches(bet.LineValue, q.LineValue) {
			continue
		}
		if q.ObservedAt.Before(windowStart) || q.ObservedAt.After(game.ScheduledAt) {
			continue
		}
		if closing == nil || q.ObservedAt.After(closing.ObservedAt) {
			closing = q
		}
	}
	return closing
}

func lineMatches(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SettleBet applies the outcome, P&L, and CLV to one pending bet in place.
// The quotes slice is the game's full odds history, used to find the close.
func (e *Engine) SettleBet(bet *models.Bet, game *models.Game, quotes []*models.OddsQuote, now time.Time) error {
	status, err := Outcome(bet, game)
	if err != nil {
		return fmt.Errorf("determine outcome for bet %s: %w", bet.ID, err)
	}
	profitLoss, err := ProfitLoss(bet, status)
	if err != nil {
		return fmt.Errorf("compute P&L for bet %s: %w", bet.ID, err)
	}
	if err := bet.Settle(status, profitLoss, now); err != nil {
		return fmt.Errorf("settle bet %s: %w", bet.ID, err)
	}

	log := e.logger.WithFields(logrus.Fields{
		"bet_id":      bet.ID,
		"game_id":     game.ID,
		"market":      bet.MarketType,
		"status":      status,
		"profit_loss": profitLoss,
	})

	if closing := e.ClosingQuote(bet, game, quotes); closing != nil {
		clv, err := oddsmath.CalculateCLV(bet.PriceAmerican, closing.PriceAmerican)
		if err != nil {
			log.WithError(err).Warn("CLV calculation failed")
		} else {
			bet.CLVPercent = &clv
			log = log.WithField("clv_percent", clv)
		}
	}

	log.Info("Bet settled")
	return nil
}

// ApplyResult feeds one final score into the strength model. Call exactly
// once per completed game, independent of how many bets it carried.
func (e *Engine) ApplyResult(game *models.Game, now time.Time) error {
	if !game.IsFinal() {
		return fmt.Errorf("game %s is not final", game.ID)
	}
	e.model.Update(game.HomeTeamID, game.AwayTeamID, *game.HomeScore, *game.AwayScore, now)

	e.logger.WithFields(logrus.Fields{
		"game_id":    game.ID,
		"home_score": *game.HomeScore,
		"away_score": *game.AwayScore,
	}).Debug("Ratings updated from final score")
	return nil
}

// RecomputeBankroll rebuilds the bankroll aggregates from the full settled
// history. Aggregates are never incrementally accumulated, so a re-run after
// a partial failure converges to the same state.
func (e *Engine) RecomputeBankroll(bankroll *models.BankrollState, settled []*models.Bet, now time.Time) {
	bankroll.Recompute(settled)
	bankroll.UpdatedAt = now

	e.logger.WithFields(logrus.Fields{
		"balance":     bankroll.Balance,
		"total_bets":  bankroll.TotalBets,
		"roi_percent": bankroll.ROIPercent,
		"win_rate":    bankroll.WinRate,
		"avg_clv":     bankroll.AvgCLV,
	}).Info("Bankroll recomputed")
}
