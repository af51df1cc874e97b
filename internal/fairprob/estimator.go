// Package fairprob converts team strength ratings into fair probabilities
// for specific market selections.
package fairprob

import (
	"fmt"
	"math"

	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/rating"
)

// Estimator derives a fair probability for one side of a market from the
// team strength model. It is read-only over the rating store.
type Estimator struct {
	model  *rating.Model
	params SportParams
}

// NewEstimator creates an estimator for one sport
func NewEstimator(model *rating.Model, sport string) *Estimator {
	return &Estimator{
		model:  model,
		params: ParamsForSport(sport),
	}
}

// Params returns the sport constants the estimator was built with
func (e *Estimator) Params() SportParams {
	return e.params
}

// FairProbability returns the model's fair probability that the quoted
// selection wins. The boolean is false when no probability can be produced
// (prop markets, missing line values); callers must skip such quotes rather
// than fabricate a probability.
func (e *Estimator) FairProbability(game *models.Game, quote *models.OddsQuote) (float64, bool, error) {
	switch quote.MarketType {
	case models.MarketMoneyline:
		return e.moneylineProbability(game, quote)
	case models.MarketSpread:
		return e.spreadProbability(game, quote)
	case models.MarketTotal:
		return e.totalProbability(game, quote)
	case models.MarketProp:
		return 0, false, nil
	}
	return 0, false, fmt.Errorf("unknown market type %q", quote.MarketType)
}

func (e *Estimator) moneylineProbability(game *models.Game, quote *models.OddsQuote) (float64, bool, error) {
	pHome := e.model.HomeWinProbability(game.HomeTeamID, game.AwayTeamID)

	switch quote.Side {
	case models.SideHome:
		return pHome, true, nil
	case models.SideAway:
		return 1 - pHome, true, nil
	}
	return 0, false, fmt.Errorf("moneyline quote for %q: %w", quote.SelectionText, models.ErrUnresolvedSelection)
}

// spreadProbability models the final margin as N(impliedMargin, sigma) where
// impliedMargin comes from the ELO gap at 25 points per point of spread. The
// selected side covers when its score plus its line beats the opponent.
func (e *Estimator) spreadProbability(game *models.Game, quote *models.OddsQuote) (float64, bool, error) {
	if quote.LineValue == nil {
		return 0, false, nil
	}
	line := *quote.LineValue
	impliedMargin := e.model.EloDifferential(game.HomeTeamID, game.AwayTeamID) / EloPerPoint

	switch quote.Side {
	case models.SideHome:
		// P(homeScore + line > awayScore) = P(margin > -line)
		return normCDF((impliedMargin + line) / e.params.SpreadSigma), true, nil
	case models.SideAway:
		// P(awayScore + line > homeScore) = P(margin < line)
		return normCDF((line - impliedMargin) / e.params.SpreadSigma), true, nil
	}
	return 0, false, fmt.Errorf("spread quote for %q: %w", quote.SelectionText, models.ErrUnresolvedSelection)
}

func (e *Estimator) totalProbability(game *models.Game, quote *models.OddsQuote) (float64, bool, error) {
	if quote.LineValue == nil {
		return 0, false, nil
	}
	line := *quote.LineValue
	_, _, expectedTotal := e.model.ExpectedTotal(
		game.HomeTeamID,
		game.AwayTeamID,
		e.params.LeagueAvgPerTeam,
		e.params.HomeFieldBonus,
	)

	switch quote.Side {
	case models.SideOver:
		return normCDF((expectedTotal - line) / e.params.TotalSigma), true, nil
	case models.SideUnder:
		return normCDF((line - expectedTotal) / e.params.TotalSigma), true, nil
	}
	return 0, false, fmt.Errorf("total quote for %q: %w", quote.SelectionText, models.ErrUnresolvedSelection)
}

// normCDF is the standard normal cumulative distribution function
func normCDF(z float64) float64 {
	return 0.5 * math.Erfc(-z/math.Sqrt2)
}
