// Package oddsmath provides odds conversion, vig removal, and Kelly
// criterion calculations. All functions are pure and stateless.
package oddsmath

import (
	"math"

	"github.com/yourusername/sharpline/internal/models"
)

// AmericanToDecimal converts American odds to decimal odds
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, models.ErrInvalidOdds
	}
	if american > 0 {
		return 1 + float64(american)/100, nil
	}
	return 1 + 100/math.Abs(float64(american)), nil
}

// DecimalToAmerican converts decimal odds to American odds. Round-trips with
// AmericanToDecimal within one unit.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal <= 1 {
		return 0, models.ErrInvalidOdds
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1) * 100)), nil
	}
	return int(math.Round(-100 / (decimal - 1))), nil
}

// ImpliedProbability calculates the implied probability of American odds
func ImpliedProbability(american int) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return 1 / decimal, nil
}

// RemoveVigMultiplicative strips the bookmaker overround from a two-outcome
// implied-probability pair, preserving their ratio. Only valid when exactly
// two mutually exclusive outcomes are priced.
func RemoveVigMultiplicative(probA, probB float64) (float64, float64, error) {
	if probA <= 0 || probB <= 0 || probA >= 1 || probB >= 1 {
		return 0, 0, models.ErrInvalidProbability
	}
	total := probA + probB
	return probA / total, probB / total, nil
}

// RemoveVigAdditive splits the overround evenly between the two outcomes
func RemoveVigAdditive(probA, probB float64) (float64, float64, error) {
	if probA <= 0 || probB <= 0 || probA >= 1 || probB >= 1 {
		return 0, 0, models.ErrInvalidProbability
	}
	vig := probA + probB - 1.0
	return probA - vig/2, probB - vig/2, nil
}

// CalculateEdge returns the signed edge percentage between the model's fair
// probability and the market-implied probability.
func CalculateEdge(fairProb, impliedProb float64) float64 {
	return (fairProb - impliedProb) * 100
}

// KellyFraction calculates the fractional Kelly stake as a fraction of
// bankroll. Negative-edge results clamp to zero: no edge, no stake.
func KellyFraction(fairProb, decimalOdds, fraction float64) (float64, error) {
	if decimalOdds <= 1 {
		return 0, models.ErrInvalidOdds
	}
	if fairProb < 0 || fairProb > 1 {
		return 0, models.ErrInvalidProbability
	}
	b := decimalOdds - 1
	p := fairProb
	q := 1 - fairProb

	full := (b*p - q) / b
	return math.Max(0, full*fraction), nil
}

// RecommendedStake calculates the recommended stake in dollars using
// fractional Kelly, capped at maxStakePct of bankroll.
func RecommendedStake(fairProb float64, american int, bankroll, fraction, maxStakePct float64) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	kellyPct, err := KellyFraction(fairProb, decimal, fraction)
	if err != nil {
		return 0, err
	}
	stakePct := math.Min(kellyPct, maxStakePct)
	return bankroll * stakePct, nil
}

// CalculateCLV returns closing line value as a probability-space percentage.
// Positive means the entry price beat the closing line.
func CalculateCLV(entryAmerican, closeAmerican int) (float64, error) {
	entryProb, err := ImpliedProbability(entryAmerican)
	if err != nil {
		return 0, err
	}
	closeProb, err := ImpliedProbability(closeAmerican)
	if err != nil {
		return 0, err
	}
	return (closeProb - entryProb) * 100, nil
}

// ExpectedValue calculates the expected value of a bet in dollars
func ExpectedValue(fairProb float64, american int, stake float64) (float64, error) {
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	winAmount := stake * (decimal - 1)
	return fairProb*winAmount - (1-fairProb)*stake, nil
}

// BreakEvenProbability returns the win rate needed to break even at the odds
func BreakEvenProbability(american int) (float64, error) {
	return ImpliedProbability(american)
}

// ProfitFromBet calculates profit or loss from a settled bet
func ProfitFromBet(stake float64, american int, won bool) (float64, error) {
	if american == 0 {
		return 0, models.ErrInvalidOdds
	}
	if !won {
		return -stake, nil
	}
	decimal, err := AmericanToDecimal(american)
	if err != nil {
		return 0, err
	}
	return stake * (decimal - 1), nil
}
