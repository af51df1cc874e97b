package service

import (
	"fmt"
	"time"

	"github.com/yourusername/sharpline/internal/models"
)

// Quote sanity bounds. Prices outside these are feed errors, not longshots
// we want to model.
const (
	minAbsPrice = 100
	maxAbsPrice = 10000

	// Events older than this are stale feed artifacts
	maxEventAge = 30 * 24 * time.Hour
)

// DataValidator performs sanity checks on normalized entities before they
// are persisted
type DataValidator struct{}

// NewDataValidator creates a validator
func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// ValidateGame returns the list of problems with a normalized game
func (v *DataValidator) ValidateGame(game *models.Game) []string {
	var problems []string

	if game.ExternalID == "" {
		problems = append(problems, "missing external ID")
	}
	if game.Sport == "" {
		problems = append(problems, "missing sport")
	}
	if game.ScheduledAt.IsZero() {
		problems = append(problems, "missing scheduled time")
	} else if time.Since(game.ScheduledAt) > maxEventAge {
		problems = append(problems, fmt.Sprintf("scheduled time %s is more than %v in the past", game.ScheduledAt.Format(time.RFC3339), maxEventAge))
	}
	if game.HomeTeamID == game.AwayTeamID {
		problems = append(problems, "home and away teams are identical")
	}

	return problems
}

// ValidateQuote returns the list of problems with a normalized quote
func (v *DataValidator) ValidateQuote(quote *models.OddsQuote) []string {
	var problems []string

	abs := quote.PriceAmerican
	if abs < 0 {
		abs = -abs
	}
	if abs < minAbsPrice || abs > maxAbsPrice {
		problems = append(problems, fmt.Sprintf("price %+d outside [%d, %d] magnitude bounds", quote.PriceAmerican, minAbsPrice, maxAbsPrice))
	}

	switch quote.MarketType {
	case models.MarketSpread, models.MarketTotal:
		if quote.LineValue == nil {
			problems = append(problems, fmt.Sprintf("%s quote without a line", quote.MarketType))
		}
	case models.MarketMoneyline:
		if quote.LineValue != nil {
			problems = append(problems, "moneyline quote with a line")
		}
	}

	if quote.MarketType == models.MarketTotal {
		if quote.Side != models.SideOver && quote.Side != models.SideUnder {
			problems = append(problems, fmt.Sprintf("total quote with side %q", quote.Side))
		}
		if quote.LineValue != nil && *quote.LineValue <= 0 {
			problems = append(problems, fmt.Sprintf("total line %.1f must be positive", *quote.LineValue))
		}
	}

	if quote.Sportsbook == "" {
		problems = append(problems, "missing sportsbook")
	}
	if quote.ObservedAt.IsZero() {
		problems = append(problems, "missing observation time")
	}

	return problems
}
