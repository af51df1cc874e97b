package fairprob

import (
	"strings"
	"time"
)

// SportParams holds the sport-specific constants the estimator and signal
// evaluator depend on. Margins and totals are modeled as normal around the
// ELO-implied expectation with these standard deviations.
type SportParams struct {
	SpreadSigma      float64
	TotalSigma       float64
	LeagueAvgPerTeam float64
	HomeFieldBonus   float64
	// SignalExpiryOffset is how long before kickoff signals go stale.
	// Sports with more pre-game information flux expire earlier.
	SignalExpiryOffset time.Duration
}

// EloPerPoint converts an ELO rating gap into an implied point spread
const EloPerPoint = 25.0

var sportParams = map[string]SportParams{
	"nfl": {
		SpreadSigma:        14.0,
		TotalSigma:         10.0,
		LeagueAvgPerTeam:   22.5,
		HomeFieldBonus:     2.5,
		SignalExpiryOffset: 48 * time.Hour, // mid-week injury reports move lines
	},
	"nba": {
		SpreadSigma:        12.0,
		TotalSigma:         12.0,
		LeagueAvgPerTeam:   112.5,
		HomeFieldBonus:     3.0,
		SignalExpiryOffset: 24 * time.Hour, // daily lineup news
	},
	"nhl": {
		SpreadSigma:        2.2,
		TotalSigma:         2.5,
		LeagueAvgPerTeam:   3.0,
		HomeFieldBonus:     0.25,
		SignalExpiryOffset: 36 * time.Hour, // goalie announcements
	},
}

// ParamsForSport returns the constants for a sport, defaulting to the NHL-style
// middle expiry and NFL scoring shape for unknown leagues.
func ParamsForSport(sport string) SportParams {
	if p, ok := sportParams[strings.ToLower(sport)]; ok {
		return p
	}
	return SportParams{
		SpreadSigma:        14.0,
		TotalSigma:         10.0,
		LeagueAvgPerTeam:   22.5,
		HomeFieldBonus:     2.5,
		SignalExpiryOffset: 36 * time.Hour,
	}
}
