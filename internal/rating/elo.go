package rating

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/sharpline/internal/models"
)

// Model parameter defaults. K controls rating volatility; the home advantage
// is applied to the expectation calculation only, never stored.
const (
	DefaultKFactor         = 20.0
	DefaultHomeAdvantage   = 25.0
	DefaultEMAAlpha        = 0.15
	DefaultLeagueAvgPoints = 22.5
)

// Model derives win probabilities and point expectations from team ratings
// and updates them from final scores. The settlement engine is the only
// caller of Update.
type Model struct {
	store         *Store
	kFactor       float64
	homeAdvantage float64
	emaAlpha      float64
	leagueAvg     float64
}

// NewModel creates a strength model over the given store with default parameters
func NewModel(store *Store) *Model {
	return &Model{
		store:         store,
		kFactor:       DefaultKFactor,
		homeAdvantage: DefaultHomeAdvantage,
		emaAlpha:      DefaultEMAAlpha,
		leagueAvg:     DefaultLeagueAvgPoints,
	}
}

// NewModelForSport creates a strength model with a sport-specific per-team
// scoring average, which anchors the offensive/defensive EMA ratings.
func NewModelForSport(store *Store, leagueAvgPerTeam float64) *Model {
	m := NewModel(store)
	m.leagueAvg = leagueAvgPerTeam
	return m
}

// HomeAdvantage returns the home-advantage offset in ELO points
func (m *Model) HomeAdvantage() float64 {
	return m.homeAdvantage
}

// Store returns the backing rating store
func (m *Model) Store() *Store {
	return m.store
}

// ExpectedScore returns the probability that a team rated eloA beats a team
// rated eloB, via the standard logistic ELO formula.
func ExpectedScore(eloA, eloB float64) float64 {
	return 1 / (1 + math.Pow(10, (eloB-eloA)/400))
}

// HomeWinProbability returns the home team's win probability with the home
// advantage applied to the expectation only.
func (m *Model) HomeWinProbability(homeTeamID, awayTeamID uuid.UUID) float64 {
	homeElo := m.store.Rating(homeTeamID) + m.homeAdvantage
	awayElo := m.store.Rating(awayTeamID)
	return ExpectedScore(homeElo, awayElo)
}

// EloDifferential returns the home-adjusted rating gap for spread modeling
func (m *Model) EloDifferential(homeTeamID, awayTeamID uuid.UUID) float64 {
	return m.store.Rating(homeTeamID) + m.homeAdvantage - m.store.Rating(awayTeamID)
}

// Update applies one completed game to both teams' ratings. The two rating
// deltas are computed from the same home-adjusted expectation, so their sum
// is exactly zero: rating mass moves between the pair, it is never created.
func (m *Model) Update(homeTeamID, awayTeamID uuid.UUID, homeScore, awayScore int, at time.Time) {
	home := m.store.Get(homeTeamID)
	away := m.store.Get(awayTeamID)

	var actualHome, actualAway float64
	switch {
	case homeScore > awayScore:
		actualHome, actualAway = 1.0, 0.0
	case homeScore < awayScore:
		actualHome, actualAway = 0.0, 1.0
	default:
		actualHome, actualAway = 0.5, 0.5
	}

	expectedHome := ExpectedScore(home.Rating+m.homeAdvantage, away.Rating)
	expectedAway := 1 - expectedHome

	home.Rating += m.kFactor * (actualHome - expectedHome)
	away.Rating += m.kFactor * (actualAway - expectedAway)
	home.GamesPlayed++
	away.GamesPlayed++

	m.updateScoringRatings(home, away, float64(homeScore), float64(awayScore))

	m.store.MarkDirty(homeTeamID, at)
	m.store.MarkDirty(awayTeamID, at)
}

// updateScoringRatings maintains the offensive/defensive EMA ratings used for
// total expectations. Ratings are points per game above/below league average;
// negative defense means fewer points allowed.
func (m *Model) updateScoringRatings(home, away *models.TeamRating, homeScore, awayScore float64) {
	ema := func(current, observed float64) float64 {
		return m.emaAlpha*observed + (1-m.emaAlpha)*current
	}

	// Both sides adjust against the opponent's pre-game ratings
	homeOff, homeDef := home.OffensiveRating, home.DefensiveRating
	awayOff, awayDef := away.OffensiveRating, away.DefensiveRating

	home.OffensiveRating = ema(homeOff, homeScore-m.leagueAvg-awayDef)
	home.DefensiveRating = ema(homeDef, awayScore-m.leagueAvg-awayOff)
	away.OffensiveRating = ema(awayOff, awayScore-m.leagueAvg-homeDef)
	away.DefensiveRating = ema(awayDef, homeScore-m.leagueAvg-homeOff)
}

// ExpectedTotal calculates expected points for each side and the game total.
// Each team's expectation is league average plus its own offensive rating
// plus the opponent's defensive rating; the home side also gets the
// sport-specific home-field bonus.
func (m *Model) ExpectedTotal(homeTeamID, awayTeamID uuid.UUID, leagueAvgPerTeam, homeFieldBonus float64) (homePoints, awayPoints, total float64) {
	home := m.store.Get(homeTeamID)
	away := m.store.Get(awayTeamID)

	homePoints = leagueAvgPerTeam + home.OffensiveRating + away.DefensiveRating + homeFieldBonus
	awayPoints = leagueAvgPerTeam + away.OffensiveRating + home.DefensiveRating
	return homePoints, awayPoints, homePoints + awayPoints
}
