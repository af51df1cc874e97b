package signal

import (
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/fairprob"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/rating"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newFixture(homeElo, awayElo float64, gamesPlayed int, kickoffIn time.Duration) (*Evaluator, *models.Game, time.Time) {
	homeID, awayID := uuid.New(), uuid.New()
	store := rating.NewStore([]*models.TeamRating{
		{TeamID: homeID, Rating: homeElo, GamesPlayed: gamesPlayed},
		{TeamID: awayID, Rating: awayElo, GamesPlayed: gamesPlayed},
	})
	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	game := &models.Game{
		ID:          uuid.New(),
		Sport:       "nfl",
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		Status:      models.GameStatusScheduled,
		ScheduledAt: now.Add(kickoffIn),
	}
	est := fairprob.NewEstimator(rating.NewModel(store), game.Sport)
	eval := NewEvaluator(est, store, DefaultConfig(), testLogger())
	return eval, game, now
}

func moneylinePair(gameID uuid.UUID, homePrice, awayPrice int, observedAt time.Time) []*models.OddsQuote {
	return []*models.OddsQuote{
		{
			ID:            uuid.New(),
			GameID:        gameID,
			MarketType:    models.MarketMoneyline,
			Side:          models.SideHome,
			PriceAmerican: homePrice,
			Sportsbook:    "draftkings",
			ObservedAt:    observedAt,
		},
		{
			ID:            uuid.New(),
			GameID:        gameID,
			MarketType:    models.MarketMoneyline,
			Side:          models.SideAway,
			PriceAmerican: awayPrice,
			Sportsbook:    "draftkings",
			ObservedAt:    observedAt,
		},
	}
}

func TestEvaluateGeneratesSignalWithVigRemoved(t *testing.T) {
	// 50-point ELO edge plus home advantage gives fair prob ~0.606 while the
	// market prices both sides at -110 (fair 0.50 after devig).
	eval, game, now := newFixture(1550, 1500, 10, 72*time.Hour)

	signals := eval.Evaluate(game, moneylinePair(game.ID, -110, -110, now.Add(-time.Minute)), now)
	require.Len(t, signals, 1, "only the home side has positive edge")

	sig := signals[0]
	assert.Equal(t, models.SideHome, sig.Side)
	assert.Equal(t, models.SignalStatusActive, sig.Status)
	assert.InDelta(t, 0.5, sig.ImpliedProbability, 1e-9, "symmetric prices devig to 0.5")
	assert.InDelta(t, 110.0/210.0, sig.RawImpliedProb, 1e-9)
	assert.InDelta(t, 10.6, sig.EdgePercent, 0.2)
	assert.Equal(t, models.ConfidenceHigh, sig.ConfidenceTier)
}

func TestEvaluateSkipsEdgeBelowThreshold(t *testing.T) {
	// Even teams: fair home prob ~0.536. Market at -120/+100 devigs to ~0.522,
	// leaving ~1.4% edge, below the 2% side threshold.
	eval, game, now := newFixture(1500, 1500, 10, 72*time.Hour)

	signals := eval.Evaluate(game, moneylinePair(game.ID, -120, 100, now), now)
	assert.Empty(t, signals)
}

func TestEvaluateSanityCapRejectsOutlierEdge(t *testing.T) {
	// A 200-point gap against an even-money market implies a 28% edge, which
	// is treated as a data problem rather than a bet.
	eval, game, now := newFixture(1600, 1400, 10, 72*time.Hour)

	signals := eval.Evaluate(game, moneylinePair(game.ID, -110, -110, now), now)
	assert.Empty(t, signals)
}

func TestEvaluateDowngradesThinSample(t *testing.T) {
	eval, game, now := newFixture(1550, 1500, 2, 72*time.Hour)

	signals := eval.Evaluate(game, moneylinePair(game.ID, -110, -110, now), now)
	require.Len(t, signals, 1)
	assert.Equal(t, models.ConfidenceMedium, signals[0].ConfidenceTier,
		"high edge with under 3 games played drops one tier")
}

func TestEvaluateSingleSidedQuoteUsesRawImplied(t *testing.T) {
	eval, game, now := newFixture(1550, 1500, 10, 72*time.Hour)

	quotes := []*models.OddsQuote{{
		ID:            uuid.New(),
		GameID:        game.ID,
		MarketType:    models.MarketMoneyline,
		Side:          models.SideHome,
		PriceAmerican: 105,
		Sportsbook:    "fanduel",
		ObservedAt:    now,
	}}

	signals := eval.Evaluate(game, quotes, now)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, sig.RawImpliedProb, sig.ImpliedProbability,
		"no opposite side available, vig cannot be removed")
	assert.InDelta(t, 100.0/205.0, sig.ImpliedProbability, 1e-9)
}

func TestEvaluateUsesLatestQuotePerSelection(t *testing.T) {
	eval, game, now := newFixture(1550, 1500, 10, 72*time.Hour)

	quotes := moneylinePair(game.ID, -110, -110, now.Add(-time.Hour))
	// The line has since moved to a price with no edge left
	quotes = append(quotes, moneylinePair(game.ID, -165, 140, now.Add(-time.Minute))...)

	signals := eval.Evaluate(game, quotes, now)
	for _, sig := range signals {
		assert.NotEqual(t, -110, sig.PriceAmerican, "stale quote must not produce a signal")
	}
}

func TestEvaluatePropQuotesSkipped(t *testing.T) {
	eval, game, now := newFixture(1550, 1500, 10, 72*time.Hour)

	line := 1.5
	quotes := []*models.OddsQuote{{
		ID:            uuid.New(),
		GameID:        game.ID,
		MarketType:    models.MarketProp,
		Side:          models.SideOver,
		SelectionText: "Player anytime TD over 1.5",
		LineValue:     &line,
		PriceAmerican: 200,
		Sportsbook:    "draftkings",
		ObservedAt:    now,
	}}

	assert.Empty(t, eval.Evaluate(game, quotes, now))
}

func TestSignalExpiryClamping(t *testing.T) {
	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	offset := 48 * time.Hour

	t.Run("far future game expires at scheduled minus offset", func(t *testing.T) {
		scheduled := now.Add(96 * time.Hour)
		assert.Equal(t, scheduled.Add(-offset), computeExpiry(scheduled, offset, now))
	})

	t.Run("near game is floored at now plus buffer", func(t *testing.T) {
		scheduled := now.Add(time.Hour)
		assert.Equal(t, now.Add(minExpiryBuffer), computeExpiry(scheduled, offset, now))
	})

	t.Run("imminent game expires at kickoff", func(t *testing.T) {
		scheduled := now.Add(2 * time.Minute)
		assert.Equal(t, scheduled, computeExpiry(scheduled, offset, now))
	})
}

func TestLatestQuotesDeterministicOrder(t *testing.T) {
	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	spreadLine := -3.5
	quotes := []*models.OddsQuote{
		{MarketType: models.MarketTotal, Side: models.SideOver, Sportsbook: "fanduel", ObservedAt: now},
		{MarketType: models.MarketMoneyline, Side: models.SideHome, Sportsbook: "fanduel", ObservedAt: now},
		{MarketType: models.MarketSpread, Side: models.SideHome, Sportsbook: "draftkings", LineValue: &spreadLine, ObservedAt: now},
		{MarketType: models.MarketMoneyline, Side: models.SideAway, Sportsbook: "draftkings", ObservedAt: now},
		{MarketType: models.MarketMoneyline, Side: models.SideHome, Sportsbook: "draftkings", ObservedAt: now},
	}

	first := latestQuotes(quotes)
	require.Len(t, first, len(quotes))

	wantKeys := func(out []*models.OddsQuote) []string {
		keys := make([]string, len(out))
		for i, q := range out {
			keys[i] = string(q.MarketType) + "/" + q.Sportsbook + "/" + string(q.Side)
		}
		return keys
	}
	assert.Equal(t, []string{
		"moneyline/draftkings/away",
		"moneyline/draftkings/home",
		"moneyline/fanduel/home",
		"spread/draftkings/home",
		"total/fanduel/over",
	}, wantKeys(first))

	// Shuffled input yields the same order
	shuffled := []*models.OddsQuote{quotes[4], quotes[2], quotes[0], quotes[3], quotes[1]}
	assert.Equal(t, wantKeys(first), wantKeys(latestQuotes(shuffled)))
}

func TestTierForEdge(t *testing.T) {
	assert.Equal(t, models.ConfidenceHigh, tierForEdge(5.0))
	assert.Equal(t, models.ConfidenceMedium, tierForEdge(3.5))
	assert.Equal(t, models.ConfidenceMedium, tierForEdge(4.99))
	assert.Equal(t, models.ConfidenceLow, tierForEdge(2.0))
}
