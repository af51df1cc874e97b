package agent

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/sharpline/internal/models"
)

type fakeCLV struct {
	avg   float64
	known bool
	err   error
	calls int
}

func (f *fakeCLV) AverageCLV(_ context.Context, _ string, _ models.MarketType) (float64, bool, error) {
	f.calls++
	return f.avg, f.known, f.err
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testStrategy() *models.Strategy {
	return &models.Strategy{
		ID:                 uuid.New(),
		Name:               "conservative",
		MinEdge:            2.0,
		MinConfidence:      models.ConfidenceLow,
		KellyFraction:      0.25,
		MaxStakePct:        1.0,
		MaxExposurePerGame: 5.0,
		Enabled:            true,
	}
}

func testBankroll(balance float64) *models.BankrollState {
	return &models.BankrollState{StartingBalance: balance, Balance: balance}
}

var testNow = time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)

func testGame(kickoffIn time.Duration) *models.Game {
	return &models.Game{
		ID:          uuid.New(),
		Sport:       "nfl",
		HomeTeamID:  uuid.New(),
		AwayTeamID:  uuid.New(),
		Status:      models.GameStatusScheduled,
		ScheduledAt: testNow.Add(kickoffIn),
	}
}

func testSignal(gameID uuid.UUID) *models.Signal {
	return &models.Signal{
		ID:              uuid.New(),
		GameID:          gameID,
		MarketType:      models.MarketMoneyline,
		Side:            models.SideHome,
		Sportsbook:      "draftkings",
		PriceAmerican:   -110,
		FairProbability: 0.55,
		EdgePercent:     13.0,
		ConfidenceTier:  models.ConfidenceHigh,
		KellyFraction:   0.25,
		Status:          models.SignalStatusActive,
		GeneratedAt:     testNow,
		ExpiresAt:       testNow.Add(time.Hour),
	}
}

func gamesMap(games ...*models.Game) map[uuid.UUID]*models.Game {
	m := make(map[uuid.UUID]*models.Game)
	for _, g := range games {
		m[g.ID] = g
	}
	return m
}

func pendingBet(gameID uuid.UUID, stake float64, placedAt time.Time) *models.Bet {
	return &models.Bet{
		ID:       uuid.New(),
		SignalID: uuid.New(),
		GameID:   gameID,
		Stake:    stake,
		Status:   models.BetStatusPending,
		PlacedAt: placedAt,
	}
}

func TestEvaluatePlacesCappedStake(t *testing.T) {
	// Bankroll $1000, fair 0.55 at -110, quarter Kelly gives $13.75;
	// confidence scaling leaves it above the 1% cap, so the stake is
	// exactly $10.
	game := testGame(12 * time.Hour)
	agent := New(testStrategy(), testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{avg: 2.5, known: true}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	require.NotNil(t, bet)

	assert.Equal(t, models.ActionPlace, decision.Action)
	assert.InDelta(t, 13.75, decision.KellyStake, 0.01)
	assert.InDelta(t, 10.0, decision.ActualStake, 1e-9)
	assert.InDelta(t, 10.0, bet.Stake, 1e-9)
	assert.Equal(t, models.BetStatusPending, bet.Status)
	assert.Equal(t, models.CorrelationLow, decision.CorrelationRisk)
	assert.Contains(t, decision.Reasoning, "PLACE")
}

func TestEvaluateSkipsHighCorrelation(t *testing.T) {
	game := testGame(12 * time.Hour)
	pending := []*models.Bet{pendingBet(game.ID, 10, testNow.Add(-time.Hour))}
	agent := New(testStrategy(), testBankroll(1000), pending, gamesMap(game),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Equal(t, models.ActionSkip, decision.Action)
	assert.Equal(t, models.CorrelationHigh, decision.CorrelationRisk)
	assert.Contains(t, decision.Reasoning, "correlation")
}

func TestEvaluateSameRunSecondBetOnGameSkipped(t *testing.T) {
	// Placing during a run must update the exposure view: the second
	// signal on the same game is high correlation even though the first
	// bet has not been persisted yet.
	game := testGame(12 * time.Hour)
	agent := New(testStrategy(), testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	first, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	require.NotNil(t, bet)
	require.Equal(t, models.ActionPlace, first.Action)

	second, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Equal(t, models.ActionSkip, second.Action)
	assert.Equal(t, models.CorrelationHigh, second.CorrelationRisk)
}

func TestEvaluateMediumCorrelationStillPlaces(t *testing.T) {
	game := testGame(12 * time.Hour)
	shared1 := &models.Game{ID: uuid.New(), HomeTeamID: game.HomeTeamID, AwayTeamID: uuid.New(), ScheduledAt: testNow.Add(24 * time.Hour)}
	shared2 := &models.Game{ID: uuid.New(), HomeTeamID: uuid.New(), AwayTeamID: game.AwayTeamID, ScheduledAt: testNow.Add(24 * time.Hour)}
	pending := []*models.Bet{
		pendingBet(shared1.ID, 5, testNow.Add(-time.Hour)),
		pendingBet(shared2.ID, 5, testNow.Add(-time.Hour)),
	}
	agent := New(testStrategy(), testBankroll(1000), pending, gamesMap(game, shared1, shared2),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	require.NotNil(t, bet)
	assert.Equal(t, models.ActionPlace, decision.Action)
	assert.Equal(t, models.CorrelationMedium, decision.CorrelationRisk)
}

func TestEvaluateStakeFloor(t *testing.T) {
	game := testGame(12 * time.Hour)
	strategy := testStrategy()
	strategy.MaxStakePct = 0.05 // caps the stake at $0.50
	agent := New(strategy, testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Equal(t, models.ActionSkip, decision.Action)
	assert.Contains(t, decision.Reasoning, "minimum")
}

func TestEvaluateGameExposureCap(t *testing.T) {
	game := testGame(12 * time.Hour)
	strategy := testStrategy()
	strategy.MaxExposurePerGame = 0.5 // $5 on a $1000 bankroll
	agent := New(strategy, testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Equal(t, models.ActionSkip, decision.Action)
	assert.Contains(t, decision.Reasoning, "game exposure")
}

func TestEvaluateDailyBetLimit(t *testing.T) {
	game := testGame(12 * time.Hour)
	other := testGame(36 * time.Hour)
	strategy := testStrategy()
	limit := 1
	strategy.MaxDailyBets = &limit
	pending := []*models.Bet{pendingBet(other.ID, 5, testNow.Add(-2*time.Hour))}
	agent := New(strategy, testBankroll(1000), pending, gamesMap(game, other),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Contains(t, decision.Reasoning, "daily bet limit")
}

func TestEvaluateBlanketExposureCeiling(t *testing.T) {
	game := testGame(12 * time.Hour)
	var pending []*models.Bet
	games := gamesMap(game)
	// $295 already pending across other games; a $10 stake breaches 30%
	for i := 0; i < 5; i++ {
		g := testGame(time.Duration(48+i) * time.Hour)
		games[g.ID] = g
		pending = append(pending, pendingBet(g.ID, 59, testNow.Add(-25*time.Hour)))
	}
	agent := New(testStrategy(), testBankroll(1000), pending, games,
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	assert.Nil(t, bet)
	assert.Contains(t, decision.Reasoning, "total exposure")
}

func TestEvaluateConfiguredLimitsOverrideDefaults(t *testing.T) {
	t.Run("raised stake floor skips the default placement", func(t *testing.T) {
		// Same setup places a $10 bet under DefaultLimits
		game := testGame(12 * time.Hour)
		agent := New(testStrategy(), testBankroll(1000), nil, gamesMap(game),
			&fakeCLV{avg: 2.5, known: true}, Limits{MinStakeDollars: 25, MaxExposurePct: 30}, testLogger())

		decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
		assert.Nil(t, bet)
		assert.Equal(t, models.ActionSkip, decision.Action)
		assert.Contains(t, decision.Reasoning, "below $25.00 minimum")
	})

	t.Run("tightened exposure ceiling", func(t *testing.T) {
		// $5 pending on another game; a 1% ceiling on $1000 leaves no room
		game := testGame(12 * time.Hour)
		other := testGame(48 * time.Hour)
		pending := []*models.Bet{pendingBet(other.ID, 5, testNow.Add(-time.Hour))}
		agent := New(testStrategy(), testBankroll(1000), pending, gamesMap(game, other),
			&fakeCLV{known: false}, Limits{MinStakeDollars: 1, MaxExposurePct: 1}, testLogger())

		decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
		assert.Nil(t, bet)
		assert.Contains(t, decision.Reasoning, "total exposure limit 1%")
	})
}

func TestEvaluateRejectsIneligibleSignals(t *testing.T) {
	game := testGame(12 * time.Hour)
	agent := New(testStrategy(), testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{known: false}, DefaultLimits(), testLogger())

	t.Run("expired", func(t *testing.T) {
		sig := testSignal(game.ID)
		sig.ExpiresAt = testNow.Add(-time.Minute)
		decision, bet := agent.Evaluate(context.Background(), sig, testNow)
		assert.Nil(t, bet)
		assert.Contains(t, decision.Reasoning, "expired")
	})

	t.Run("edge below strategy minimum", func(t *testing.T) {
		sig := testSignal(game.ID)
		sig.EdgePercent = 1.0
		decision, bet := agent.Evaluate(context.Background(), sig, testNow)
		assert.Nil(t, bet)
		assert.Contains(t, decision.Reasoning, "below strategy minimum")
	})

	t.Run("tier below strategy minimum", func(t *testing.T) {
		strict := testStrategy()
		strict.MinConfidence = models.ConfidenceHigh
		strictAgent := New(strict, testBankroll(1000), nil, gamesMap(game),
			&fakeCLV{known: false}, DefaultLimits(), testLogger())

		sig := testSignal(game.ID)
		sig.ConfidenceTier = models.ConfidenceMedium
		decision, bet := strictAgent.Evaluate(context.Background(), sig, testNow)
		assert.Nil(t, bet)
		assert.Contains(t, decision.Reasoning, "confidence tier")
	})
}

func TestEvaluateCLVErrorIsNeutral(t *testing.T) {
	game := testGame(12 * time.Hour)
	agent := New(testStrategy(), testBankroll(1000), nil, gamesMap(game),
		&fakeCLV{err: assert.AnError}, DefaultLimits(), testLogger())

	decision, bet := agent.Evaluate(context.Background(), testSignal(game.ID), testNow)
	require.NotNil(t, bet)
	assert.Equal(t, models.ActionPlace, decision.Action)
}

func TestConfidenceScoreBuckets(t *testing.T) {
	table := DefaultScoringTable()
	game := testGame(12 * time.Hour)
	sig := testSignal(game.ID)

	// edge 13 (0.30) + high tier (0.30) + neutral CLV (0.05) +
	// under 24h (0.05) + moneyline (0.10)
	assert.InDelta(t, 0.80, table.Score(sig, game, 0, false, testNow), 1e-9)

	// Strong CLV history lifts the bonus to 0.20
	assert.InDelta(t, 0.95, table.Score(sig, game, 2.5, true, testNow), 1e-9)

	// A distant low-edge total scores near the bottom
	far := testGame(96 * time.Hour)
	weak := testSignal(far.ID)
	weak.EdgePercent = 2.5
	weak.ConfidenceTier = models.ConfidenceLow
	weak.MarketType = models.MarketTotal
	assert.InDelta(t, 0.40, table.Score(weak, far, 0, false, testNow), 1e-9)
}

func TestCachedCLVHistoryMemoizes(t *testing.T) {
	src := &fakeCLV{avg: 1.2, known: true}
	cached := NewCachedCLVHistory(src, time.Minute)

	for i := 0; i < 3; i++ {
		avg, known, err := cached.AverageCLV(context.Background(), "draftkings", models.MarketMoneyline)
		require.NoError(t, err)
		assert.True(t, known)
		assert.InDelta(t, 1.2, avg, 1e-9)
	}
	assert.Equal(t, 1, src.calls, "repeated lookups for the same pair hit the cache")

	_, _, err := cached.AverageCLV(context.Background(), "fanduel", models.MarketMoneyline)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}
