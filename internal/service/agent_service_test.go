package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/models"
)

var agentNow = time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)

func agentTestConfig() config.AgentConfig {
	return config.AgentConfig{
		StrategyName:       "conservative",
		MaxBetsPerRun:      10,
		CLVCacheTTLMinutes: 15,
	}
}

func seedPlaceableSignal(f *fakeRepos) *models.Signal {
	f.strategies.byName["conservative"] = &models.Strategy{
		ID:                 uuid.New(),
		Name:               "conservative",
		MinEdge:            2.0,
		MinConfidence:      models.ConfidenceLow,
		KellyFraction:      0.25,
		MaxStakePct:        1.0,
		MaxExposurePerGame: 5.0,
		Enabled:            true,
	}

	game := &models.Game{
		ID:          uuid.New(),
		ExternalID:  uuid.New().String(),
		Sport:       "nfl",
		HomeTeamID:  uuid.New(),
		AwayTeamID:  uuid.New(),
		ScheduledAt: agentNow.Add(12 * time.Hour),
		Status:      models.GameStatusScheduled,
	}
	f.games.add(game)

	sig := &models.Signal{
		ID:              uuid.New(),
		GameID:          game.ID,
		MarketType:      models.MarketMoneyline,
		Side:            models.SideHome,
		Sportsbook:      "draftkings",
		PriceAmerican:   -110,
		FairProbability: 0.55,
		EdgePercent:     13.0,
		ConfidenceTier:  models.ConfidenceHigh,
		KellyFraction:   0.25,
		Status:          models.SignalStatusActive,
		GeneratedAt:     agentNow,
		ExpiresAt:       agentNow.Add(time.Hour),
	}
	f.signals.signals[sig.ID] = sig
	return sig
}

func TestAgentRunPlacesBetAfterDecisionPersisted(t *testing.T) {
	repos, f := newFakeRepos()
	sig := seedPlaceableSignal(f)
	svc := NewAgentService(repos, agentTestConfig(), testLogger())

	require.NoError(t, svc.Run(context.Background(), agentNow))

	require.Len(t, f.decisions.decisions, 1)
	assert.Equal(t, models.ActionPlace, f.decisions.decisions[0].Action)
	assert.Len(t, f.bets.bets, 1)
	assert.Equal(t, []uuid.UUID{sig.ID}, f.signals.consumed)
}

func TestAgentRunDecisionPersistFailureBlocksBet(t *testing.T) {
	// The decision row is the audit trail; when it cannot be written the bet
	// must not be placed and the signal stays available for the next run.
	repos, f := newFakeRepos()
	sig := seedPlaceableSignal(f)
	f.decisions.insertErr = errors.New("connection reset")
	svc := NewAgentService(repos, agentTestConfig(), testLogger())

	require.NoError(t, svc.Run(context.Background(), agentNow))

	assert.Empty(t, f.bets.bets, "no bet without a durable decision record")
	assert.Empty(t, f.signals.consumed)
	assert.Equal(t, models.SignalStatusActive, f.signals.signals[sig.ID].Status)
}
