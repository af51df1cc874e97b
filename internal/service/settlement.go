package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/fairprob"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/rating"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/settlement"
)

// resultsLookbackDays is how far back the results fetch reaches. Settlement
// runs daily; three days tolerates postponements and missed runs.
const resultsLookbackDays = 3

// SettlementService runs the settlement pass: pull recent results, grade
// pending bets on final games, feed every final score into the strength model
// exactly once, and rebuild the bankroll from the full settled history.
//
// Rating updates are driven by the set of final games not yet applied, not by
// the set of games carrying bets: the model learns from every completed game,
// and a game whose bets failed to persist is regraded without moving ratings
// a second time.
type SettlementService struct {
	repos       *repository.Repositories
	ingestion   *IngestionService
	cfg         config.SettlementConfig
	logger      *logrus.Logger
	auditLogger *logger.AuditLogger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	repos *repository.Repositories,
	ingestion *IngestionService,
	cfg config.SettlementConfig,
	baseLogger *logrus.Logger,
) *SettlementService {
	return &SettlementService{
		repos:       repos,
		ingestion:   ingestion,
		cfg:         cfg,
		logger:      baseLogger,
		auditLogger: logger.NewAuditLogger(baseLogger),
	}
}

// Run executes one settlement pass
func (s *SettlementService) Run(ctx context.Context, now time.Time) error {
	startTime := time.Now()

	// Record any newly final scores first
	if s.ingestion != nil {
		if _, err := s.ingestion.IngestResults(ctx, resultsLookbackDays); err != nil {
			// Settlement can still proceed on games already marked final
			s.logger.Warnf("Results ingestion incomplete: %v", err)
		}
	}

	betGames, err := s.repos.Game.GetFinalWithPendingBets(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settleable games: %w", err)
	}
	unappliedGames, err := s.repos.Game.GetFinalWithUnappliedRatings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load games awaiting rating updates: %w", err)
	}
	if len(betGames) == 0 && len(unappliedGames) == 0 {
		s.logger.Info("No games awaiting settlement")
		return nil
	}

	settledCount := 0
	for _, game := range betGames {
		n, err := s.settleGame(ctx, game, now)
		if err != nil {
			s.logger.WithField("game_id", game.ID).Errorf("Failed to settle game: %v", err)
			continue
		}
		settledCount += n
	}

	if err := s.applyRatings(ctx, unappliedGames, now); err != nil {
		return err
	}

	if err := s.recomputeBankroll(ctx, now); err != nil {
		return err
	}

	metrics.RecordSettlementDuration(time.Since(startTime).Seconds())
	s.logger.WithFields(logrus.Fields{
		"games":           len(betGames),
		"bets_settled":    settledCount,
		"ratings_applied": len(unappliedGames),
		"elapsed":         time.Since(startTime).String(),
	}).Info("Settlement run complete")

	return nil
}

// settleGame grades all pending bets on one game. Rating updates are handled
// separately by applyRatings.
func (s *SettlementService) settleGame(ctx context.Context, game *models.Game, now time.Time) (int, error) {
	bets, err := s.repos.Bet.GetPendingByGameID(ctx, game.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending bets: %w", err)
	}

	quotes, err := s.repos.Odds.GetByGameID(ctx, game.ID)
	if err != nil {
		// CLV is best-effort; grading works without quotes
		s.logger.WithField("game_id", game.ID).Warnf("Failed to load quotes for CLV: %v", err)
		quotes = nil
	}

	engine := settlement.NewEngine(nil, s.logger)
	engine.SetCLVWindow(time.Duration(s.cfg.CLVWindowMinutes) * time.Minute)

	settled := 0
	for _, bet := range bets {
		if err := engine.SettleBet(bet, game, quotes, now); err != nil {
			s.logger.WithField("bet_id", bet.ID).Errorf("Failed to grade bet: %v", err)
			continue
		}
		if err := s.repos.Bet.Settle(ctx, bet); err != nil {
			s.logger.WithField("bet_id", bet.ID).Errorf("Failed to persist settlement: %v", err)
			continue
		}
		if bet.CLVPercent != nil {
			if err := s.repos.Signal.UpdateCLV(ctx, bet.SignalID, *bet.CLVPercent); err != nil {
				s.logger.WithField("signal_id", bet.SignalID).Warnf("Failed to record CLV: %v", err)
			}
		}

		profitLoss := 0.0
		if bet.ProfitLoss != nil {
			profitLoss = *bet.ProfitLoss
		}
		s.auditLogger.LogBetSettlement(bet.ID.String(), game.ID.String(), string(bet.Status), profitLoss, bet.CLVPercent)
		metrics.RecordBetSettled(string(bet.Status))
		settled++
	}

	return settled, nil
}

// applyRatings feeds each unapplied final score into the strength model once,
// persists the modified ratings, then marks the games applied. Marking only
// happens after ratings are durably written; a failure before that point
// leaves the stored ratings untouched, so the next run repeats cleanly.
func (s *SettlementService) applyRatings(ctx context.Context, games []*models.Game, now time.Time) error {
	if len(games) == 0 {
		return nil
	}

	stored, err := s.repos.Rating.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	store := rating.NewStore(stored)

	var applied []*models.Game
	for _, game := range games {
		params := fairprob.ParamsForSport(game.Sport)
		engine := settlement.NewEngine(rating.NewModelForSport(store, params.LeagueAvgPerTeam), s.logger)
		if err := engine.ApplyResult(game, now); err != nil {
			s.logger.WithField("game_id", game.ID).Errorf("Failed to apply result to ratings: %v", err)
			continue
		}
		applied = append(applied, game)
	}

	if dirty := store.Dirty(); len(dirty) > 0 {
		if err := s.repos.Rating.UpsertBatch(ctx, dirty); err != nil {
			return fmt.Errorf("failed to persist ratings: %w", err)
		}
		metrics.UpdateTrackedRatings(float64(store.Len()))
	}

	for _, game := range applied {
		if err := s.repos.Game.MarkRatingApplied(ctx, game.ID); err != nil {
			s.logger.WithField("game_id", game.ID).Errorf("Failed to mark rating applied: %v", err)
		}
	}

	return nil
}

// recomputeBankroll rebuilds bankroll aggregates from the full settled history
func (s *SettlementService) recomputeBankroll(ctx context.Context, now time.Time) error {
	bankroll, err := s.repos.Bankroll.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bankroll: %w", err)
	}

	settledBets, err := s.repos.Bet.GetSettled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settled bets: %w", err)
	}

	engine := settlement.NewEngine(nil, s.logger)
	engine.RecomputeBankroll(bankroll, settledBets, now)

	if err := s.repos.Bankroll.Update(ctx, bankroll); err != nil {
		return fmt.Errorf("failed to persist bankroll: %w", err)
	}

	metrics.UpdateBankroll(bankroll.Balance)
	s.auditLogger.LogBankrollUpdate(bankroll.StartingBalance, bankroll.Balance, bankroll.TotalProfitLoss, bankroll.TotalBets)

	return nil
}
