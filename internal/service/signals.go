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
	"github.com/yourusername/sharpline/internal/notify"
	"github.com/yourusername/sharpline/internal/rating"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/signal"
)

// SignalService runs the generation pass: load ratings, evaluate upcoming
// games against their latest quotes, persist signals, expire stale ones.
type SignalService struct {
	repos        *repository.Repositories
	cfg          config.SignalsConfig
	sports       []string
	lookahead    time.Duration
	notifier     notify.Notifier
	logger       *logrus.Logger
	signalLogger *logger.SignalLogger
}

// NewSignalService creates a new signal generation service
func NewSignalService(
	repos *repository.Repositories,
	cfg config.SignalsConfig,
	sports []string,
	lookahead time.Duration,
	notifier notify.Notifier,
	baseLogger *logrus.Logger,
) *SignalService {
	return &SignalService{
		repos:        repos,
		cfg:          cfg,
		sports:       sports,
		lookahead:    lookahead,
		notifier:     notifier,
		logger:       baseLogger,
		signalLogger: logger.NewSignalLogger(baseLogger),
	}
}

// evaluatorConfig maps the config section onto the evaluator's thresholds
func (s *SignalService) evaluatorConfig() signal.Config {
	return signal.Config{
		MinEdgeSides:   s.cfg.MinEdgeSides,
		MinEdgeProps:   s.cfg.MinEdgeProps,
		MaxEdge:        s.cfg.MaxEdge,
		KellyFraction:  s.cfg.KellyFraction,
		MinSampleGames: s.cfg.MinSampleGames,
		ModelVersion:   s.cfg.ModelVersion,
	}
}

// Run executes one generation pass across all configured sports
func (s *SignalService) Run(ctx context.Context, now time.Time) error {
	startTime := time.Now()

	stored, err := s.repos.Rating.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load ratings: %w", err)
	}
	store := rating.NewStore(stored)
	metrics.UpdateTrackedRatings(float64(store.Len()))

	totalGenerated := 0
	for _, sport := range s.sports {
		generated, err := s.runSport(ctx, sport, store, now)
		if err != nil {
			s.logger.WithField("sport", sport).Errorf("Signal generation failed: %v", err)
			continue
		}
		totalGenerated += generated
	}

	// Expire signals that outlived their window
	expired, err := s.repos.Signal.ExpireStale(ctx, now)
	if err != nil {
		s.logger.Errorf("Failed to expire stale signals: %v", err)
	} else if expired > 0 {
		metrics.RecordSignalsExpired(int(expired))
	}

	active, err := s.repos.Signal.GetActive(ctx, now)
	if err == nil {
		metrics.UpdateActiveSignals(float64(len(active)))
	}

	metrics.RecordSignalGenerationDuration(time.Since(startTime).Seconds())
	s.logger.WithFields(logrus.Fields{
		"signals_generated": totalGenerated,
		"signals_expired":   expired,
		"elapsed":           time.Since(startTime).String(),
	}).Info("Signal generation run complete")

	return nil
}

// runSport evaluates every upcoming game for one sport
func (s *SignalService) runSport(ctx context.Context, sport string, store *rating.Store, now time.Time) (int, error) {
	games, err := s.repos.Game.GetUpcoming(ctx, sport, s.lookahead)
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming games: %w", err)
	}

	params := fairprob.ParamsForSport(sport)
	model := rating.NewModelForSport(store, params.LeagueAvgPerTeam)
	estimator := fairprob.NewEstimator(model, sport)
	evaluator := signal.NewEvaluator(estimator, store, s.evaluatorConfig(), s.logger)

	startTime := time.Now()
	generated := 0
	quotesEvaluated := 0

	for _, game := range games {
		quotes, err := s.repos.Odds.GetByGameID(ctx, game.ID)
		if err != nil {
			s.logger.WithField("game_id", game.ID).Warnf("Failed to load quotes: %v", err)
			continue
		}
		quotesEvaluated += len(quotes)

		for _, sig := range evaluator.Evaluate(game, quotes, now) {
			if err := s.repos.Signal.UpsertActive(ctx, sig); err != nil {
				s.logger.WithField("signal_id", sig.ID).Errorf("Failed to persist signal: %v", err)
				continue
			}
			generated++
			metrics.RecordSignalGenerated(string(sig.MarketType), string(sig.ConfidenceTier), sig.EdgePercent)
			s.signalLogger.LogSignalGenerated(
				sig.ID.String(), sig.GameID.String(),
				string(sig.MarketType), string(sig.Side), sig.Sportsbook,
				sig.EdgePercent, sig.FairProbability, string(sig.ConfidenceTier),
			)

			if s.notifier != nil {
				s.notifySignal(ctx, sig, game)
			}
		}
	}

	metrics.RecordGamesEvaluated(len(games))
	s.signalLogger.LogGenerationRun(sport, len(games), quotesEvaluated, generated, 0,
		float64(time.Since(startTime).Milliseconds()))

	return generated, nil
}

// notifySignal attaches team entities for readable alerts before delivery
func (s *SignalService) notifySignal(ctx context.Context, sig *models.Signal, game *models.Game) {
	if game.HomeTeam == nil {
		if team, err := s.repos.Team.GetByID(ctx, game.HomeTeamID); err == nil {
			game.HomeTeam = team
		}
	}
	if game.AwayTeam == nil {
		if team, err := s.repos.Team.GetByID(ctx, game.AwayTeamID); err == nil {
			game.AwayTeam = team
		}
	}
	s.notifier.NotifySignal(ctx, sig, game)
}
