package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/datasource"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/models"
	"github.com/yourusername/sharpline/internal/repository"
)

// IngestionService pulls odds and results from the configured source and
// persists them. Teams and games are upserted by natural key; quotes are
// append-only snapshots.
type IngestionService struct {
	source     datasource.OddsSource
	repos      *repository.Repositories
	normalizer *EventNormalizer
	validator  *DataValidator
	cfg        config.OddsAPIConfig
	metrics    *RunMetrics
	logger     *logrus.Logger
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.OddsSource,
	repos *repository.Repositories,
	cfg config.OddsAPIConfig,
	logger *logrus.Logger,
) *IngestionService {
	return &IngestionService{
		source:     source,
		repos:      repos,
		normalizer: NewEventNormalizer(),
		validator:  NewDataValidator(),
		cfg:        cfg,
		metrics:    NewRunMetrics(),
		logger:     logger,
	}
}

// IngestOdds fetches upcoming events for every configured sport and persists
// teams, games and odds quotes. A failing sport does not abort the others.
func (s *IngestionService) IngestOdds(ctx context.Context) (*RunMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	var runErr error
	for _, sport := range s.cfg.Sports {
		if err := s.ingestSport(ctx, sport); err != nil {
			s.metrics.RecordError()
			s.recordSourceError(err)
			s.logger.WithField("sport", sport).Errorf("Odds ingestion failed: %v", err)
			runErr = errors.Join(runErr, fmt.Errorf("sport %s: %w", sport, err))
		}
	}

	s.metrics.Duration = time.Since(startTime)
	metrics.RecordIngestionDuration(s.metrics.Duration.Seconds())
	s.logger.WithFields(logrus.Fields{
		"events":  s.metrics.EventsFetched,
		"games":   s.metrics.GamesUpserted,
		"quotes":  s.metrics.QuotesInserted,
		"errors":  s.metrics.Errors,
		"elapsed": s.metrics.Duration.String(),
	}).Info("Odds ingestion complete")

	return s.metrics, runErr
}

// ingestSport processes one sport's upcoming events
func (s *IngestionService) ingestSport(ctx context.Context, sport string) error {
	lookahead := time.Duration(s.cfg.LookaheadHours) * time.Hour
	events, err := s.source.FetchEvents(ctx, sport, lookahead)
	if err != nil {
		return fmt.Errorf("failed to fetch events: %w", err)
	}

	s.metrics.mu.Lock()
	s.metrics.EventsFetched += len(events)
	s.metrics.mu.Unlock()

	for i := range events {
		if err := s.processEvent(ctx, &events[i]); err != nil {
			s.metrics.RecordError()
			s.logger.WithFields(logrus.Fields{
				"sport":    sport,
				"event_id": events[i].SourceID,
			}).Warnf("Skipping event: %v", err)
		}
	}

	return nil
}

// processEvent upserts teams and the game, then appends the event's quotes
func (s *IngestionService) processEvent(ctx context.Context, event *datasource.EventData) error {
	home, away := s.normalizer.NormalizeTeams(event)
	if err := s.repos.Team.Upsert(ctx, home); err != nil {
		return fmt.Errorf("failed to upsert home team: %w", err)
	}
	if err := s.repos.Team.Upsert(ctx, away); err != nil {
		return fmt.Errorf("failed to upsert away team: %w", err)
	}

	game := s.normalizer.NormalizeGame(event, home.ID, away.ID)
	if problems := s.validator.ValidateGame(game); len(problems) > 0 {
		s.metrics.RecordValidationError()
		return fmt.Errorf("game validation failed: %v", problems)
	}
	if err := s.repos.Game.Upsert(ctx, game); err != nil {
		return fmt.Errorf("failed to upsert game: %w", err)
	}
	s.metrics.RecordGame()

	quotes, normErr := s.normalizer.NormalizeQuotes(event, game)
	if normErr != nil {
		s.metrics.RecordValidationError()
		s.logger.WithField("event_id", event.SourceID).Warnf("Some selections unresolved: %v", normErr)
	}

	valid := make([]*models.OddsQuote, 0, len(quotes))
	for _, quote := range quotes {
		if problems := s.validator.ValidateQuote(quote); len(problems) > 0 {
			s.metrics.RecordValidationError()
			s.logger.WithFields(logrus.Fields{
				"event_id":   event.SourceID,
				"sportsbook": quote.Sportsbook,
				"market":     quote.MarketType,
			}).Warnf("Dropping invalid quote: %v", problems)
			continue
		}
		valid = append(valid, quote)
	}

	if len(valid) == 0 {
		return nil
	}

	if err := s.repos.Odds.InsertBatch(ctx, valid); err != nil {
		return fmt.Errorf("failed to insert quotes: %w", err)
	}
	s.metrics.RecordQuotes(len(valid))
	for _, quote := range valid {
		metrics.RecordQuoteIngested(event.Sport, quote.Sportsbook)
	}

	return nil
}

// IngestResults fetches recent scores and records final results on games.
// Games whose scores are incomplete stay scheduled.
func (s *IngestionService) IngestResults(ctx context.Context, daysBack int) (*RunMetrics, error) {
	s.metrics.Reset()
	startTime := time.Now()

	var runErr error
	for _, sport := range s.cfg.Sports {
		scores, err := s.source.FetchScores(ctx, sport, daysBack)
		if err != nil {
			s.metrics.RecordError()
			s.recordSourceError(err)
			s.logger.WithField("sport", sport).Errorf("Results fetch failed: %v", err)
			runErr = errors.Join(runErr, fmt.Errorf("sport %s: %w", sport, err))
			continue
		}

		for i := range scores {
			if err := s.recordScore(ctx, &scores[i]); err != nil {
				s.metrics.RecordError()
				s.logger.WithField("event_id", scores[i].SourceID).Warnf("Failed to record result: %v", err)
			}
		}
	}

	s.metrics.Duration = time.Since(startTime)
	s.logger.WithFields(logrus.Fields{
		"results": s.metrics.ResultsRecorded,
		"errors":  s.metrics.Errors,
		"elapsed": s.metrics.Duration.String(),
	}).Info("Results ingestion complete")

	return s.metrics, runErr
}

// recordScore marks one game final when its score is complete
func (s *IngestionService) recordScore(ctx context.Context, score *datasource.ScoreData) error {
	if !score.Completed || score.HomeScore == nil || score.AwayScore == nil {
		return nil
	}

	game, err := s.repos.Game.GetByExternalID(ctx, score.SourceID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Scores for games we never ingested odds for are not an error
			return nil
		}
		return fmt.Errorf("failed to load game: %w", err)
	}

	if game.Status != models.GameStatusScheduled {
		return nil
	}

	if err := s.repos.Game.RecordResult(ctx, game.ID, *score.HomeScore, *score.AwayScore, models.GameStatusFinal); err != nil {
		return fmt.Errorf("failed to record result: %w", err)
	}
	s.metrics.RecordResult()

	return nil
}

// recordSourceError feeds typed source errors into the error counter vec
func (s *IngestionService) recordSourceError(err error) {
	var srcErr datasource.OddsSourceError
	if errors.As(err, &srcErr) {
		metrics.RecordIngestionError(srcErr.Source, srcErr.Code)
		return
	}
	metrics.RecordIngestionError(s.source.Name(), datasource.ErrCodeUnknown)
}

// GetMetrics returns the metrics of the last run
func (s *IngestionService) GetMetrics() *RunMetrics {
	return s.metrics
}
