package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/sharpline/internal/models"
)

// TeamRepository defines the interface for team data access. Teams are
// upserted by natural key; external IDs are the only durable identity.
type TeamRepository interface {
	Upsert(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Team, error)
	GetBySport(ctx context.Context, sport string) ([]*models.Team, error)
}

// GameRepository defines the interface for game data access
type GameRepository interface {
	Upsert(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Game, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Game, error)
	GetUpcoming(ctx context.Context, sport string, within time.Duration) ([]*models.Game, error)
	GetFinalWithPendingBets(ctx context.Context) ([]*models.Game, error)
	GetFinalWithUnappliedRatings(ctx context.Context) ([]*models.Game, error)
	MarkRatingApplied(ctx context.Context, id uuid.UUID) error
	RecordResult(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus) error
}

// OddsRepository defines the interface for odds quote data access.
// Quotes are append-only snapshots; there is no update path.
type OddsRepository interface {
	Insert(ctx context.Context, quote *models.OddsQuote) error
	InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error
	GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.OddsQuote, error)
	GetByGameIDSince(ctx context.Context, gameID uuid.UUID, since time.Time) ([]*models.OddsQuote, error)
}

// SignalRepository defines the interface for signal data access
type SignalRepository interface {
	UpsertActive(ctx context.Context, signal *models.Signal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Signal, error)
	GetActive(ctx context.Context, now time.Time) ([]*models.Signal, error)
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
	MarkConsumed(ctx context.Context, id uuid.UUID) error
	UpdateCLV(ctx context.Context, id uuid.UUID, clvPercent float64) error
	AverageCLV(ctx context.Context, sportsbook string, market models.MarketType) (float64, bool, error)
}

// BetRepository defines the interface for bet data access
type BetRepository interface {
	Create(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	GetPending(ctx context.Context) ([]*models.Bet, error)
	GetPendingByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.Bet, error)
	GetSettled(ctx context.Context) ([]*models.Bet, error)
	Settle(ctx context.Context, bet *models.Bet) error
}

// DecisionRepository defines the append-only audit trail for agent decisions
type DecisionRepository interface {
	Insert(ctx context.Context, decision *models.Decision) error
	GetBySignalID(ctx context.Context, signalID uuid.UUID) ([]*models.Decision, error)
	GetRecent(ctx context.Context, limit int) ([]*models.Decision, error)
}

// BankrollRepository defines access to the single bankroll row
type BankrollRepository interface {
	Get(ctx context.Context) (*models.BankrollState, error)
	Update(ctx context.Context, bankroll *models.BankrollState) error
}

// StrategyRepository defines the interface for strategy data access
type StrategyRepository interface {
	Create(ctx context.Context, strategy *models.Strategy) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Strategy, error)
	GetByName(ctx context.Context, name string) (*models.Strategy, error)
	GetEnabled(ctx context.Context) ([]*models.Strategy, error)
	Update(ctx context.Context, strategy *models.Strategy) error
}

// RatingRepository persists team strength ratings between runs
type RatingRepository interface {
	GetAll(ctx context.Context) ([]*models.TeamRating, error)
	UpsertBatch(ctx context.Context, ratings []*models.TeamRating) error
}
