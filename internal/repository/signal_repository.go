package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresSignalRepository implements SignalRepository for PostgreSQL
type PostgresSignalRepository struct {
	db *database.DB
}

// NewPostgresSignalRepository creates a new signal repository
func NewPostgresSignalRepository(db *database.DB) SignalRepository {
	return &PostgresSignalRepository{db: db}
}

const signalColumns = `id, game_id, market_type, side, selection_text, line_value, sportsbook,
	       price_american, fair_probability, implied_probability, raw_implied_probability,
	       edge_percent, confidence_tier, kelly_fraction, clv_percent, model_version,
	       status, generated_at, expires_at`

func scanSignal(row pgx.Row) (*models.Signal, error) {
	sig := &models.Signal{}
	err := row.Scan(
		&sig.ID, &sig.GameID, &sig.MarketType, &sig.Side, &sig.SelectionText, &sig.LineValue,
		&sig.Sportsbook, &sig.PriceAmerican, &sig.FairProbability, &sig.ImpliedProbability,
		&sig.RawImpliedProb, &sig.EdgePercent, &sig.ConfidenceTier, &sig.KellyFraction,
		&sig.CLVPercent, &sig.ModelVersion, &sig.Status, &sig.GeneratedAt, &sig.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	return sig, nil
}

// UpsertActive inserts a signal, or refreshes the existing active signal with
// the same (game, market, sportsbook, price) key in place. Re-evaluating a
// game therefore never duplicates signals; a partial unique index on active
// status backs the conflict target.
func (s *PostgresSignalRepository) UpsertActive(ctx context.Context, signal *models.Signal) error {
	query := `
		INSERT INTO signals (id, game_id, market_type, side, selection_text, line_value, sportsbook,
		                     price_american, fair_probability, implied_probability, raw_implied_probability,
		                     edge_percent, confidence_tier, kelly_fraction, model_version,
		                     status, generated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (game_id, market_type, sportsbook, price_american) WHERE status = 'active'
		DO UPDATE SET
			side = EXCLUDED.side,
			selection_text = EXCLUDED.selection_text,
			line_value = EXCLUDED.line_value,
			fair_probability = EXCLUDED.fair_probability,
			implied_probability = EXCLUDED.implied_probability,
			raw_implied_probability = EXCLUDED.raw_implied_probability,
			edge_percent = EXCLUDED.edge_percent,
			confidence_tier = EXCLUDED.confidence_tier,
			kelly_fraction = EXCLUDED.kelly_fraction,
			model_version = EXCLUDED.model_version,
			generated_at = EXCLUDED.generated_at,
			expires_at = EXCLUDED.expires_at
		RETURNING id
	`

	err := s.db.GetPool().QueryRow(ctx, query,
		signal.ID, signal.GameID, signal.MarketType, signal.Side, signal.SelectionText,
		signal.LineValue, signal.Sportsbook, signal.PriceAmerican, signal.FairProbability,
		signal.ImpliedProbability, signal.RawImpliedProb, signal.EdgePercent,
		signal.ConfidenceTier, signal.KellyFraction, signal.ModelVersion,
		signal.Status, signal.GeneratedAt, signal.ExpiresAt,
	).Scan(&signal.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert signal: %w", err)
	}

	return nil
}

// GetByID retrieves a signal by ID
func (s *PostgresSignalRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Signal, error) {
	query := `SELECT ` + signalColumns + ` FROM signals WHERE id = $1`

	sig, err := scanSignal(s.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get signal: %w", err)
	}

	return sig, nil
}

// GetActive retrieves unexpired active signals ordered by edge descending,
// so the agent evaluates the strongest candidates first.
func (s *PostgresSignalRepository) GetActive(ctx context.Context, now time.Time) ([]*models.Signal, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE status = 'active' AND expires_at > $1
		ORDER BY edge_percent DESC
	`

	rows, err := s.db.GetPool().Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query active signals: %w", err)
	}
	defer rows.Close()

	var signals []*models.Signal
	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		signals = append(signals, sig)
	}

	return signals, rows.Err()
}

// ExpireStale marks active signals past their expiry as expired, returning
// the number of rows transitioned.
func (s *PostgresSignalRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE signals SET status = 'expired'
		WHERE status = 'active' AND expires_at <= $1
	`

	commandTag, err := s.db.GetPool().Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire stale signals: %w", err)
	}

	return commandTag.RowsAffected(), nil
}

// MarkConsumed transitions a signal to consumed after a bet is placed on it
func (s *PostgresSignalRepository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE signals SET status = 'consumed' WHERE id = $1 AND status = 'active'`

	commandTag, err := s.db.GetPool().Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark signal consumed: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpdateCLV records the closing line value computed at settlement
func (s *PostgresSignalRepository) UpdateCLV(ctx context.Context, id uuid.UUID, clvPercent float64) error {
	query := `UPDATE signals SET clv_percent = $2 WHERE id = $1`

	commandTag, err := s.db.GetPool().Exec(ctx, query, id, clvPercent)
	if err != nil {
		return fmt.Errorf("failed to update signal CLV: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// AverageCLV returns the trailing 30-day average CLV for a (sportsbook,
// market) pair. The boolean is false when no settled history exists.
func (s *PostgresSignalRepository) AverageCLV(ctx context.Context, sportsbook string, market models.MarketType) (float64, bool, error) {
	query := `
		SELECT AVG(clv_percent)
		FROM signals
		WHERE sportsbook = $1
		  AND market_type = $2
		  AND clv_percent IS NOT NULL
		  AND generated_at > NOW() - INTERVAL '30 days'
	`

	var avg *float64
	err := s.db.GetPool().QueryRow(ctx, query, sportsbook, market).Scan(&avg)
	if err != nil {
		return 0, false, fmt.Errorf("failed to query average CLV: %w", err)
	}
	if avg == nil {
		return 0, false, nil
	}

	return *avg, true, nil
}
