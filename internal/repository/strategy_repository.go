package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresStrategyRepository implements StrategyRepository for PostgreSQL
type PostgresStrategyRepository struct {
	db *database.DB
}

// NewPostgresStrategyRepository creates a new strategy repository
func NewPostgresStrategyRepository(db *database.DB) StrategyRepository {
	return &PostgresStrategyRepository{db: db}
}

const strategyColumns = `id, name, description, min_edge, min_confidence, kelly_fraction,
	       max_stake_pct, max_exposure_per_game, max_daily_bets, enabled, created_at, updated_at`

func scanStrategy(row pgx.Row) (*models.Strategy, error) {
	strategy := &models.Strategy{}
	err := row.Scan(
		&strategy.ID, &strategy.Name, &strategy.Description, &strategy.MinEdge,
		&strategy.MinConfidence, &strategy.KellyFraction, &strategy.MaxStakePct,
		&strategy.MaxExposurePerGame, &strategy.MaxDailyBets, &strategy.Enabled,
		&strategy.CreatedAt, &strategy.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return strategy, nil
}

// Create inserts a new strategy
func (s *PostgresStrategyRepository) Create(ctx context.Context, strategy *models.Strategy) error {
	if err := strategy.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO strategies (id, name, description, min_edge, min_confidence, kelly_fraction,
		                        max_stake_pct, max_exposure_per_game, max_daily_bets, enabled,
		                        created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`

	_, err := s.db.GetPool().Exec(ctx, query,
		strategy.ID, strategy.Name, strategy.Description, strategy.MinEdge,
		strategy.MinConfidence, strategy.KellyFraction, strategy.MaxStakePct,
		strategy.MaxExposurePerGame, strategy.MaxDailyBets, strategy.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to create strategy: %w", err)
	}

	return nil
}

// GetByID retrieves a strategy by ID
func (s *PostgresStrategyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE id = $1`

	strategy, err := scanStrategy(s.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy: %w", err)
	}

	return strategy, nil
}

// GetByName retrieves a strategy by its unique name
func (s *PostgresStrategyRepository) GetByName(ctx context.Context, name string) (*models.Strategy, error) {
	query := `SELECT ` + strategyColumns + ` FROM strategies WHERE name = $1`

	strategy, err := scanStrategy(s.db.GetPool().QueryRow(ctx, query, name))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy by name: %w", err)
	}

	return strategy, nil
}

// GetEnabled retrieves all enabled strategies
func (s *PostgresStrategyRepository) GetEnabled(ctx context.Context) ([]*models.Strategy, error) {
	query := `
		SELECT ` + strategyColumns + `
		FROM strategies
		WHERE enabled = true
		ORDER BY name ASC
	`

	rows, err := s.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query enabled strategies: %w", err)
	}
	defer rows.Close()

	var strategies []*models.Strategy
	for rows.Next() {
		strategy, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan strategy: %w", err)
		}
		strategies = append(strategies, strategy)
	}

	return strategies, rows.Err()
}

// Update updates an existing strategy
func (s *PostgresStrategyRepository) Update(ctx context.Context, strategy *models.Strategy) error {
	query := `
		UPDATE strategies SET
			name = $2, description = $3, min_edge = $4, min_confidence = $5,
			kelly_fraction = $6, max_stake_pct = $7, max_exposure_per_game = $8,
			max_daily_bets = $9, enabled = $10, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := s.db.GetPool().Exec(ctx, query,
		strategy.ID, strategy.Name, strategy.Description, strategy.MinEdge,
		strategy.MinConfidence, strategy.KellyFraction, strategy.MaxStakePct,
		strategy.MaxExposurePerGame, strategy.MaxDailyBets, strategy.Enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update strategy: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
