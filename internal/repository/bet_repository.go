package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresBetRepository implements BetRepository for PostgreSQL
type PostgresBetRepository struct {
	db *database.DB
}

// NewPostgresBetRepository creates a new bet repository
func NewPostgresBetRepository(db *database.DB) BetRepository {
	return &PostgresBetRepository{db: db}
}

const betColumns = `id, signal_id, game_id, market_type, side, selection_text, line_value,
	       sportsbook, stake, price_american, edge_percent, status, profit_loss,
	       clv_percent, placed_at, settled_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	bet := &models.Bet{}
	err := row.Scan(
		&bet.ID, &bet.SignalID, &bet.GameID, &bet.MarketType, &bet.Side, &bet.SelectionText,
		&bet.LineValue, &bet.Sportsbook, &bet.Stake, &bet.PriceAmerican, &bet.EdgePercent,
		&bet.Status, &bet.ProfitLoss, &bet.CLVPercent, &bet.PlacedAt, &bet.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// Create inserts a new pending bet
func (b *PostgresBetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (id, signal_id, game_id, market_type, side, selection_text, line_value,
		                  sportsbook, stake, price_american, edge_percent, status, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.SignalID, bet.GameID, bet.MarketType, bet.Side, bet.SelectionText,
		bet.LineValue, bet.Sportsbook, bet.Stake, bet.PriceAmerican, bet.EdgePercent,
		bet.Status, bet.PlacedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create bet: %w", err)
	}

	return nil
}

// GetByID retrieves a bet by ID
func (b *PostgresBetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(b.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	return bet, nil
}

// GetPending retrieves all pending bets
func (b *PostgresBetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status = 'pending'
		ORDER BY placed_at ASC
	`

	rows, err := b.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// GetPendingByGameID retrieves pending bets for one game
func (b *PostgresBetRepository) GetPendingByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status = 'pending' AND game_id = $1
		ORDER BY placed_at ASC
	`

	rows, err := b.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending bets by game: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// GetSettled retrieves the full settled-bet history, oldest first. Bankroll
// aggregates are rebuilt from this set, never accumulated incrementally.
func (b *PostgresBetRepository) GetSettled(ctx context.Context) ([]*models.Bet, error) {
	query := `
		SELECT ` + betColumns + `
		FROM bets
		WHERE status != 'pending'
		ORDER BY settled_at ASC
	`

	rows, err := b.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query settled bets: %w", err)
	}
	defer rows.Close()

	return collectBets(rows)
}

// Settle writes the terminal outcome for a bet. The status guard makes the
// transition exactly-once at the database level as well.
func (b *PostgresBetRepository) Settle(ctx context.Context, bet *models.Bet) error {
	query := `
		UPDATE bets SET
			status = $2, profit_loss = $3, clv_percent = $4, settled_at = $5
		WHERE id = $1 AND status = 'pending'
	`

	commandTag, err := b.db.GetPool().Exec(ctx, query,
		bet.ID, bet.Status, bet.ProfitLoss, bet.CLVPercent, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to settle bet: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrBetAlreadySettled
	}

	return nil
}

func collectBets(rows pgx.Rows) ([]*models.Bet, error) {
	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}
