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

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

const oddsColumns = `id, game_id, market_type, side, selection_text, line_value,
	       price_american, sportsbook, observed_at`

// Insert appends a single odds quote snapshot
func (o *PostgresOddsRepository) Insert(ctx context.Context, quote *models.OddsQuote) error {
	query := `
		INSERT INTO odds_quotes (id, game_id, market_type, side, selection_text, line_value,
		                         price_american, sportsbook, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := o.db.GetPool().Exec(ctx, query,
		quote.ID, quote.GameID, quote.MarketType, quote.Side, quote.SelectionText,
		quote.LineValue, quote.PriceAmerican, quote.Sportsbook, quote.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds quote: %w", err)
	}

	return nil
}

// InsertBatch appends multiple quote snapshots in one round trip
func (o *PostgresOddsRepository) InsertBatch(ctx context.Context, quotes []*models.OddsQuote) error {
	if len(quotes) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO odds_quotes (id, game_id, market_type, side, selection_text, line_value,
		                         price_american, sportsbook, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, quote := range quotes {
		batch.Queue(query,
			quote.ID, quote.GameID, quote.MarketType, quote.Side, quote.SelectionText,
			quote.LineValue, quote.PriceAmerican, quote.Sportsbook, quote.ObservedAt,
		)
	}

	results := o.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range quotes {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert odds quote batch: %w", err)
		}
	}

	return nil
}

// GetByGameID retrieves the full quote history for a game
func (o *PostgresOddsRepository) GetByGameID(ctx context.Context, gameID uuid.UUID) ([]*models.OddsQuote, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_quotes
		WHERE game_id = $1
		ORDER BY observed_at ASC
	`

	rows, err := o.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds quotes: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

// GetByGameIDSince retrieves quotes observed at or after the given time
func (o *PostgresOddsRepository) GetByGameIDSince(ctx context.Context, gameID uuid.UUID, since time.Time) ([]*models.OddsQuote, error) {
	query := `
		SELECT ` + oddsColumns + `
		FROM odds_quotes
		WHERE game_id = $1 AND observed_at >= $2
		ORDER BY observed_at ASC
	`

	rows, err := o.db.GetPool().Query(ctx, query, gameID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds quotes since: %w", err)
	}
	defer rows.Close()

	return scanQuotes(rows)
}

func scanQuotes(rows pgx.Rows) ([]*models.OddsQuote, error) {
	var quotes []*models.OddsQuote
	for rows.Next() {
		quote := &models.OddsQuote{}
		err := rows.Scan(
			&quote.ID, &quote.GameID, &quote.MarketType, &quote.Side, &quote.SelectionText,
			&quote.LineValue, &quote.PriceAmerican, &quote.Sportsbook, &quote.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds quote: %w", err)
		}
		quotes = append(quotes, quote)
	}

	return quotes, rows.Err()
}
