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

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

const gameColumns = `id, external_id, sport, home_team_id, away_team_id, scheduled_at,
	       status, home_score, away_score, rating_applied, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	game := &models.Game{}
	err := row.Scan(
		&game.ID, &game.ExternalID, &game.Sport, &game.HomeTeamID, &game.AwayTeamID,
		&game.ScheduledAt, &game.Status, &game.HomeScore, &game.AwayScore,
		&game.RatingApplied, &game.CreatedAt, &game.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return game, nil
}

// Upsert inserts or updates a game by its external ID
func (g *PostgresGameRepository) Upsert(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, external_id, sport, home_team_id, away_team_id, scheduled_at, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			sport = EXCLUDED.sport,
			home_team_id = EXCLUDED.home_team_id,
			away_team_id = EXCLUDED.away_team_id,
			scheduled_at = EXCLUDED.scheduled_at,
			status = EXCLUDED.status,
			updated_at = NOW()
		RETURNING id
	`

	err := g.db.GetPool().QueryRow(ctx, query,
		game.ID, game.ExternalID, game.Sport, game.HomeTeamID, game.AwayTeamID,
		game.ScheduledAt, game.Status,
	).Scan(&game.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert game %s: %w", game.ExternalID, err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (g *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`

	game, err := scanGame(g.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetByExternalID retrieves a game by its provider identity
func (g *PostgresGameRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE external_id = $1`

	game, err := scanGame(g.db.GetPool().QueryRow(ctx, query, externalID))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by external ID: %w", err)
	}

	return game, nil
}

// GetByIDs retrieves games by ID, keyed by ID. Missing games are absent from
// the map rather than an error.
func (g *PostgresGameRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Game, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Game{}, nil
	}

	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ANY($1)`

	rows, err := g.db.GetPool().Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by IDs: %w", err)
	}
	defer rows.Close()

	games := make(map[uuid.UUID]*models.Game, len(ids))
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games[game.ID] = game
	}

	return games, rows.Err()
}

// GetUpcoming retrieves scheduled games starting within the lookahead window
func (g *PostgresGameRepository) GetUpcoming(ctx context.Context, sport string, within time.Duration) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE sport = $1
		  AND status = 'scheduled'
		  AND scheduled_at BETWEEN NOW() AND NOW() + $2
		ORDER BY scheduled_at ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query, sport, within)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// GetFinalWithPendingBets retrieves completed games that still carry
// unsettled bets.
func (g *PostgresGameRepository) GetFinalWithPendingBets(ctx context.Context) ([]*models.Game, error) {
	query := `
		SELECT DISTINCT g.id, g.external_id, g.sport, g.home_team_id, g.away_team_id,
		       g.scheduled_at, g.status, g.home_score, g.away_score, g.rating_applied,
		       g.created_at, g.updated_at
		FROM games g
		JOIN bets b ON b.game_id = g.id
		WHERE b.status = 'pending'
		  AND g.status IN ('final', 'cancelled')
		ORDER BY g.scheduled_at ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query settleable games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// GetFinalWithUnappliedRatings retrieves completed games whose final score has
// not yet been fed into the team strength model. Cancelled games never apply.
func (g *PostgresGameRepository) GetFinalWithUnappliedRatings(ctx context.Context) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'final'
		  AND NOT rating_applied
		ORDER BY scheduled_at ASC
	`

	rows, err := g.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query games awaiting rating updates: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// MarkRatingApplied records that a game's result has been applied to the
// strength model so reruns never apply it twice.
func (g *PostgresGameRepository) MarkRatingApplied(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE games SET rating_applied = TRUE, updated_at = NOW() WHERE id = $1`

	commandTag, err := g.db.GetPool().Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark rating applied: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// RecordResult writes the final score and status for a game
func (g *PostgresGameRepository) RecordResult(ctx context.Context, id uuid.UUID, homeScore, awayScore int, status models.GameStatus) error {
	query := `
		UPDATE games SET
			home_score = $2, away_score = $3, status = $4, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := g.db.GetPool().Exec(ctx, query, id, homeScore, awayScore, status)
	if err != nil {
		return fmt.Errorf("failed to record game result: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
