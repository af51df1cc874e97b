package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL.
// Ratings are loaded into an in-memory store at the start of a run and the
// dirty subset is written back at the end; rows are never deleted.
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// GetAll retrieves every persisted team rating
func (r *PostgresRatingRepository) GetAll(ctx context.Context) ([]*models.TeamRating, error) {
	query := `
		SELECT team_id, rating, offensive_rating, defensive_rating, games_played, updated_at
		FROM team_ratings
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.TeamRating
	for rows.Next() {
		rating := &models.TeamRating{}
		err := rows.Scan(
			&rating.TeamID, &rating.Rating, &rating.OffensiveRating,
			&rating.DefensiveRating, &rating.GamesPlayed, &rating.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team rating: %w", err)
		}
		ratings = append(ratings, rating)
	}

	return ratings, rows.Err()
}

// UpsertBatch writes modified ratings back, inserting rows for teams rated
// for the first time.
func (r *PostgresRatingRepository) UpsertBatch(ctx context.Context, ratings []*models.TeamRating) error {
	if len(ratings) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO team_ratings (team_id, rating, offensive_rating, defensive_rating, games_played, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (team_id) DO UPDATE SET
			rating = EXCLUDED.rating,
			offensive_rating = EXCLUDED.offensive_rating,
			defensive_rating = EXCLUDED.defensive_rating,
			games_played = EXCLUDED.games_played,
			updated_at = EXCLUDED.updated_at
	`

	for _, rating := range ratings {
		batch.Queue(query,
			rating.TeamID, rating.Rating, rating.OffensiveRating,
			rating.DefensiveRating, rating.GamesPlayed, rating.UpdatedAt,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range ratings {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert team rating batch: %w", err)
		}
	}

	return nil
}
