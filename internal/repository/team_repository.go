package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Upsert inserts or updates a team by its external ID. The existing row's
// UUID wins on conflict; the caller's struct is updated with the stored ID.
func (t *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, external_id, name, sport, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (external_id) DO UPDATE SET
			name = EXCLUDED.name,
			sport = EXCLUDED.sport,
			updated_at = NOW()
		RETURNING id
	`

	err := t.db.GetPool().QueryRow(ctx, query,
		team.ID, team.ExternalID, team.Name, team.Sport,
	).Scan(&team.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert team %s: %w", team.ExternalID, err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (t *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, external_id, name, sport, created_at, updated_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := t.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.ExternalID, &team.Name, &team.Sport, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetByExternalID retrieves a team by its external identifier
func (t *PostgresTeamRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Team, error) {
	query := `
		SELECT id, external_id, name, sport, created_at, updated_at
		FROM teams WHERE external_id = $1
	`

	team := &models.Team{}
	err := t.db.GetPool().QueryRow(ctx, query, externalID).Scan(
		&team.ID, &team.ExternalID, &team.Name, &team.Sport, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team by external ID: %w", err)
	}

	return team, nil
}

// GetBySport retrieves all teams in a sport
func (t *PostgresTeamRepository) GetBySport(ctx context.Context, sport string) ([]*models.Team, error) {
	query := `
		SELECT id, external_id, name, sport, created_at, updated_at
		FROM teams
		WHERE sport = $1
		ORDER BY name ASC
	`

	rows, err := t.db.GetPool().Query(ctx, query, sport)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams by sport: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(&team.ID, &team.ExternalID, &team.Name, &team.Sport, &team.CreatedAt, &team.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}
