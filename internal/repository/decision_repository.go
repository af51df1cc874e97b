package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresDecisionRepository implements DecisionRepository for PostgreSQL.
// Decisions are append-only; there is no update or delete path.
type PostgresDecisionRepository struct {
	db *database.DB
}

// NewPostgresDecisionRepository creates a new decision repository
func NewPostgresDecisionRepository(db *database.DB) DecisionRepository {
	return &PostgresDecisionRepository{db: db}
}

const decisionColumns = `id, signal_id, action, reasoning, confidence_score, kelly_stake,
	       actual_stake, edge_percent, bankroll_at_decision, exposure_pct,
	       correlation_risk, decided_at`

// Insert appends a decision audit record
func (d *PostgresDecisionRepository) Insert(ctx context.Context, decision *models.Decision) error {
	query := `
		INSERT INTO decisions (id, signal_id, action, reasoning, confidence_score, kelly_stake,
		                       actual_stake, edge_percent, bankroll_at_decision, exposure_pct,
		                       correlation_risk, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := d.db.GetPool().Exec(ctx, query,
		decision.ID, decision.SignalID, decision.Action, decision.Reasoning,
		decision.ConfidenceScore, decision.KellyStake, decision.ActualStake,
		decision.EdgePercent, decision.BankrollAtDecision, decision.ExposurePct,
		decision.CorrelationRisk, decision.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert decision: %w", err)
	}

	return nil
}

// GetBySignalID retrieves all decisions recorded for a signal
func (d *PostgresDecisionRepository) GetBySignalID(ctx context.Context, signalID uuid.UUID) ([]*models.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM decisions
		WHERE signal_id = $1
		ORDER BY decided_at ASC
	`

	rows, err := d.db.GetPool().Query(ctx, query, signalID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions by signal: %w", err)
	}
	defer rows.Close()

	return collectDecisions(rows)
}

// GetRecent retrieves the most recent decisions for reporting
func (d *PostgresDecisionRepository) GetRecent(ctx context.Context, limit int) ([]*models.Decision, error) {
	query := `
		SELECT ` + decisionColumns + `
		FROM decisions
		ORDER BY decided_at DESC
		LIMIT $1
	`

	rows, err := d.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent decisions: %w", err)
	}
	defer rows.Close()

	return collectDecisions(rows)
}

func collectDecisions(rows pgx.Rows) ([]*models.Decision, error) {
	var decisions []*models.Decision
	for rows.Next() {
		decision := &models.Decision{}
		err := rows.Scan(
			&decision.ID, &decision.SignalID, &decision.Action, &decision.Reasoning,
			&decision.ConfidenceScore, &decision.KellyStake, &decision.ActualStake,
			&decision.EdgePercent, &decision.BankrollAtDecision, &decision.ExposurePct,
			&decision.CorrelationRisk, &decision.DecidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, decision)
	}

	return decisions, rows.Err()
}
