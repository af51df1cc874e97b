package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/models"
)

// PostgresBankrollRepository implements BankrollRepository for PostgreSQL.
// The bankroll table holds a single row owned by the settlement engine.
type PostgresBankrollRepository struct {
	db *database.DB
}

// NewPostgresBankrollRepository creates a new bankroll repository
func NewPostgresBankrollRepository(db *database.DB) BankrollRepository {
	return &PostgresBankrollRepository{db: db}
}

// Get retrieves the bankroll state
func (b *PostgresBankrollRepository) Get(ctx context.Context) (*models.BankrollState, error) {
	query := `
		SELECT id, starting_balance, balance, total_bets, total_staked, total_profit_loss,
		       roi_percent, win_count, loss_count, push_count, win_rate, avg_edge, avg_clv,
		       updated_at
		FROM bankroll
		LIMIT 1
	`

	bankroll := &models.BankrollState{}
	err := b.db.GetPool().QueryRow(ctx, query).Scan(
		&bankroll.ID, &bankroll.StartingBalance, &bankroll.Balance, &bankroll.TotalBets,
		&bankroll.TotalStaked, &bankroll.TotalProfitLoss, &bankroll.ROIPercent,
		&bankroll.WinCount, &bankroll.LossCount, &bankroll.PushCount, &bankroll.WinRate,
		&bankroll.AvgEdge, &bankroll.AvgCLV, &bankroll.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bankroll: %w", err)
	}

	return bankroll, nil
}

// Update writes the recomputed bankroll aggregates
func (b *PostgresBankrollRepository) Update(ctx context.Context, bankroll *models.BankrollState) error {
	query := `
		UPDATE bankroll SET
			balance = $2, total_bets = $3, total_staked = $4, total_profit_loss = $5,
			roi_percent = $6, win_count = $7, loss_count = $8, push_count = $9,
			win_rate = $10, avg_edge = $11, avg_clv = $12, updated_at = $13
		WHERE id = $1
	`

	commandTag, err := b.db.GetPool().Exec(ctx, query,
		bankroll.ID, bankroll.Balance, bankroll.TotalBets, bankroll.TotalStaked,
		bankroll.TotalProfitLoss, bankroll.ROIPercent, bankroll.WinCount,
		bankroll.LossCount, bankroll.PushCount, bankroll.WinRate,
		bankroll.AvgEdge, bankroll.AvgCLV, bankroll.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update bankroll: %w", err)
	}
	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}
