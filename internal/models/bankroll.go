package models

import "time"

// BankrollState holds the paper bankroll and its aggregate performance
// metrics. Aggregates are recomputed from the full settled-bet history by the
// settlement engine, never incrementally accumulated; the staking agent reads
// this state but never writes it.
type BankrollState struct {
	ID              int       `db:"id" json:"id"`
	StartingBalance float64   `db:"starting_balance" json:"starting_balance" validate:"required,gt=0"`
	Balance         float64   `db:"balance" json:"balance"`
	TotalBets       int       `db:"total_bets" json:"total_bets"`
	TotalStaked     float64   `db:"total_staked" json:"total_staked"`
	TotalProfitLoss float64   `db:"total_profit_loss" json:"total_profit_loss"`
	ROIPercent      float64   `db:"roi_percent" json:"roi_percent"`
	WinCount        int       `db:"win_count" json:"win_count"`
	LossCount       int       `db:"loss_count" json:"loss_count"`
	PushCount       int       `db:"push_count" json:"push_count"`
	WinRate         float64   `db:"win_rate" json:"win_rate"`
	AvgEdge         float64   `db:"avg_edge" json:"avg_edge"`
	AvgCLV          float64   `db:"avg_clv" json:"avg_clv"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Recompute rebuilds the aggregate metrics from a full settled-bet history
func (b *BankrollState) Recompute(settled []*Bet) {
	b.TotalBets = len(settled)
	b.TotalStaked = 0
	b.TotalProfitLoss = 0
	b.WinCount = 0
	b.LossCount = 0
	b.PushCount = 0

	var edgeSum, clvSum float64
	var clvCount int
	for _, bet := range settled {
		b.TotalStaked += bet.Stake
		edgeSum += bet.EdgePercent
		if bet.ProfitLoss != nil {
			b.TotalProfitLoss += *bet.ProfitLoss
		}
		switch bet.Status {
		case BetStatusWon:
			b.WinCount++
		case BetStatusLost:
			b.LossCount++
		case BetStatusPush:
			b.PushCount++
		}
		if bet.CLVPercent != nil {
			clvSum += *bet.CLVPercent
			clvCount++
		}
	}

	b.Balance = b.StartingBalance + b.TotalProfitLoss
	if decided := b.WinCount + b.LossCount; decided > 0 {
		b.WinRate = float64(b.WinCount) / float64(decided) * 100
	} else {
		b.WinRate = 0
	}
	if b.TotalStaked > 0 {
		b.ROIPercent = b.TotalProfitLoss / b.TotalStaked * 100
	} else {
		b.ROIPercent = 0
	}
	if clvCount > 0 {
		b.AvgCLV = clvSum / float64(clvCount)
	} else {
		b.AvgCLV = 0
	}
	if b.TotalBets > 0 {
		b.AvgEdge = edgeSum / float64(b.TotalBets)
	} else {
		b.AvgEdge = 0
	}
}
