// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for money-moving events.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogBetPlacement logs a bet placement event.
func (al *AuditLogger) LogBetPlacement(betID, signalID, gameID string, marketType, side string, stake float64, priceAmerican int, confidence float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"bet_id":         betID,
		"signal_id":      signalID,
		"game_id":        gameID,
		"market_type":    marketType,
		"side":           side,
		"stake":          stake,
		"price_american": priceAmerican,
		"confidence":     confidence,
		"timestamp":      timestamp.Unix(),
	}).Info("Bet placement recorded")
}

// LogBetSettlement logs a bet settlement event.
func (al *AuditLogger) LogBetSettlement(betID, gameID string, status string, profitLoss float64, clvPercent *float64) {
	fields := logrus.Fields{
		"bet_id":      betID,
		"game_id":     gameID,
		"status":      status,
		"profit_loss": profitLoss,
	}
	if clvPercent != nil {
		fields["clv_percent"] = *clvPercent
	}
	al.WithFields(fields).Info("Bet settlement recorded")
}

// LogBankrollUpdate logs a bankroll recomputation.
func (al *AuditLogger) LogBankrollUpdate(startingBalance, currentBalance, totalProfitLoss float64, settledBets int) {
	al.WithFields(logrus.Fields{
		"starting_balance":  startingBalance,
		"current_balance":   currentBalance,
		"total_profit_loss": totalProfitLoss,
		"settled_bets":      settledBets,
	}).Info("Bankroll updated")
}

// LogStrategyParameterChange logs strategy parameter changes.
func (al *AuditLogger) LogStrategyParameterChange(strategyID, parameterName string, oldValue, newValue interface{}, changedBy string) {
	al.WithFields(logrus.Fields{
		"strategy_id":    strategyID,
		"parameter_name": parameterName,
		"old_value":      oldValue,
		"new_value":      newValue,
		"changed_by":     changedBy,
	}).Info("Strategy parameter changed")
}

// LogExposureLimitHit logs a bet skipped because a bankroll limit was reached.
func (al *AuditLogger) LogExposureLimitHit(signalID, limitName string, attemptedStake, limitValue float64) {
	al.WithFields(logrus.Fields{
		"signal_id":       signalID,
		"limit_name":      limitName,
		"attempted_stake": attemptedStake,
		"limit_value":     limitValue,
	}).Warn("Exposure limit hit")
}
