// Package logger provides signal-run logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SignalLogger provides dedicated logging for signal generation runs.
type SignalLogger struct {
	*logrus.Entry
}

// NewSignalLogger creates a new signal logger.
func NewSignalLogger(baseLogger *logrus.Logger) *SignalLogger {
	return &SignalLogger{
		Entry: baseLogger.WithField("component", "signals"),
	}
}

// LogGenerationRun logs a completed signal generation pass.
func (sl *SignalLogger) LogGenerationRun(sport string, gamesEvaluated, quotesEvaluated, signalsGenerated, signalsExpired int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"sport":             sport,
		"games_evaluated":   gamesEvaluated,
		"quotes_evaluated":  quotesEvaluated,
		"signals_generated": signalsGenerated,
		"signals_expired":   signalsExpired,
		"duration_ms":       durationMs,
	}).Info("Signal generation run completed")
}

// LogSignalGenerated logs a single generated signal.
func (sl *SignalLogger) LogSignalGenerated(signalID, gameID, marketType, side, sportsbook string, edgePercent, fairProbability float64, tier string) {
	sl.WithFields(logrus.Fields{
		"signal_id":        signalID,
		"game_id":          gameID,
		"market_type":      marketType,
		"side":             side,
		"sportsbook":       sportsbook,
		"edge_percent":     edgePercent,
		"fair_probability": fairProbability,
		"confidence_tier":  tier,
	}).Info("Signal generated")
}

// LogAgentDecision logs an agent decision on a signal.
func (sl *SignalLogger) LogAgentDecision(signalID, action, reasoning string, confidence, stake float64) {
	sl.WithFields(logrus.Fields{
		"signal_id":  signalID,
		"action":     action,
		"reasoning":  reasoning,
		"confidence": confidence,
		"stake":      stake,
	}).Info("Agent decision made")
}

// LogRatingUpdate logs a rating change applied after a final score.
func (sl *SignalLogger) LogRatingUpdate(teamID string, oldElo, newElo float64, gamesPlayed int) {
	sl.WithFields(logrus.Fields{
		"team_id":      teamID,
		"old_elo":      oldElo,
		"new_elo":      newElo,
		"games_played": gamesPlayed,
	}).Debug("Team rating updated")
}
