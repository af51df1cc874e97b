package logger

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerInvalidLevelDefaultsToInfo(t *testing.T) {
	log := NewLogger("nonsense")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}

func TestSignalLoggerGenerationRun(t *testing.T) {
	log, buf := setupTestLogger()
	signalLogger := NewSignalLogger(log)

	signalLogger.LogGenerationRun("nfl", 12, 340, 5, 2, 87.5)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "nfl", logEntry["sport"])
	assert.Equal(t, "signals", logEntry["component"])
	assert.Equal(t, float64(5), logEntry["signals_generated"])
}

func TestSignalLoggerSignalGenerated(t *testing.T) {
	log, buf := setupTestLogger()
	signalLogger := NewSignalLogger(log)

	signalLogger.LogSignalGenerated(
		"sig_001",
		"game_123",
		"spread",
		"home",
		"draftkings",
		4.2,
		0.565,
		"medium",
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "sig_001", logEntry["signal_id"])
	assert.Equal(t, "medium", logEntry["confidence_tier"])
}

func TestSignalLoggerAgentDecision(t *testing.T) {
	log, buf := setupTestLogger()
	signalLogger := NewSignalLogger(log)

	signalLogger.LogAgentDecision("sig_001", "place", "PLACE: edge 4.2%", 0.72, 25.50)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "place", logEntry["action"])
	assert.Equal(t, 0.72, logEntry["confidence"])
}

func TestAuditLoggerBetPlacement(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogBetPlacement(
		"bet_123",
		"sig_001",
		"game_123",
		"moneyline",
		"home",
		10.0,
		-110,
		0.75,
		time.Date(2025, 10, 3, 12, 0, 0, 0, time.UTC),
	)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "bet_123", logEntry["bet_id"])
	assert.Equal(t, "audit", logEntry["component"])
	assert.Equal(t, float64(-110), logEntry["price_american"])
}

func TestAuditLoggerBetSettlementWithCLV(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	clv := 3.4
	auditLogger.LogBetSettlement("bet_123", "game_123", "won", 9.09, &clv)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "won", logEntry["status"])
	assert.Equal(t, 3.4, logEntry["clv_percent"])
}

func TestAuditLoggerBetSettlementWithoutCLV(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogBetSettlement("bet_123", "game_123", "push", 0, nil)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	_, present := logEntry["clv_percent"]
	assert.False(t, present)
}

func TestAuditLoggerBankrollUpdate(t *testing.T) {
	log, buf := setupTestLogger()
	auditLogger := NewAuditLogger(log)

	auditLogger.LogBankrollUpdate(1000, 1042.50, 42.50, 17)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, 1042.50, logEntry["current_balance"])
	assert.Equal(t, float64(17), logEntry["settled_bets"])
}

func TestLoggerJSONFormat(t *testing.T) {
	log, buf := setupTestLogger()
	signalLogger := NewSignalLogger(log)

	signalLogger.LogAgentDecision("sig_001", "skip", "SKIP: correlated exposure", 0, 0)

	// Verify output is valid JSON
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	assert.NoError(t, err)
	assert.NotEmpty(t, logEntry)
}

func BenchmarkSignalLoggerAgentDecision(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	signalLogger := NewSignalLogger(log)

	for i := 0; i < b.N; i++ {
		signalLogger.LogAgentDecision("sig_001", "place", "PLACE: edge 4.2%", 0.72, 25.50)
	}
}

func BenchmarkAuditLoggerBetPlacement(b *testing.B) {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	auditLogger := NewAuditLogger(log)

	for i := 0; i < b.N; i++ {
		auditLogger.LogBetPlacement(
			"bet_123",
			"sig_001",
			"game_123",
			"moneyline",
			"home",
			10.0,
			-110,
			0.75,
			time.Now(),
		)
	}
}
