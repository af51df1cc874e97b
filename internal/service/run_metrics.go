package service

import (
	"fmt"
	"sync"
	"time"
)

// RunMetrics tracks statistics for one ingestion run
type RunMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	EventsFetched    int
	GamesUpserted    int
	QuotesInserted   int
	ResultsRecorded  int
	ValidationErrors int
	Errors           int
}

// NewRunMetrics creates a new metrics tracker
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *RunMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.EventsFetched = 0
	m.GamesUpserted = 0
	m.QuotesInserted = 0
	m.ResultsRecorded = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordGame increments the upserted game count
func (m *RunMetrics) RecordGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GamesUpserted++
}

// RecordQuotes adds to the inserted quote count
func (m *RunMetrics) RecordQuotes(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuotesInserted += count
}

// RecordResult increments the recorded result count
func (m *RunMetrics) RecordResult() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultsRecorded++
}

// RecordError increments the error count
func (m *RunMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments the validation error count
func (m *RunMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// String returns a formatted string representation of metrics
func (m *RunMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"RunMetrics{Events=%d, Games=%d, Quotes=%d, Results=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.EventsFetched,
		m.GamesUpserted,
		m.QuotesInserted,
		m.ResultsRecorded,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
