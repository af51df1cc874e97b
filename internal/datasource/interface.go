package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// OddsSource defines the interface for fetching odds and results from
// external providers
type OddsSource interface {
	// FetchEvents retrieves upcoming events with bookmaker odds for a sport
	FetchEvents(ctx context.Context, sport string, lookahead time.Duration) ([]EventData, error)

	// FetchScores retrieves recent final scores for a sport
	FetchScores(ctx context.Context, sport string, daysBack int) ([]ScoreData, error)

	// Name returns the name of the odds source
	Name() string

	// IsEnabled returns whether this odds source is currently enabled
	IsEnabled() bool
}

// EventData represents a normalized upcoming event from any odds source
type EventData struct {
	SourceID           string          `json:"source_id"`            // Provider's unique event ID
	Sport              string          `json:"sport"`                // Internal sport key (nfl, nba, nhl)
	HomeTeam           string          `json:"home_team"`            // Home team name
	AwayTeam           string          `json:"away_team"`            // Away team name
	ScheduledStartTime time.Time       `json:"scheduled_start_time"` // Kickoff time UTC
	Bookmakers         []BookmakerData `json:"bookmakers"`           // Per-book odds
	CreatedAt          time.Time       `json:"created_at"`           // When data was fetched
}

// BookmakerData represents one sportsbook's markets for an event
type BookmakerData struct {
	Key        string       `json:"key"`         // Sportsbook key (e.g. "draftkings")
	LastUpdate time.Time    `json:"last_update"` // Provider's quote timestamp
	Markets    []MarketData `json:"markets"`     // Offered markets
}

// MarketData represents one market offered by a sportsbook
type MarketData struct {
	Key      string        `json:"key"`      // Market key (moneyline, spread, total)
	Outcomes []OutcomeData `json:"outcomes"` // Priced outcomes
}

// OutcomeData represents a single priced outcome
type OutcomeData struct {
	Name          string           `json:"name"`           // Team name, "Over" or "Under"
	PriceAmerican int              `json:"price_american"` // American odds
	Line          *decimal.Decimal `json:"line"`           // Spread or total line if applicable
}

// ScoreData represents a normalized final or in-progress score
type ScoreData struct {
	SourceID  string    `json:"source_id"` // Provider's unique event ID
	Sport     string    `json:"sport"`     // Internal sport key
	Completed bool      `json:"completed"` // Whether the event has finished
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore *int      `json:"home_score"` // Nil until scores are reported
	AwayScore *int      `json:"away_score"`
	UpdatedAt time.Time `json:"updated_at"` // Provider's last update time
}

// OddsSourceError represents errors from odds source operations
type OddsSourceError struct {
	Source  string // Odds source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e OddsSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

// NewOddsSourceError creates a new odds source error
func NewOddsSourceError(source, code, message string, err error) OddsSourceError {
	return OddsSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
