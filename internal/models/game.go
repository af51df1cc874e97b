package models

import (
	"time"

	"github.com/google/uuid"
)

// GameStatus represents the lifecycle state of a game
type GameStatus string

const (
	GameStatusScheduled GameStatus = "scheduled"
	GameStatusFinal     GameStatus = "final"
	GameStatusCancelled GameStatus = "cancelled"
)

// Game represents a scheduled or completed game
type Game struct {
	ID          uuid.UUID  `db:"id" json:"id" validate:"required,uuid4"`
	ExternalID  string     `db:"external_id" json:"external_id" validate:"required"`
	Sport       string     `db:"sport" json:"sport" validate:"required"`
	HomeTeamID  uuid.UUID  `db:"home_team_id" json:"home_team_id" validate:"required,uuid4"`
	AwayTeamID  uuid.UUID  `db:"away_team_id" json:"away_team_id" validate:"required,uuid4"`
	ScheduledAt time.Time  `db:"scheduled_at" json:"scheduled_at" validate:"required"`
	Status      GameStatus `db:"status" json:"status" validate:"required,oneof=scheduled final cancelled"`
	HomeScore   *int       `db:"home_score" json:"home_score"`
	AwayScore   *int       `db:"away_score" json:"away_score"`

	// RatingApplied marks that this game's final score has been fed into the
	// team strength model. Set exactly once by the settlement run.
	RatingApplied bool `db:"rating_applied" json:"rating_applied"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	HomeTeam *Team `db:"-" json:"home_team,omitempty"`
	AwayTeam *Team `db:"-" json:"away_team,omitempty"`
}

// IsUpcoming checks if the game hasn't started yet
func (g *Game) IsUpcoming() bool {
	return g.Status == GameStatusScheduled
}

// IsFinal checks if the game completed with scores recorded
func (g *Game) IsFinal() bool {
	return g.Status == GameStatusFinal && g.HomeScore != nil && g.AwayScore != nil
}

// TimeToStart returns the duration until the scheduled start
func (g *Game) TimeToStart() time.Duration {
	return time.Until(g.ScheduledAt)
}

// TotalScore returns the combined final score; zero if scores are missing
func (g *Game) TotalScore() int {
	if g.HomeScore == nil || g.AwayScore == nil {
		return 0
	}
	return *g.HomeScore + *g.AwayScore
}
