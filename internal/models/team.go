package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a team in a tracked league
type Team struct {
	ID         uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	ExternalID string    `db:"external_id" json:"external_id" validate:"required"`
	Name       string    `db:"name" json:"name" validate:"required"`
	Sport      string    `db:"sport" json:"sport" validate:"required"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DefaultRating is the ELO rating assigned to teams with no game history
const DefaultRating = 1500.0

// TeamRating holds the strength state for one team. Ratings are written only
// by the settlement engine after a completed game; never deleted.
type TeamRating struct {
	TeamID          uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid4"`
	Rating          float64   `db:"rating" json:"rating"`
	OffensiveRating float64   `db:"offensive_rating" json:"offensive_rating"`
	DefensiveRating float64   `db:"defensive_rating" json:"defensive_rating"`
	GamesPlayed     int       `db:"games_played" json:"games_played"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// HasSufficientSample reports whether the team has enough completed games
// for its rating to be considered reliable.
func (r *TeamRating) HasSufficientSample(minGames int) bool {
	return r.GamesPlayed >= minGames
}
