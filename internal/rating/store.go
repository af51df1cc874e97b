// Package rating implements the ELO-style team strength model and the
// per-run rating store that backs it.
package rating

import (
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/sharpline/internal/models"
)

// Store holds team ratings for the duration of one run. The caller loads it
// from persistence at the start of a run, passes it to the model, and writes
// the dirty entries back at the end. There is no package-level rating state.
type Store struct {
	ratings map[uuid.UUID]*models.TeamRating
	dirty   map[uuid.UUID]bool
}

// NewStore creates a store seeded with previously persisted ratings
func NewStore(ratings []*models.TeamRating) *Store {
	s := &Store{
		ratings: make(map[uuid.UUID]*models.TeamRating, len(ratings)),
		dirty:   make(map[uuid.UUID]bool),
	}
	for _, r := range ratings {
		s.ratings[r.TeamID] = r
	}
	return s
}

// Get returns the rating for a team, creating a default 1500 entry for teams
// never seen before. The returned pointer is owned by the store.
func (s *Store) Get(teamID uuid.UUID) *models.TeamRating {
	if r, ok := s.ratings[teamID]; ok {
		return r
	}
	r := &models.TeamRating{
		TeamID: teamID,
		Rating: models.DefaultRating,
	}
	s.ratings[teamID] = r
	return r
}

// Rating returns the current ELO rating for a team without creating an entry
func (s *Store) Rating(teamID uuid.UUID) float64 {
	if r, ok := s.ratings[teamID]; ok {
		return r.Rating
	}
	return models.DefaultRating
}

// GamesPlayed returns the completed-game count for a team
func (s *Store) GamesPlayed(teamID uuid.UUID) int {
	if r, ok := s.ratings[teamID]; ok {
		return r.GamesPlayed
	}
	return 0
}

// MarkDirty flags a team's rating as modified during this run
func (s *Store) MarkDirty(teamID uuid.UUID, at time.Time) {
	if r, ok := s.ratings[teamID]; ok {
		r.UpdatedAt = at
	}
	s.dirty[teamID] = true
}

// Dirty returns the ratings modified during this run, for persisting back
func (s *Store) Dirty() []*models.TeamRating {
	out := make([]*models.TeamRating, 0, len(s.dirty))
	for teamID := range s.dirty {
		if r, ok := s.ratings[teamID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of teams tracked by the store
func (s *Store) Len() int {
	return len(s.ratings)
}
