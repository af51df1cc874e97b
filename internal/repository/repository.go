// Package repository implements PostgreSQL persistence for all domain
// entities. Natural keys (external IDs, names, signal keys) are the durable
// identity; surrogate UUIDs are not assumed stable across runs.
package repository

import (
	"fmt"

	"github.com/yourusername/sharpline/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team     TeamRepository
	Game     GameRepository
	Odds     OddsRepository
	Signal   SignalRepository
	Bet      BetRepository
	Decision DecisionRepository
	Bankroll BankrollRepository
	Strategy StrategyRepository
	Rating   RatingRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:     NewPostgresTeamRepository(db),
		Game:     NewPostgresGameRepository(db),
		Odds:     NewPostgresOddsRepository(db),
		Signal:   NewPostgresSignalRepository(db),
		Bet:      NewPostgresBetRepository(db),
		Decision: NewPostgresDecisionRepository(db),
		Bankroll: NewPostgresBankrollRepository(db),
		Strategy: NewPostgresStrategyRepository(db),
		Rating:   NewPostgresRatingRepository(db),
	}, nil
}
