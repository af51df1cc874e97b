package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/sharpline/internal/datasource"
	"github.com/yourusername/sharpline/internal/models"
)

// EventNormalizer converts provider event payloads into domain entities.
// Provider team names double as external IDs since the odds feed carries no
// stable team identifiers.
type EventNormalizer struct{}

// NewEventNormalizer creates a normalizer
func NewEventNormalizer() *EventNormalizer {
	return &EventNormalizer{}
}

// TeamExternalID builds the durable external identity for a team
func TeamExternalID(sport, name string) string {
	return sport + ":" + strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// NormalizeTeams builds the home and away team entities for an event
func (n *EventNormalizer) NormalizeTeams(event *datasource.EventData) (home, away *models.Team) {
	now := time.Now().UTC()
	home = &models.Team{
		ID:         uuid.New(),
		ExternalID: TeamExternalID(event.Sport, event.HomeTeam),
		Name:       event.HomeTeam,
		Sport:      event.Sport,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	away = &models.Team{
		ID:         uuid.New(),
		ExternalID: TeamExternalID(event.Sport, event.AwayTeam),
		Name:       event.AwayTeam,
		Sport:      event.Sport,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return home, away
}

// NormalizeGame builds the game entity for an event. Team IDs must come from
// the persisted team rows, not the transient ones NormalizeTeams returns.
func (n *EventNormalizer) NormalizeGame(event *datasource.EventData, homeTeamID, awayTeamID uuid.UUID) *models.Game {
	now := time.Now().UTC()
	return &models.Game{
		ID:          uuid.New(),
		ExternalID:  event.SourceID,
		Sport:       event.Sport,
		HomeTeamID:  homeTeamID,
		AwayTeamID:  awayTeamID,
		ScheduledAt: event.ScheduledStartTime,
		Status:      models.GameStatusScheduled,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NormalizeQuotes flattens an event's bookmaker odds into quote rows for the
// given game. Outcomes whose selection cannot be resolved are dropped with an
// error describing the first failure.
func (n *EventNormalizer) NormalizeQuotes(event *datasource.EventData, game *models.Game) ([]*models.OddsQuote, error) {
	var quotes []*models.OddsQuote
	var firstErr error

	for _, book := range event.Bookmakers {
		for _, market := range book.Markets {
			marketType := models.MarketType(market.Key)
			for _, outcome := range market.Outcomes {
				side, err := resolveSide(marketType, outcome.Name, event)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					continue
				}

				quote := &models.OddsQuote{
					ID:            uuid.New(),
					GameID:        game.ID,
					MarketType:    marketType,
					Side:          side,
					SelectionText: outcome.Name,
					PriceAmerican: outcome.PriceAmerican,
					Sportsbook:    book.Key,
					ObservedAt:    book.LastUpdate,
				}
				if outcome.Line != nil {
					line := outcome.Line.InexactFloat64()
					quote.LineValue = &line
				}
				quotes = append(quotes, quote)
			}
		}
	}

	return quotes, firstErr
}

// resolveSide maps a provider outcome name to a structured selection side
func resolveSide(market models.MarketType, name string, event *datasource.EventData) (models.SelectionSide, error) {
	if market == models.MarketTotal {
		switch strings.ToLower(name) {
		case "over":
			return models.SideOver, nil
		case "under":
			return models.SideUnder, nil
		}
		return "", fmt.Errorf("unresolvable total selection %q", name)
	}

	switch name {
	case event.HomeTeam:
		return models.SideHome, nil
	case event.AwayTeam:
		return models.SideAway, nil
	}
	return "", fmt.Errorf("selection %q matches neither %q nor %q", name, event.HomeTeam, event.AwayTeam)
}
