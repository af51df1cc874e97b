package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const dataSourceDisabledMsg = "odds source is disabled"

// sportKeys maps internal sport keys to the provider's sport identifiers
var sportKeys = map[string]string{
	"nfl": "americanfootball_nfl",
	"nba": "basketball_nba",
	"nhl": "icehockey_nhl",
}

// marketKeys maps the provider's market keys to internal market keys
var marketKeys = map[string]string{
	"h2h":     "moneyline",
	"spreads": "spread",
	"totals":  "total",
}

// TheOddsAPIClient implements OddsSource for The Odds API
type TheOddsAPIClient struct {
	httpClient  *RateLimitedHTTPClient
	baseURL     string
	apiKey      string
	sportsbooks []string
	enabled     bool
	logger      *logrus.Logger
}

// oddsAPIEvent represents an event from The Odds API odds endpoint
type oddsAPIEvent struct {
	ID           string              `json:"id"`
	SportKey     string              `json:"sport_key"`
	CommenceTime string              `json:"commence_time"`
	HomeTeam     string              `json:"home_team"`
	AwayTeam     string              `json:"away_team"`
	Bookmakers   []oddsAPIBookmaker  `json:"bookmakers"`
}

type oddsAPIBookmaker struct {
	Key        string          `json:"key"`
	LastUpdate string          `json:"last_update"`
	Markets    []oddsAPIMarket `json:"markets"`
}

type oddsAPIMarket struct {
	Key      string           `json:"key"`
	Outcomes []oddsAPIOutcome `json:"outcomes"`
}

type oddsAPIOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point"`
}

// oddsAPIScore represents an event from The Odds API scores endpoint
type oddsAPIScore struct {
	ID           string              `json:"id"`
	SportKey     string              `json:"sport_key"`
	Completed    bool                `json:"completed"`
	HomeTeam     string              `json:"home_team"`
	AwayTeam     string              `json:"away_team"`
	Scores       []oddsAPITeamScore  `json:"scores"`
	LastUpdate   *string             `json:"last_update"`
}

type oddsAPITeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// NewTheOddsAPIClient creates a new client for The Odds API
func NewTheOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, sportsbooks []string, enabled bool, logger *logrus.Logger) *TheOddsAPIClient {
	if baseURL == "" {
		baseURL = "https://api.the-odds-api.com/v4"
	}
	return &TheOddsAPIClient{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      apiKey,
		sportsbooks: sportsbooks,
		enabled:     enabled,
		logger:      logger,
	}
}

// FetchEvents retrieves upcoming events with bookmaker odds for a sport
func (c *TheOddsAPIClient) FetchEvents(ctx context.Context, sport string, lookahead time.Duration) ([]EventData, error) {
	if !c.enabled {
		return nil, NewOddsSourceError(c.Name(), ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	providerSport, ok := sportKeys[sport]
	if !ok {
		return nil, NewOddsSourceError(c.Name(), ErrCodeInvalidData, fmt.Sprintf("unsupported sport: %s", sport), nil)
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", "h2h,spreads,totals")
	params.Set("oddsFormat", "american")
	params.Set("commenceTimeTo", time.Now().UTC().Add(lookahead).Format("2006-01-02T15:04:05Z"))
	if len(c.sportsbooks) > 0 {
		params.Set("bookmakers", strings.Join(c.sportsbooks, ","))
	}

	endpoint := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, providerSport, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var apiEvents []oddsAPIEvent
	if err := json.Unmarshal(body, &apiEvents); err != nil {
		return nil, NewOddsSourceError(c.Name(), ErrCodeInvalidData, "failed to parse odds response", err)
	}

	events := make([]EventData, 0, len(apiEvents))
	for i := range apiEvents {
		event, err := c.convertEvent(sport, &apiEvents[i])
		if err != nil {
			c.logger.WithField("event_id", apiEvents[i].ID).Warnf("Skipping malformed event: %v", err)
			continue
		}
		events = append(events, *event)
	}

	return events, nil
}

// FetchScores retrieves recent final scores for a sport
func (c *TheOddsAPIClient) FetchScores(ctx context.Context, sport string, daysBack int) ([]ScoreData, error) {
	if !c.enabled {
		return nil, NewOddsSourceError(c.Name(), ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	providerSport, ok := sportKeys[sport]
	if !ok {
		return nil, NewOddsSourceError(c.Name(), ErrCodeInvalidData, fmt.Sprintf("unsupported sport: %s", sport), nil)
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("daysFrom", strconv.Itoa(daysBack))

	endpoint := fmt.Sprintf("%s/sports/%s/scores?%s", c.baseURL, providerSport, params.Encode())

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var apiScores []oddsAPIScore
	if err := json.Unmarshal(body, &apiScores); err != nil {
		return nil, NewOddsSourceError(c.Name(), ErrCodeInvalidData, "failed to parse scores response", err)
	}

	scores := make([]ScoreData, 0, len(apiScores))
	for i := range apiScores {
		scores = append(scores, c.convertScore(sport, &apiScores[i]))
	}

	return scores, nil
}

// Name returns the odds source name
func (c *TheOddsAPIClient) Name() string {
	return "the_odds_api"
}

// IsEnabled returns whether this odds source is enabled
func (c *TheOddsAPIClient) IsEnabled() bool {
	return c.enabled
}

// get executes an authenticated GET request and maps error statuses
func (c *TheOddsAPIClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, NewOddsSourceError(c.Name(), ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return nil, NewOddsSourceError(c.Name(), ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, NewOddsSourceError(c.Name(), ErrCodeAuthenticationFailed, "invalid API key", nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewOddsSourceError(c.Name(), ErrCodeRateLimitExceeded, "rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, NewOddsSourceError(c.Name(), ErrCodeNotFound, "resource not found", nil)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return nil, NewOddsSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewOddsSourceError(c.Name(), ErrCodeNetworkError, "failed to read response body", err)
	}
	return body, nil
}

// convertEvent converts a provider event to normalized EventData
func (c *TheOddsAPIClient) convertEvent(sport string, apiEvent *oddsAPIEvent) (*EventData, error) {
	if apiEvent.ID == "" || apiEvent.HomeTeam == "" || apiEvent.AwayTeam == "" {
		return nil, fmt.Errorf("missing required event fields")
	}

	commenceTime, err := time.Parse(time.RFC3339, apiEvent.CommenceTime)
	if err != nil {
		return nil, fmt.Errorf("invalid commence time %q: %w", apiEvent.CommenceTime, err)
	}

	event := &EventData{
		SourceID:           apiEvent.ID,
		Sport:              sport,
		HomeTeam:           apiEvent.HomeTeam,
		AwayTeam:           apiEvent.AwayTeam,
		ScheduledStartTime: commenceTime.UTC(),
		Bookmakers:         make([]BookmakerData, 0, len(apiEvent.Bookmakers)),
		CreatedAt:          time.Now().UTC(),
	}

	for _, apiBook := range apiEvent.Bookmakers {
		book := BookmakerData{
			Key:     apiBook.Key,
			Markets: make([]MarketData, 0, len(apiBook.Markets)),
		}
		if lastUpdate, err := time.Parse(time.RFC3339, apiBook.LastUpdate); err == nil {
			book.LastUpdate = lastUpdate.UTC()
		} else {
			book.LastUpdate = event.CreatedAt
		}

		for _, apiMarket := range apiBook.Markets {
			internalKey, ok := marketKeys[apiMarket.Key]
			if !ok {
				// Unknown markets are tolerated and skipped
				continue
			}

			market := MarketData{
				Key:      internalKey,
				Outcomes: make([]OutcomeData, 0, len(apiMarket.Outcomes)),
			}
			for _, apiOutcome := range apiMarket.Outcomes {
				if apiOutcome.Name == "" || apiOutcome.Price == 0 {
					continue
				}
				outcome := OutcomeData{
					Name:          apiOutcome.Name,
					PriceAmerican: apiOutcome.Price,
				}
				if apiOutcome.Point != nil {
					point := decimal.NewFromFloat(*apiOutcome.Point)
					outcome.Line = &point
				}
				market.Outcomes = append(market.Outcomes, outcome)
			}
			if len(market.Outcomes) > 0 {
				book.Markets = append(book.Markets, market)
			}
		}

		if len(book.Markets) > 0 {
			event.Bookmakers = append(event.Bookmakers, book)
		}
	}

	return event, nil
}

// convertScore converts a provider score entry to normalized ScoreData
func (c *TheOddsAPIClient) convertScore(sport string, apiScore *oddsAPIScore) ScoreData {
	score := ScoreData{
		SourceID:  apiScore.ID,
		Sport:     sport,
		Completed: apiScore.Completed,
		HomeTeam:  apiScore.HomeTeam,
		AwayTeam:  apiScore.AwayTeam,
		UpdatedAt: time.Now().UTC(),
	}

	if apiScore.LastUpdate != nil {
		if lastUpdate, err := time.Parse(time.RFC3339, *apiScore.LastUpdate); err == nil {
			score.UpdatedAt = lastUpdate.UTC()
		}
	}

	for _, teamScore := range apiScore.Scores {
		points, err := strconv.Atoi(teamScore.Score)
		if err != nil {
			c.logger.WithFields(logrus.Fields{
				"event_id": apiScore.ID,
				"team":     teamScore.Name,
			}).Warnf("Unparseable score value %q", teamScore.Score)
			continue
		}
		switch teamScore.Name {
		case apiScore.HomeTeam:
			score.HomeScore = &points
		case apiScore.AwayTeam:
			score.AwayScore = &points
		}
	}

	return score
}
