package datasource

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
)

func factoryConfigWithKey(apiKey string) config.OddsAPIConfig {
	return config.OddsAPIConfig{
		BaseURL:           "https://api.the-odds-api.com/v4",
		APIKey:            apiKey,
		Sports:            []string{"nfl"},
		Sportsbooks:       []string{"draftkings"},
		RequestsPerMinute: 30,
		TimeoutSeconds:    10,
		RetryAttempts:     3,
		LookaheadHours:    72,
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*TheOddsAPIClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.RateLimit = 1000 // no throttling in tests
	httpCfg.MaxRetries = 0
	httpClient := NewRateLimitedHTTPClient(httpCfg, testLogger())

	client := NewTheOddsAPIClient(httpClient, server.URL, "test-key", []string{"draftkings"}, true, testLogger())
	return client, server
}

const oddsResponse = `[
  {
    "id": "evt-1",
    "sport_key": "americanfootball_nfl",
    "commence_time": "2025-10-05T17:00:00Z",
    "home_team": "Kansas City Chiefs",
    "away_team": "Buffalo Bills",
    "bookmakers": [
      {
        "key": "draftkings",
        "last_update": "2025-10-03T12:00:00Z",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": -130},
              {"name": "Buffalo Bills", "price": 110}
            ]
          },
          {
            "key": "spreads",
            "outcomes": [
              {"name": "Kansas City Chiefs", "price": -110, "point": -2.5},
              {"name": "Buffalo Bills", "price": -110, "point": 2.5}
            ]
          },
          {
            "key": "player_props_unknown",
            "outcomes": [
              {"name": "Somebody", "price": 200}
            ]
          }
        ]
      }
    ]
  }
]`

func TestFetchEventsParsesOdds(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("expected apiKey query parameter, got %q", r.URL.Query().Get("apiKey"))
		}
		if r.URL.Query().Get("oddsFormat") != "american" {
			t.Errorf("expected american odds format, got %q", r.URL.Query().Get("oddsFormat"))
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, oddsResponse)
	})

	events, err := client.FetchEvents(context.Background(), "nfl", 72*time.Hour)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.SourceID != "evt-1" {
		t.Errorf("expected source id evt-1, got %s", event.SourceID)
	}
	if event.Sport != "nfl" {
		t.Errorf("expected internal sport key nfl, got %s", event.Sport)
	}
	if event.HomeTeam != "Kansas City Chiefs" {
		t.Errorf("unexpected home team: %s", event.HomeTeam)
	}

	if len(event.Bookmakers) != 1 {
		t.Fatalf("expected 1 bookmaker, got %d", len(event.Bookmakers))
	}

	book := event.Bookmakers[0]
	// The unknown market must be dropped; h2h and spreads survive
	if len(book.Markets) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(book.Markets))
	}
	if book.Markets[0].Key != "moneyline" {
		t.Errorf("expected provider h2h mapped to moneyline, got %s", book.Markets[0].Key)
	}
	if book.Markets[1].Key != "spread" {
		t.Errorf("expected provider spreads mapped to spread, got %s", book.Markets[1].Key)
	}

	spread := book.Markets[1].Outcomes[0]
	if spread.Line == nil {
		t.Fatal("expected spread outcome to carry a line")
	}
	if spread.Line.InexactFloat64() != -2.5 {
		t.Errorf("expected line -2.5, got %s", spread.Line.String())
	}
	if spread.PriceAmerican != -110 {
		t.Errorf("expected price -110, got %d", spread.PriceAmerican)
	}
}

func TestFetchEventsUnsupportedSport(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for unsupported sport")
	})

	_, err := client.FetchEvents(context.Background(), "cricket", time.Hour)
	if err == nil {
		t.Fatal("expected error for unsupported sport")
	}

	var srcErr OddsSourceError
	if !errors.As(err, &srcErr) || srcErr.Code != ErrCodeInvalidData {
		t.Errorf("expected invalid_data error, got %v", err)
	}
}

func TestFetchEventsAuthenticationFailure(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.FetchEvents(context.Background(), "nfl", time.Hour)
	var srcErr OddsSourceError
	if !errors.As(err, &srcErr) || srcErr.Code != ErrCodeAuthenticationFailed {
		t.Errorf("expected authentication_failed error, got %v", err)
	}
}

func TestFetchEventsSkipsMalformedEvents(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id": "evt-bad", "commence_time": "not a time", "home_team": "A", "away_team": "B"},
			{"id": "", "commence_time": "2025-10-05T17:00:00Z", "home_team": "A", "away_team": "B"},
			{"id": "evt-ok", "commence_time": "2025-10-05T17:00:00Z", "home_team": "A", "away_team": "B"}
		]`)
	})

	events, err := client.FetchEvents(context.Background(), "nfl", time.Hour)
	if err != nil {
		t.Fatalf("FetchEvents failed: %v", err)
	}
	if len(events) != 1 || events[0].SourceID != "evt-ok" {
		t.Errorf("expected only the well-formed event, got %d events", len(events))
	}
}

func TestFetchScoresParsesFinals(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("daysFrom") != "2" {
			t.Errorf("expected daysFrom=2, got %q", r.URL.Query().Get("daysFrom"))
		}
		io.WriteString(w, `[
			{
				"id": "evt-1",
				"completed": true,
				"home_team": "Kansas City Chiefs",
				"away_team": "Buffalo Bills",
				"scores": [
					{"name": "Kansas City Chiefs", "score": "27"},
					{"name": "Buffalo Bills", "score": "24"}
				],
				"last_update": "2025-10-05T21:30:00Z"
			},
			{
				"id": "evt-2",
				"completed": false,
				"home_team": "Dallas Cowboys",
				"away_team": "New York Giants",
				"scores": null
			}
		]`)
	})

	scores, err := client.FetchScores(context.Background(), "nfl", 2)
	if err != nil {
		t.Fatalf("FetchScores failed: %v", err)
	}

	if len(scores) != 2 {
		t.Fatalf("expected 2 score entries, got %d", len(scores))
	}

	final := scores[0]
	if !final.Completed {
		t.Error("expected first event to be completed")
	}
	if final.HomeScore == nil || *final.HomeScore != 27 {
		t.Errorf("expected home score 27, got %v", final.HomeScore)
	}
	if final.AwayScore == nil || *final.AwayScore != 24 {
		t.Errorf("expected away score 24, got %v", final.AwayScore)
	}

	inProgress := scores[1]
	if inProgress.Completed || inProgress.HomeScore != nil {
		t.Error("expected second event to be incomplete with no scores")
	}
}

func TestFetchEventsDisabledSource(t *testing.T) {
	httpCfg := DefaultHTTPClientConfig()
	httpClient := NewRateLimitedHTTPClient(httpCfg, testLogger())
	client := NewTheOddsAPIClient(httpClient, "", "key", nil, false, testLogger())

	_, err := client.FetchEvents(context.Background(), "nfl", time.Hour)
	if err == nil {
		t.Fatal("expected error from disabled source")
	}
}

func TestHTTPClientRateLimit(t *testing.T) {
	cfg := DefaultHTTPClientConfig()
	cfg.RateLimit = 10 // 10 req/s
	client := NewRateLimitedHTTPClient(cfg, testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// First wait consumes the initial token
	if err := client.limiter.Wait(ctx); err != nil {
		t.Fatalf("initial wait failed: %v", err)
	}

	// Measure time for the next 10 sequential requests
	start := time.Now()
	for i := 0; i < 10; i++ {
		if err := client.limiter.Wait(ctx); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	// Should take approximately 1 second (10 requests at 10 req/s)
	if elapsed < 800*time.Millisecond || elapsed > 1500*time.Millisecond {
		t.Errorf("expected duration ~1s, got %v", elapsed)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	factory := NewFactory(nil, testLogger())

	_, err := factory.NewOddsSource(factoryConfigWithKey(""))
	if err == nil {
		t.Fatal("expected error for missing API key")
	}

	source, err := factory.NewOddsSource(factoryConfigWithKey("some-key"))
	if err != nil {
		t.Fatalf("expected source creation to succeed, got %v", err)
	}
	if source.Name() != "the_odds_api" {
		t.Errorf("unexpected source name: %s", source.Name())
	}
}

func TestFactoryCreateUnknownType(t *testing.T) {
	factory := NewFactory(nil, testLogger())
	if _, err := factory.Create(SourceType("unknown")); err == nil {
		t.Error("expected error for unknown source type")
	}
}
