package datasource

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
)

// SourceType represents the type of odds source
type SourceType string

const (
	// The Odds API source type
	TheOddsAPISourceType SourceType = "the_odds_api"
)

// Factory creates OddsSource implementations based on configuration
type Factory struct {
	logger *logrus.Logger
	config *config.Config
}

// NewFactory creates a new odds source factory
func NewFactory(cfg *config.Config, logger *logrus.Logger) *Factory {
	return &Factory{
		logger: logger,
		config: cfg,
	}
}

// NewOddsSource creates the configured odds source with a rate-limited
// HTTP client sized from the API config
func (f *Factory) NewOddsSource(cfg config.OddsAPIConfig) (OddsSource, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("odds API key is required")
	}

	httpCfg := DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.RetryAttempts
	if cfg.RequestsPerMinute > 0 {
		httpCfg.RateLimit = float64(cfg.RequestsPerMinute) / 60.0
	}

	httpClient := NewRateLimitedHTTPClient(httpCfg, f.logger)

	return NewTheOddsAPIClient(httpClient, cfg.BaseURL, cfg.APIKey, cfg.Sportsbooks, true, f.logger), nil
}

// Create creates a new odds source based on the type
func (f *Factory) Create(sourceType SourceType) (OddsSource, error) {
	switch sourceType {
	case TheOddsAPISourceType:
		if f.config == nil {
			return nil, fmt.Errorf("odds source creation requires config")
		}
		return f.NewOddsSource(f.config.OddsAPI)
	default:
		return nil, fmt.Errorf("unknown odds source type: %s", sourceType)
	}
}
