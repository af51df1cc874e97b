// Package config provides configuration management for the Sharpline engine.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	OddsAPI       OddsAPIConfig       `mapstructure:"odds_api" validate:"required"`
	Signals       SignalsConfig       `mapstructure:"signals" validate:"required"`
	Agent         AgentConfig         `mapstructure:"agent" validate:"required"`
	Settlement    SettlementConfig    `mapstructure:"settlement" validate:"required"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
	Jobs          JobsConfig          `mapstructure:"jobs" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// OddsAPIConfig represents the odds data source configuration
type OddsAPIConfig struct {
	BaseURL           string   `mapstructure:"base_url" validate:"required,url"`
	APIKey            string   `mapstructure:"api_key" validate:"required"`
	Sports            []string `mapstructure:"sports" validate:"required,min=1,sports"`
	Sportsbooks       []string `mapstructure:"sportsbooks" validate:"required,min=1"`
	RequestsPerMinute int      `mapstructure:"requests_per_minute" validate:"required,gt=0"`
	TimeoutSeconds    int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int      `mapstructure:"retry_attempts" validate:"required,gte=0"`
	LookaheadHours    int      `mapstructure:"lookahead_hours" validate:"required,gt=0"`
}

// SignalsConfig represents signal generation thresholds. Edges are percentages.
type SignalsConfig struct {
	MinEdgeSides   float64 `mapstructure:"min_edge_sides" validate:"required,gt=0"`
	MinEdgeProps   float64 `mapstructure:"min_edge_props" validate:"required,gt=0"`
	MaxEdge        float64 `mapstructure:"max_edge" validate:"required,gt=0"`
	KellyFraction  float64 `mapstructure:"kelly_fraction" validate:"required,gt=0,lte=1"`
	MinSampleGames int     `mapstructure:"min_sample_games" validate:"required,gte=0"`
	ModelVersion   string  `mapstructure:"model_version" validate:"required"`
}

// AgentConfig represents staking agent configuration
type AgentConfig struct {
	StrategyName       string `mapstructure:"strategy_name" validate:"required"`
	MaxBetsPerRun      int    `mapstructure:"max_bets_per_run" validate:"required,gt=0"`
	CLVCacheTTLMinutes int    `mapstructure:"clv_cache_ttl_minutes" validate:"required,gt=0"`

	// MinStakeDollars and MaxTotalExposurePct override the built-in agent
	// limits when set; zero values fall back to the defaults.
	MinStakeDollars     float64 `mapstructure:"min_stake_dollars" validate:"gte=0"`
	MaxTotalExposurePct float64 `mapstructure:"max_total_exposure_pct" validate:"gte=0,lte=100"`
}

// SettlementConfig represents settlement configuration
type SettlementConfig struct {
	CLVWindowMinutes int `mapstructure:"clv_window_minutes" validate:"required,gt=0"`
}

// NotificationsConfig represents the notification sink. Notification failure
// never fails a run, so everything here is optional.
type NotificationsConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	SlackWebhookURL string  `mapstructure:"slack_webhook_url"`
	MinEdgeToNotify float64 `mapstructure:"min_edge_to_notify"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// JobsConfig holds the cron schedules for the periodic batch jobs
type JobsConfig struct {
	OddsIngestionSchedule    string `mapstructure:"odds_ingestion_schedule" validate:"required"`
	SignalGenerationSchedule string `mapstructure:"signal_generation_schedule" validate:"required"`
	AgentSchedule            string `mapstructure:"agent_schedule" validate:"required"`
	SettlementSchedule       string `mapstructure:"settlement_schedule" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// OddsAPITimeout returns the odds API request timeout as a duration
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// LookaheadWindow returns how far ahead games are ingested and evaluated
func (c *Config) LookaheadWindow() time.Duration {
	return time.Duration(c.OddsAPI.LookaheadHours) * time.Hour
}

// CLVWindow returns the pre-kickoff window in which a quote counts as the close
func (c *Config) CLVWindow() time.Duration {
	return time.Duration(c.Settlement.CLVWindowMinutes) * time.Minute
}

// CLVCacheTTL returns the agent's CLV-history cache lifetime
func (c *Config) CLVCacheTTL() time.Duration {
	return time.Duration(c.Agent.CLVCacheTTLMinutes) * time.Minute
}
