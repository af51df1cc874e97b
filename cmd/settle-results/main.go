// Package main provides a one-shot settlement run: fetch recent results,
// settle bets on final games, update ratings, and recompute the bankroll.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/datasource"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/service"
)

func main() {
	var (
		configPath string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:          "settle-results",
		Short:        "Settle bets on final games and recompute the bankroll",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
				if err := config.LoadSecretsFromAWS(cfg, os.Getenv("AWS_REGION"), os.Getenv("AWS_SECRET_NAME")); err != nil {
					return err
				}
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			appLog := logger.NewLogger(cfg.App.LogLevel)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			db, err := database.Initialize(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			repos, err := repository.NewRepositories(db)
			if err != nil {
				return err
			}
			source, err := datasource.NewFactory(cfg, appLog).NewOddsSource(cfg.OddsAPI)
			if err != nil {
				return err
			}

			ingestion := service.NewIngestionService(source, repos, cfg.OddsAPI, appLog)
			svc := service.NewSettlementService(repos, ingestion, cfg.Settlement, appLog)
			return svc.Run(ctx, time.Now().UTC())
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "run timeout")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("Settlement failed: %v", err)
	}
}
