// Package main provides a one-shot odds ingestion run: fetch upcoming events
// from the provider, upsert teams and games, and append quote snapshots.
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
		results    bool
		daysBack   int
	)

	cmd := &cobra.Command{
		Use:          "ingest-odds",
		Short:        "Fetch upcoming events and odds from the provider",
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

			var runMetrics *service.RunMetrics
			if results {
				runMetrics, err = ingestion.IngestResults(ctx, daysBack)
			} else {
				runMetrics, err = ingestion.IngestOdds(ctx)
			}
			if err != nil {
				return err
			}
			appLog.Info(runMetrics.String())
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "run timeout")
	cmd.Flags().BoolVar(&results, "results", false, "fetch final scores instead of odds")
	cmd.Flags().IntVar(&daysBack, "days-back", 3, "lookback window in days for --results")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}
}
