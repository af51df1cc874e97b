// Package main provides a one-shot staking agent run: evaluate active
// signals against the configured strategy and place paper bets.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/database"
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
		Use:          "bet-agent",
		Short:        "Run the staking agent over active signals",
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

			svc := service.NewAgentService(repos, cfg.Agent, appLog)
			return svc.Run(ctx, time.Now().UTC())
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")
	cmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "run timeout")

	if err := cmd.Execute(); err != nil {
		log.Fatalf("Agent run failed: %v", err)
	}
}
