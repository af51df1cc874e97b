// Package main provides the entry point for the Sharpline engine daemon. It
// runs the odds ingestion, signal generation, staking, and settlement jobs on
// their configured schedules alongside health and metrics endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/database"
	"github.com/yourusername/sharpline/internal/datasource"
	"github.com/yourusername/sharpline/internal/health"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/notify"
	"github.com/yourusername/sharpline/internal/repository"
	"github.com/yourusername/sharpline/internal/scheduler"
	"github.com/yourusername/sharpline/internal/service"
)

// Set at build time via -ldflags
var (
	version = "dev"
	commit  = "unknown"
)

const jobTimeout = 10 * time.Minute

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     version,
		"commit":      commit,
	}).Info("Sharpline engine starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	factory := datasource.NewFactory(cfg, appLog)
	source, err := factory.NewOddsSource(cfg.OddsAPI)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize odds source")
	}

	var notifier notify.Notifier
	if cfg.Notifications.Enabled {
		notifier = notify.NewSlackNotifier(cfg.Notifications, appLog)
		appLog.Info("Slack notifications enabled")
	}

	ingestion := service.NewIngestionService(source, repos, cfg.OddsAPI, appLog)
	signals := service.NewSignalService(repos, cfg.Signals, cfg.OddsAPI.Sports, cfg.LookaheadWindow(), notifier, appLog)
	agentSvc := service.NewAgentService(repos, cfg.Agent, appLog)
	settlementSvc := service.NewSettlementService(repos, ingestion, cfg.Settlement, appLog)

	sched := scheduler.NewScheduler(appLog)
	jobs := []struct {
		name     string
		schedule string
		run      scheduler.JobFunc
	}{
		{"odds-ingestion", cfg.Jobs.OddsIngestionSchedule, func(ctx context.Context) error {
			_, err := ingestion.IngestOdds(ctx)
			return err
		}},
		{"signal-generation", cfg.Jobs.SignalGenerationSchedule, func(ctx context.Context) error {
			return signals.Run(ctx, time.Now().UTC())
		}},
		{"staking-agent", cfg.Jobs.AgentSchedule, func(ctx context.Context) error {
			return agentSvc.Run(ctx, time.Now().UTC())
		}},
		{"settlement", cfg.Jobs.SettlementSchedule, func(ctx context.Context) error {
			return settlementSvc.Run(ctx, time.Now().UTC())
		}},
	}
	for _, job := range jobs {
		if err := sched.AddJob(job.name, job.schedule, jobTimeout, job.run); err != nil {
			appLog.WithError(err).Fatalf("Failed to register job %s", job.name)
		}
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     version,
		Commit:      commit,
		Logger:      appLog,
		DB:          db,
	})
	healthServer.RegisterCheck("odds_source", func(ctx context.Context) error {
		if !source.IsEnabled() {
			return fmt.Errorf("odds source %s is disabled", source.Name())
		}
		return nil
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server listening")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server failed")
			}
		}()
	}

	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	healthServer.SetReady(true)

	appLog.WithFields(logrus.Fields{
		"sports":   cfg.OddsAPI.Sports,
		"strategy": cfg.Agent.StrategyName,
		"next_run": sched.GetNextRun(),
	}).Info("Sharpline engine running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error stopping scheduler")
	}
	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error stopping metrics server")
		}
		shutdownCancel()
	}
	if err := healthServer.Shutdown(); err != nil {
		appLog.WithError(err).Error("Error stopping health server")
	}
	cancel()

	appLog.Info("Sharpline engine shut down")
}
