package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/agent"
	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/logger"
	"github.com/yourusername/sharpline/internal/metrics"
	"github.com/yourusername/sharpline/internal/repository"
)

// AgentService runs the staking pass: snapshot state once, walk active
// signals best-edge first, persist every decision and any placed bets.
type AgentService struct {
	repos        *repository.Repositories
	cfg          config.AgentConfig
	logger       *logrus.Logger
	signalLogger *logger.SignalLogger
	auditLogger  *logger.AuditLogger
}

// NewAgentService creates a new agent service
func NewAgentService(repos *repository.Repositories, cfg config.AgentConfig, baseLogger *logrus.Logger) *AgentService {
	return &AgentService{
		repos:        repos,
		cfg:          cfg,
		logger:       baseLogger,
		signalLogger: logger.NewSignalLogger(baseLogger),
		auditLogger:  logger.NewAuditLogger(baseLogger),
	}
}

// Run executes one staking pass over the active signals
func (s *AgentService) Run(ctx context.Context, now time.Time) error {
	strategy, err := s.repos.Strategy.GetByName(ctx, s.cfg.StrategyName)
	if err != nil {
		return fmt.Errorf("failed to load strategy %q: %w", s.cfg.StrategyName, err)
	}
	if !strategy.Enabled {
		s.logger.WithField("strategy", strategy.Name).Warn("Strategy disabled, skipping run")
		return nil
	}

	bankroll, err := s.repos.Bankroll.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load bankroll: %w", err)
	}

	pending, err := s.repos.Bet.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to load pending bets: %w", err)
	}

	signals, err := s.repos.Signal.GetActive(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to load active signals: %w", err)
	}
	if len(signals) == 0 {
		s.logger.Info("No active signals to evaluate")
		return nil
	}

	// One lookup for every game a pending bet or candidate references
	gameIDs := make(map[uuid.UUID]struct{})
	for _, bet := range pending {
		gameIDs[bet.GameID] = struct{}{}
	}
	for _, sig := range signals {
		gameIDs[sig.GameID] = struct{}{}
	}
	ids := make([]uuid.UUID, 0, len(gameIDs))
	for id := range gameIDs {
		ids = append(ids, id)
	}
	games, err := s.repos.Game.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	clvTTL := time.Duration(s.cfg.CLVCacheTTLMinutes) * time.Minute
	clv := agent.NewCachedCLVHistory(s.repos.Signal, clvTTL)
	ag := agent.New(strategy, bankroll, pending, games, clv, s.limits(), s.logger)

	placed := 0
	evaluated := 0
	for _, sig := range signals {
		if s.cfg.MaxBetsPerRun > 0 && placed >= s.cfg.MaxBetsPerRun {
			break
		}
		evaluated++

		decision, bet := ag.Evaluate(ctx, sig, now)

		// The decision row is the audit trail for the bet. No durable
		// decision, no bet.
		if err := s.repos.Decision.Insert(ctx, decision); err != nil {
			s.logger.WithField("signal_id", sig.ID).Errorf("Failed to persist decision: %v", err)
			if bet != nil {
				metrics.RecordBetSkipped("audit_failure")
			}
			continue
		}
		s.signalLogger.LogAgentDecision(
			sig.ID.String(), string(decision.Action), decision.Reasoning,
			decision.ConfidenceScore, decision.ActualStake,
		)

		if bet == nil {
			metrics.RecordBetSkipped(categorizeSkip(decision.Reasoning))
			continue
		}

		if err := s.repos.Bet.Create(ctx, bet); err != nil {
			s.logger.WithField("bet_id", bet.ID).Errorf("Failed to persist bet: %v", err)
			continue
		}
		if err := s.repos.Signal.MarkConsumed(ctx, sig.ID); err != nil {
			s.logger.WithField("signal_id", sig.ID).Errorf("Failed to mark signal consumed: %v", err)
		}

		s.auditLogger.LogBetPlacement(
			bet.ID.String(), bet.SignalID.String(), bet.GameID.String(),
			string(bet.MarketType), string(bet.Side),
			bet.Stake, bet.PriceAmerican, decision.ConfidenceScore, now,
		)
		metrics.RecordBetPlaced()
		placed++
	}

	exposure := 0.0
	for _, bet := range ag.PendingBets() {
		exposure += bet.Stake
	}
	metrics.UpdateExposure(exposure)
	metrics.UpdateBankroll(bankroll.Balance)

	s.logger.WithFields(logrus.Fields{
		"signals_evaluated": evaluated,
		"bets_placed":       placed,
		"pending_exposure":  exposure,
	}).Info("Agent run complete")

	return nil
}

// limits maps configured overrides onto the built-in agent limits
func (s *AgentService) limits() agent.Limits {
	limits := agent.DefaultLimits()
	if s.cfg.MinStakeDollars > 0 {
		limits.MinStakeDollars = s.cfg.MinStakeDollars
	}
	if s.cfg.MaxTotalExposurePct > 0 {
		limits.MaxExposurePct = s.cfg.MaxTotalExposurePct
	}
	return limits
}

// categorizeSkip buckets free-form skip reasoning into bounded metric labels
func categorizeSkip(reasoning string) string {
	switch {
	case strings.Contains(reasoning, "expired"):
		return "expired"
	case strings.Contains(reasoning, "edge"):
		return "edge_below_minimum"
	case strings.Contains(reasoning, "tier"):
		return "tier_below_minimum"
	case strings.Contains(reasoning, "correlation"):
		return "correlated_exposure"
	case strings.Contains(reasoning, "stake"):
		return "stake_too_small"
	case strings.Contains(reasoning, "exposure"), strings.Contains(reasoning, "limit"), strings.Contains(reasoning, "cap"):
		return "bankroll_limit"
	}
	return "other"
}
