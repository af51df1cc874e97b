// Package notify delivers best-effort alerts for high-edge signals. Delivery
// failures are logged and never fail the generating run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/sharpline/internal/config"
	"github.com/yourusername/sharpline/internal/models"
)

// Notifier delivers signal alerts
type Notifier interface {
	NotifySignal(ctx context.Context, sig *models.Signal, game *models.Game)
}

// SlackNotifier posts signal alerts to a Slack incoming webhook
type SlackNotifier struct {
	webhookURL      string
	minEdgeToNotify float64
	client          *retryablehttp.Client
	logger          *logrus.Logger
}

// slackPayload is the incoming-webhook message body
type slackPayload struct {
	Text string `json:"text"`
}

// NewSlackNotifier creates a Slack notifier from configuration
func NewSlackNotifier(cfg config.NotificationsConfig, logger *logrus.Logger) *SlackNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 1
	client.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	client.Logger = nil

	return &SlackNotifier{
		webhookURL:      cfg.SlackWebhookURL,
		minEdgeToNotify: cfg.MinEdgeToNotify,
		client:          client,
		logger:          logger,
	}
}

// NotifySignal posts an alert when the signal's edge clears the notify
// threshold. Errors are swallowed after logging.
func (n *SlackNotifier) NotifySignal(ctx context.Context, sig *models.Signal, game *models.Game) {
	if n.webhookURL == "" || sig.EdgePercent < n.minEdgeToNotify {
		return
	}

	payload := slackPayload{Text: formatSignalMessage(sig, game)}
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.WithField("signal_id", sig.ID).Warnf("Failed to encode notification: %v", err)
		return
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.WithField("signal_id", sig.ID).Warnf("Failed to build notification request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.WithField("signal_id", sig.ID).Warnf("Notification delivery failed: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.WithFields(logrus.Fields{
			"signal_id": sig.ID,
			"status":    resp.StatusCode,
		}).Warn("Notification rejected by webhook")
	}
}

// formatSignalMessage renders a one-line alert for a signal
func formatSignalMessage(sig *models.Signal, game *models.Game) string {
	matchup := "unknown matchup"
	if game != nil && game.HomeTeam != nil && game.AwayTeam != nil {
		matchup = fmt.Sprintf("%s @ %s", game.AwayTeam.Name, game.HomeTeam.Name)
	}

	line := ""
	if sig.LineValue != nil {
		line = fmt.Sprintf(" %+.1f", *sig.LineValue)
	}

	return fmt.Sprintf(":chart_with_upwards_trend: %s edge on %s %s%s @ %s (%+d): %.1f%% [%s]",
		sig.ConfidenceTier,
		matchup,
		sig.Side,
		line,
		sig.Sportsbook,
		sig.PriceAmerican,
		sig.EdgePercent,
		sig.MarketType,
	)
}
