package notifications

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"FinEdge/internal/domain/models"
	"FinEdge/pkg/config"
	pkghttp "FinEdge/pkg/http"
	"FinEdge/pkg/logger"
)

// WebhookNotifier posts high-conviction signals to a configured webhook.
// Signals below the edge threshold are dropped silently.
type WebhookNotifier struct {
	cfg  config.AlertsConfig
	http *pkghttp.Client
	log  *logger.Logger
}

type alertPayload struct {
	Bot       string    `json:"bot"`
	Symbol    string    `json:"symbol"`
	Signal    string    `json:"signal"`
	EdgeScore float64   `json:"edge_score"`
	MLScore   float64   `json:"ml_score"`
	TAScore   float64   `json:"ta_score"`
	Sentiment float64   `json:"sentiment_score"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewWebhookNotifier(cfg config.AlertsConfig, log *logger.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		cfg:  cfg,
		http: pkghttp.NewClient(pkghttp.WithTimeout(10 * time.Second)),
		log:  log,
	}
}

// NotifySignal dispatches sig if alerting is enabled and the edge score
// clears the configured threshold. Delivery failures are logged; alerting
// never blocks signal generation.
func (n *WebhookNotifier) NotifySignal(ctx context.Context, sig models.Signal) {
	if !n.cfg.Enabled || n.cfg.WebhookURL == "" {
		return
	}
	if math.Abs(sig.EdgeScore) < n.cfg.MinEdge {
		return
	}

	payload := alertPayload{
		Bot:       n.cfg.BotName,
		Symbol:    sig.Symbol,
		Signal:    string(sig.Class),
		EdgeScore: sig.EdgeScore,
		MLScore:   sig.MLScore,
		TAScore:   sig.TAScore,
		Sentiment: sig.SentimentScore,
		Text: fmt.Sprintf("%s: %s (edge %.1f, ml %.1f, ta %.1f, sent %.1f)",
			sig.Symbol, sig.Class, sig.EdgeScore, sig.MLScore, sig.TAScore, sig.SentimentScore),
		CreatedAt: sig.CreatedAt,
	}

	resp, err := n.http.SendRequest(ctx, &pkghttp.RequestOptions{
		Method:  http.MethodPost,
		URL:     n.cfg.WebhookURL,
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    payload,
	})
	if err != nil {
		n.log.Error("webhook dispatch failed",
			logger.String("symbol", sig.Symbol), logger.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.log.Error("webhook dispatch failed",
			logger.String("symbol", sig.Symbol),
			logger.Int("status", resp.StatusCode))
		return
	}

	n.log.Info("alert dispatched",
		logger.String("symbol", sig.Symbol),
		logger.String("signal", string(sig.Class)),
		logger.Float64("edge_score", sig.EdgeScore))
}
