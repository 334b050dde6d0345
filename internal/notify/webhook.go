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

	"github.com/yourusername/stock-scout/internal/models"
)

// WebhookNotifier posts JSON payloads to a configured endpoint,
// compatible with Slack-style incoming webhooks.
type WebhookNotifier struct {
	url    string
	client *retryablehttp.Client
	logger *logrus.Logger
}

// NewWebhookNotifier builds a webhook notifier with bounded retries.
func NewWebhookNotifier(url string, logger *logrus.Logger) *WebhookNotifier {
	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	return &WebhookNotifier{url: url, client: client, logger: logger}
}

type webhookPayload struct {
	Text    string `json:"text"`
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

func (w *WebhookNotifier) NotifyMemoCreated(ctx context.Context, memo *models.InvestmentMemo) error {
	return w.post(ctx, webhookPayload{
		Text:  memoSubject(memo),
		Event: "memo_created",
		Payload: map[string]any{
			"memo_id":       memo.ID,
			"ticker":        memo.Ticker,
			"analyst":       memo.Analyst,
			"signal":        memo.Signal,
			"conviction":    memo.Conviction,
			"current_price": memo.CurrentPrice,
			"target_price":  memo.TargetPrice,
		},
	})
}

func (w *WebhookNotifier) NotifyScanCompleted(ctx context.Context, summary models.ScanSummary) error {
	return w.post(ctx, webhookPayload{
		Text:    scanSubject(summary),
		Event:   "scan_completed",
		Payload: summary,
	})
}

func (w *WebhookNotifier) post(ctx context.Context, payload webhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	w.logger.WithField("event", payload.Event).Debug("Webhook delivered")
	return nil
}
