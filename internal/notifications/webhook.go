package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

type WebhookProvider struct {
	config *config.WebhooksConfig
	client *http.Client
}

// WebhookPayload is the JSON body POSTed to each configured endpoint.
type WebhookPayload struct {
	Event        string    `json:"event"`
	Timestamp    time.Time `json:"timestamp"`
	LogID        int64     `json:"log_id"`
	AnomalyScore float64   `json:"anomaly_score"`
	ModelName    string    `json:"model_name"`
	RuleName     string    `json:"rule_name,omitempty"`
	Summary      string    `json:"summary,omitempty"`
}

func NewWebhookProvider(cfg *config.WebhooksConfig) *WebhookProvider {
	return &WebhookProvider{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

func (wp *WebhookProvider) Name() string {
	return "webhook"
}

func (wp *WebhookProvider) IsEnabled() bool {
	return wp.config.Enabled && len(wp.config.Endpoints) > 0
}

// Send fires the notification to every configured endpoint.
func (wp *WebhookProvider) Send(notification *Notification) error {
	if !wp.IsEnabled() {
		return nil
	}

	payload := &WebhookPayload{
		Event:        "anomaly_detected",
		Timestamp:    notification.Timestamp,
		LogID:        notification.LogID,
		AnomalyScore: notification.AnomalyScore,
		ModelName:    notification.ModelName,
		RuleName:     notification.RuleName,
		Summary:      notification.Summary,
	}

	for _, endpoint := range wp.config.Endpoints {
		go wp.fireWebhook(endpoint, payload, notification)
	}

	return nil
}

// fireWebhook sends one webhook with retry.
func (wp *WebhookProvider) fireWebhook(endpoint config.WebhookEndpoint, payload *WebhookPayload, notification *Notification) {
	payloadJSON, _ := json.Marshal(payload)

	var lastErr error
	for attempt := 1; attempt <= wp.config.RetryCount; attempt++ {
		err := wp.sendWebhookRequest(endpoint, payloadJSON)
		if err == nil {
			logging.Info("[WEBHOOK] delivered to %s (log: %d, score: %.4f)", endpoint.URL, notification.LogID, notification.AnomalyScore)
			return
		}

		lastErr = err
		logging.Error("[WEBHOOK] attempt %d/%d failed for %s: %v", attempt, wp.config.RetryCount, endpoint.URL, err)

		if attempt < wp.config.RetryCount {
			time.Sleep(time.Duration(wp.config.RetryDelaySeconds) * time.Second)
		}
	}

	logging.Error("[WEBHOOK] gave up on %s after %d attempts: %v", endpoint.URL, wp.config.RetryCount, lastErr)
}

func (wp *WebhookProvider) sendWebhookRequest(endpoint config.WebhookEndpoint, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, endpoint.URL, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "anomalyd-webhook/1.0")

	if endpoint.AuthType == "bearer" && endpoint.AuthValue != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", endpoint.AuthValue))
	} else if endpoint.AuthType == "apikey" && endpoint.AuthValue != "" {
		req.Header.Set("X-API-Key", endpoint.AuthValue)
	} else if endpoint.AuthType == "basic" && endpoint.AuthValue != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Basic %s", endpoint.AuthValue))
	}

	resp, err := wp.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}
