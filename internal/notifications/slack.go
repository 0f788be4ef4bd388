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

type SlackProvider struct {
	config *config.SlackProviderConfig
	client *http.Client
}

func NewSlackProvider(cfg *config.SlackProviderConfig) *SlackProvider {
	return &SlackProvider{
		config: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (sp *SlackProvider) Name() string {
	return "slack"
}

func (sp *SlackProvider) IsEnabled() bool {
	return sp.config.Enabled && sp.config.WebhookURL != "" && sp.config.WebhookURL != "${SLACK_WEBHOOK_URL}"
}

func (sp *SlackProvider) Send(notification *Notification) error {
	if !sp.IsEnabled() {
		return nil
	}

	payload := sp.buildSlackPayload(notification)

	if err := sp.sendToSlack(payload); err != nil {
		logging.Error("[SLACK] failed to send message: %v", err)
		return err
	}

	logging.Info("[SLACK] message sent (log: %d, score: %.4f)", notification.LogID, notification.AnomalyScore)
	return nil
}

func (sp *SlackProvider) sendToSlack(payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, sp.config.WebhookURL, bytes.NewBuffer(payloadJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "anomalyd/1.0")

	resp, err := sp.client.Do(req)
	if err != nil {
		return fmt.Errorf("Slack webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Slack webhook returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

func (sp *SlackProvider) buildSlackPayload(notification *Notification) map[string]interface{} {
	color := "#ff6600"
	emoji := ":warning:"
	if notification.AnomalyScore >= 0.9 {
		color = "#ff0000"
		emoji = ":rotating_light:"
	}

	fields := []map[string]interface{}{
		{
			"title": "Log ID",
			"value": fmt.Sprintf("%d", notification.LogID),
			"short": true,
		},
		{
			"title": "Anomaly Score",
			"value": fmt.Sprintf("%.4f", notification.AnomalyScore),
			"short": true,
		},
		{
			"title": "Model",
			"value": notification.ModelName,
			"short": true,
		},
	}

	if notification.RuleName != "" {
		fields = append(fields, map[string]interface{}{
			"title": "Matched Rule",
			"value": notification.RuleName,
			"short": true,
		})
	}

	if notification.Summary != "" {
		fields = append(fields, map[string]interface{}{
			"title": "Log Text",
			"value": fmt.Sprintf("`%s`", notification.Summary),
			"short": false,
		})
	}

	fields = append(fields, map[string]interface{}{
		"title": "Timestamp",
		"value": notification.Timestamp.Format("2006-01-02 15:04:05 MST"),
		"short": false,
	})

	attachment := map[string]interface{}{
		"fallback": fmt.Sprintf("Anomaly detected: log %d scored %.4f", notification.LogID, notification.AnomalyScore),
		"color":    color,
		"title":    fmt.Sprintf("%s Audit Log Anomaly", emoji),
		"fields":   fields,
		"ts":       notification.Timestamp.Unix(),
	}

	return map[string]interface{}{
		"username":    "Audit Anomaly Service",
		"icon_emoji":  ":mag:",
		"attachments": []map[string]interface{}{attachment},
	}
}
