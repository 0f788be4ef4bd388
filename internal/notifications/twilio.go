package notifications

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

type TwilioProvider struct {
	config *config.TwilioProviderConfig
	client *http.Client
}

func NewTwilioProvider(cfg *config.TwilioProviderConfig) *TwilioProvider {
	return &TwilioProvider{
		config: cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (tp *TwilioProvider) Name() string {
	return "twilio"
}

func (tp *TwilioProvider) IsEnabled() bool {
	return tp.config.Enabled && tp.config.AccountSID != "" && tp.config.AuthToken != ""
}

func (tp *TwilioProvider) Send(notification *Notification) error {
	if !tp.IsEnabled() {
		return nil
	}

	if tp.config.FromNumber == "" {
		logging.Error("[TWILIO] no sender phone number configured")
		return fmt.Errorf("no sender phone number configured")
	}

	message := tp.buildSMSMessage(notification)

	if err := tp.sendSMS(tp.config.ToNumber, message); err != nil {
		logging.Error("[TWILIO] failed to send SMS: %v", err)
		return err
	}

	logging.Info("[TWILIO] SMS sent (log: %d, score: %.4f)", notification.LogID, notification.AnomalyScore)
	return nil
}

func (tp *TwilioProvider) sendSMS(toNumber, message string) error {
	apiURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", tp.config.AccountSID)

	data := url.Values{}
	data.Set("From", tp.config.FromNumber)
	data.Set("To", toNumber)
	data.Set("Body", message)

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(tp.config.AccountSID, tp.config.AuthToken)

	resp, err := tp.client.Do(req)
	if err != nil {
		return fmt.Errorf("SMS request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Error("[TWILIO] API response (%d): %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("Twilio API returned status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return nil
}

// buildSMSMessage keeps the alert within a single 160-char SMS segment.
func (tp *TwilioProvider) buildSMSMessage(notification *Notification) string {
	message := fmt.Sprintf(
		"anomalyd alert: log %d scored %.4f (%s) at %s",
		notification.LogID,
		notification.AnomalyScore,
		notification.ModelName,
		notification.Timestamp.Format("15:04 MST"),
	)

	if len(message) > 160 {
		message = message[:157] + "..."
	}

	return message
}
