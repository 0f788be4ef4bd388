package notifications

import (
	"fmt"
	"net/smtp"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

type EmailProvider struct {
	config *config.EmailProviderConfig
}

func NewEmailProvider(cfg *config.EmailProviderConfig) *EmailProvider {
	return &EmailProvider{
		config: cfg,
	}
}

func (ep *EmailProvider) Name() string {
	return "email"
}

func (ep *EmailProvider) IsEnabled() bool {
	return ep.config.Enabled && ep.config.SMTPHost != "" && ep.config.ToAddress != ""
}

func (ep *EmailProvider) Send(notification *Notification) error {
	if !ep.IsEnabled() {
		return nil
	}

	subject := fmt.Sprintf("[anomalyd] Anomaly detected in log %d (score %.4f)",
		notification.LogID, notification.AnomalyScore)
	body := ep.buildEmailBody(notification)

	if err := ep.sendEmail(subject, body); err != nil {
		logging.Error("[EMAIL] failed to send email: %v", err)
		return err
	}

	logging.Info("[EMAIL] email sent to %s (log: %d)", ep.config.ToAddress, notification.LogID)
	return nil
}

func (ep *EmailProvider) sendEmail(subject, body string) error {
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s",
		ep.config.FromAddress,
		ep.config.ToAddress,
		subject,
		body,
	)

	auth := smtp.PlainAuth(
		"",
		ep.config.SMTPUsername,
		ep.config.SMTPPassword,
		ep.config.SMTPHost,
	)

	addr := fmt.Sprintf("%s:%d", ep.config.SMTPHost, ep.config.SMTPPort)
	return smtp.SendMail(
		addr,
		auth,
		ep.config.FromAddress,
		[]string{ep.config.ToAddress},
		[]byte(message),
	)
}

func (ep *EmailProvider) buildEmailBody(notification *Notification) string {
	body := fmt.Sprintf(
		"An anomalous audit-log entry was detected.\n\n"+
			"Log ID:        %d\n"+
			"Anomaly score: %.4f\n"+
			"Model:         %s\n",
		notification.LogID,
		notification.AnomalyScore,
		notification.ModelName,
	)

	if notification.RuleName != "" {
		body += fmt.Sprintf("Matched rule:  %s\n", notification.RuleName)
	}
	if notification.Summary != "" {
		body += fmt.Sprintf("Log text:      %s\n", notification.Summary)
	}

	body += fmt.Sprintf("Detected at:   %s\n\nThis is an automated alert. Do not reply to this email.\n",
		notification.Timestamp.Format("2006-01-02 15:04:05 MST"))

	return body
}
