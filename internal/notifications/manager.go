package notifications

import (
	"sync"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

// Manager fans one notification out to all enabled providers in parallel.
// Provider failures are logged, never propagated: alert delivery must not
// affect request handling.
type Manager struct {
	providers []NotificationProvider
	config    config.NotificationsConfig
	mu        sync.RWMutex
}

func NewManager(cfg config.NotificationsConfig) *Manager {
	manager := &Manager{
		providers: []NotificationProvider{},
		config:    cfg,
	}

	if cfg.Webhooks.Enabled {
		manager.providers = append(manager.providers, NewWebhookProvider(&cfg.Webhooks))
		logging.Info("[NOTIFICATIONS] webhook provider initialized (%d endpoints)", len(cfg.Webhooks.Endpoints))
	}

	if cfg.Email.Enabled {
		manager.providers = append(manager.providers, NewEmailProvider(&cfg.Email))
		logging.Info("[NOTIFICATIONS] email provider initialized")
	}

	if cfg.Twilio.Enabled {
		manager.providers = append(manager.providers, NewTwilioProvider(&cfg.Twilio))
		logging.Info("[NOTIFICATIONS] twilio provider initialized")
	}

	if cfg.Slack.Enabled {
		manager.providers = append(manager.providers, NewSlackProvider(&cfg.Slack))
		logging.Info("[NOTIFICATIONS] slack provider initialized")
	}

	if len(manager.providers) == 0 {
		logging.Info("[NOTIFICATIONS] no notification providers enabled")
	}

	return manager
}

// Send delivers the notification if its score clears the configured
// minimum. Always returns nil; per-provider errors are only logged.
func (m *Manager) Send(notification *Notification) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.providers) == 0 {
		return nil
	}

	if notification.AnomalyScore < m.config.MinScore {
		logging.Debug("[NOTIFICATIONS] skipped log %d: score %.4f below minimum %.2f",
			notification.LogID, notification.AnomalyScore, m.config.MinScore)
		return nil
	}

	logging.Info("[NOTIFICATIONS] sending alert for log %d (score: %.4f, model: %s)",
		notification.LogID, notification.AnomalyScore, notification.ModelName)

	var wg sync.WaitGroup
	failed := 0
	var failedMu sync.Mutex

	for _, provider := range m.providers {
		if !provider.IsEnabled() {
			continue
		}

		wg.Add(1)
		go func(p NotificationProvider) {
			defer wg.Done()
			if err := p.Send(notification); err != nil {
				logging.Error("[NOTIFICATIONS] error from %s provider: %v", p.Name(), err)
				failedMu.Lock()
				failed++
				failedMu.Unlock()
			}
		}(provider)
	}

	wg.Wait()

	if failed > 0 {
		logging.Error("[NOTIFICATIONS] %d provider(s) failed", failed)
	}

	return nil
}

// GetProviderStatus returns the enabled state of each configured provider.
func (m *Manager) GetProviderStatus() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	status := make(map[string]bool)
	for _, provider := range m.providers {
		status[provider.Name()] = provider.IsEnabled()
	}
	return status
}
