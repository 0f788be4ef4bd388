package llm

import (
	"fmt"
	"strings"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

// Manager owns the configured providers, the classification cache, and the
// output normalization that turns raw model text into a trusted label.
type Manager struct {
	providers map[string]Provider
	primary   string
	cache     *ClassificationCache
}

func NewManager(cfg config.LLMConfig) *Manager {
	m := &Manager{
		providers: make(map[string]Provider),
		primary:   cfg.Primary,
		cache:     NewClassificationCache(cfg.CacheTTLSeconds),
	}

	m.providers["claude"] = NewClaudeProvider(cfg.Claude.APIKey, cfg.Claude.Model)
	m.providers["gemini"] = NewGeminiProvider(cfg.Gemini.APIKey, cfg.Gemini.Model)

	if p, ok := m.providers[m.primary]; ok && p.Configured() {
		logging.Info("[LLM] primary provider: %s (model: %s)", p.GetName(), p.ModelID())
	} else {
		logging.Error("[LLM] primary provider %q is not configured", m.primary)
	}

	return m
}

func (m *Manager) primaryProvider() Provider {
	return m.providers[m.primary]
}

// fallbackProvider returns a configured provider other than the primary.
func (m *Manager) fallbackProvider() Provider {
	for name, p := range m.providers {
		if name != m.primary && p.Configured() {
			return p
		}
	}
	return nil
}

// PrimaryModel returns the model identifier of the primary provider.
func (m *Manager) PrimaryModel() string {
	if p := m.primaryProvider(); p != nil {
		return p.ModelID()
	}
	return ""
}

// Ready reports whether any configured provider can serve requests.
func (m *Manager) Ready() bool {
	if p := m.primaryProvider(); p != nil && p.Configured() {
		return true
	}
	return m.fallbackProvider() != nil
}

// ClassifyLog classifies one tagged log line. Provider errors propagate to
// the caller; malformed model output does not. Any output that is not
// NORMAL or ANOMALOUS after normalization falls back to NORMAL with a
// warning, since an unparseable answer is not evidence of an attack.
func (m *Manager) ClassifyLog(taggedText string) (string, error) {
	if label, ok := m.cache.Get(taggedText); ok {
		return label, nil
	}

	p := m.primaryProvider()
	if p == nil || !p.Configured() {
		if p = m.fallbackProvider(); p == nil {
			return "", fmt.Errorf("no configured provider (primary: %s)", m.primary)
		}
		logging.Debug("[LLM] primary %q unavailable, using %s", m.primary, p.GetName())
	}

	raw, err := p.ClassifyLog(taggedText)
	if err != nil {
		fb := m.fallbackProvider()
		if fb == nil || fb == p {
			return "", err
		}
		logging.Error("[LLM] %s failed (%v), retrying with %s", p.GetName(), err, fb.GetName())
		raw, err = fb.ClassifyLog(taggedText)
		if err != nil {
			return "", err
		}
	}

	label := normalizeLabel(raw)
	if label != "NORMAL" && label != "ANOMALOUS" {
		logging.Error("[LLM] unexpected model output %q, falling back to NORMAL", raw)
		label = "NORMAL"
	}

	m.cache.Set(taggedText, label)
	return label, nil
}

// normalizeLabel trims whitespace, uppercases, and strips one trailing
// period so "anomalous." still counts as a valid answer.
func normalizeLabel(raw string) string {
	label := strings.ToUpper(strings.TrimSpace(raw))
	label = strings.TrimSuffix(label, ".")
	return label
}

// CacheStats exposes the classification cache counters.
func (m *Manager) CacheStats() map[string]interface{} {
	return m.cache.Stats()
}

// ClearCache drops all cached classifications and returns the count.
func (m *Manager) ClearCache() int {
	return m.cache.Clear()
}

// Close stops the cache sweeper.
func (m *Manager) Close() {
	m.cache.Close()
}
