package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"analysis": {"variant": "sentiment"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sentiment", cfg.Analysis.Variant)
	assert.Equal(t, 0.7, cfg.Analysis.Threshold)
	assert.Equal(t, ":5000", cfg.Server.ListenAddr)
	assert.Equal(t, "claude", cfg.LLM.Primary)
	assert.Equal(t, 3600, cfg.LLM.CacheTTLSeconds)
	assert.Equal(t, "distilbert-base-uncased-finetuned-sst-2-english", cfg.Sentiment.ModelName)
	assert.Equal(t, 50, cfg.LogRotation.MaxSizeMB)
	assert.Equal(t, 587, cfg.Notifications.Email.SMTPPort)
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `{
		"server": {"listen_addr": ":8080"},
		"analysis": {"variant": "llm", "threshold": 0.9},
		"llm": {"primary": "gemini", "cache_ttl_seconds": 120}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.Equal(t, 0.9, cfg.Analysis.Threshold)
	assert.Equal(t, "gemini", cfg.LLM.Primary)
	assert.Equal(t, 120, cfg.LLM.CacheTTLSeconds)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("CLAUDE_API_KEY", "sk-test-123")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.example/T1/B2")

	path := writeConfig(t, `{
		"llm": {"claude": {"api_key": "${CLAUDE_API_KEY}"}},
		"notifications": {"slack": {"enabled": true, "webhook_url": "${SLACK_WEBHOOK_URL}"}}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.LLM.Claude.APIKey)
	assert.Equal(t, "https://hooks.slack.example/T1/B2", cfg.Notifications.Slack.WebhookURL)
}

func TestLoadUnsetEnvVarStaysPlaceholderFree(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	path := writeConfig(t, `{"llm": {"gemini": {"api_key": "${GEMINI_API_KEY}"}}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.Gemini.APIKey)
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeConfig(t, `{"server": `)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
