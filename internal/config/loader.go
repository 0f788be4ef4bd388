package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// === SERVER ===

type ServerConfig struct {
	ListenAddr string    `json:"listen_addr"`
	TLS        TLSConfig `json:"tls"`
}

type TLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file"`
	KeyFile  string `json:"key_file"`
}

// === ANALYSIS ===

type AnalysisConfig struct {
	Variant   string  `json:"variant"`   // "llm" or "sentiment"
	Threshold float64 `json:"threshold"` // sentiment variant only
}

// === LLM PROVIDERS ===

type LLMConfig struct {
	Primary         string         `json:"primary"`
	Claude          ProviderConfig `json:"claude"`
	Gemini          ProviderConfig `json:"gemini"`
	CacheTTLSeconds int            `json:"cache_ttl_seconds"`
}

type ProviderConfig struct {
	APIKey string `json:"api_key"`
	Model  string `json:"model"`
}

// === SENTIMENT MODEL ===

type SentimentConfig struct {
	ModelPath   string `json:"model_path"`
	VocabPath   string `json:"vocab_path"`
	LibraryPath string `json:"library_path"`
	ModelName   string `json:"model_name"`
}

// === ANONYMIZATION ===

type AnonymizationConfig struct {
	Enabled bool `json:"enabled"`
}

// === NOTIFICATIONS ===

type NotificationsConfig struct {
	MinScore float64              `json:"min_score"`
	Webhooks WebhooksConfig       `json:"webhooks"`
	Slack    SlackProviderConfig  `json:"slack"`
	Email    EmailProviderConfig  `json:"email"`
	Twilio   TwilioProviderConfig `json:"twilio"`
}

type WebhooksConfig struct {
	Enabled           bool              `json:"enabled"`
	Endpoints         []WebhookEndpoint `json:"endpoints"`
	TimeoutSeconds    int               `json:"timeout_seconds"`
	RetryCount        int               `json:"retry_count"`
	RetryDelaySeconds int               `json:"retry_delay_seconds"`
}

type WebhookEndpoint struct {
	URL       string `json:"url"`
	AuthType  string `json:"auth_type"` // "bearer", "apikey", "basic" or ""
	AuthValue string `json:"auth_value"`
}

type SlackProviderConfig struct {
	Enabled    bool   `json:"enabled"`
	WebhookURL string `json:"webhook_url"`
}

type EmailProviderConfig struct {
	Enabled      bool   `json:"enabled"`
	SMTPHost     string `json:"smtp_host"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPUsername string `json:"smtp_username"`
	SMTPPassword string `json:"smtp_password"`
	FromAddress  string `json:"from_address"`
	ToAddress    string `json:"to_address"`
}

type TwilioProviderConfig struct {
	Enabled    bool   `json:"enabled"`
	AccountSID string `json:"account_sid"`
	AuthToken  string `json:"auth_token"`
	FromNumber string `json:"from_number"`
	ToNumber   string `json:"to_number"`
}

// === SYSTEM ===

type SystemConfig struct {
	LogDir   string `json:"log_dir"`
	LogLevel string `json:"log_level"`
	Debug    bool   `json:"debug"`
}

type LogRotationConfig struct {
	MaxSizeMB  int  `json:"max_size_mb"`
	MaxBackups int  `json:"max_backups"`
	MaxAgeDays int  `json:"max_age_days"`
	Compress   bool `json:"compress"`
}

// === MAIN CONFIG STRUCTURE ===

type Config struct {
	Server        ServerConfig        `json:"server"`
	Analysis      AnalysisConfig      `json:"analysis"`
	LLM           LLMConfig           `json:"llm"`
	Sentiment     SentimentConfig     `json:"sentiment"`
	Anonymization AnonymizationConfig `json:"anonymization"`
	Notifications NotificationsConfig `json:"notifications"`
	System        SystemConfig        `json:"system"`
	LogRotation   LogRotationConfig   `json:"log_rotation"`
}

// === LOADER FUNCTIONS ===

func Load(configPath string) (*Config, error) {
	var data []byte
	var err error

	if configPath != "" {
		data, err = os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		// Try common locations
		locations := []string{
			"./config/default.json",
			"/etc/anomalyd/config.json",
			os.Getenv("ANOMALYD_CONFIG"),
		}

		for _, loc := range locations {
			if loc == "" {
				continue
			}
			if d, err := os.ReadFile(loc); err == nil {
				data = d
				fmt.Printf("Loaded config from: %s\n", loc)
				break
			}
		}
	}

	// If no config found, use defaults
	if data == nil {
		fmt.Println("No config file found, using defaults")
		return getDefaults(), nil
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	applyDefaults(&config)
	expandEnvVars(&config)

	return &config, nil
}

// expandEnvVars replaces ${VAR_NAME} with environment variables
func expandEnvVars(cfg *Config) {
	cfg.LLM.Claude.APIKey = os.ExpandEnv(cfg.LLM.Claude.APIKey)
	cfg.LLM.Gemini.APIKey = os.ExpandEnv(cfg.LLM.Gemini.APIKey)
	cfg.Notifications.Slack.WebhookURL = os.ExpandEnv(cfg.Notifications.Slack.WebhookURL)
	cfg.Notifications.Email.SMTPPassword = os.ExpandEnv(cfg.Notifications.Email.SMTPPassword)
	cfg.Notifications.Twilio.AuthToken = os.ExpandEnv(cfg.Notifications.Twilio.AuthToken)
	for i := range cfg.Notifications.Webhooks.Endpoints {
		cfg.Notifications.Webhooks.Endpoints[i].AuthValue = os.ExpandEnv(cfg.Notifications.Webhooks.Endpoints[i].AuthValue)
	}
}

func getDefaults() *Config {
	cfg := &Config{
		Server: ServerConfig{
			ListenAddr: ":5000",
			TLS: TLSConfig{
				Enabled:  false,
				CertFile: "./certs/server.crt",
				KeyFile:  "./certs/server.key",
			},
		},
		Analysis: AnalysisConfig{
			Variant:   "llm",
			Threshold: 0.7,
		},
		LLM: LLMConfig{
			Primary: "claude",
			Claude: ProviderConfig{
				APIKey: "${CLAUDE_API_KEY}",
				Model:  "claude-3-5-haiku-20241022",
			},
			Gemini: ProviderConfig{
				APIKey: "${GEMINI_API_KEY}",
				Model:  "gemini-2.0-flash",
			},
			CacheTTLSeconds: 3600,
		},
		Sentiment: SentimentConfig{
			ModelPath:   "./models/model.onnx",
			VocabPath:   "./models/vocab.txt",
			LibraryPath: "./models/libonnxruntime.so",
			ModelName:   "distilbert-base-uncased-finetuned-sst-2-english",
		},
		Anonymization: AnonymizationConfig{
			Enabled: true,
		},
		Notifications: NotificationsConfig{
			MinScore: 0.7,
			Webhooks: WebhooksConfig{
				TimeoutSeconds:    10,
				RetryCount:        3,
				RetryDelaySeconds: 2,
			},
		},
		System: SystemConfig{
			LogDir:   "./logs",
			LogLevel: "info",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}

	applyDefaults(cfg)
	expandEnvVars(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":5000"
	}

	// Analysis defaults
	if cfg.Analysis.Variant == "" {
		cfg.Analysis.Variant = "llm"
	}
	if cfg.Analysis.Threshold == 0 {
		cfg.Analysis.Threshold = 0.7
	}

	// LLM defaults
	if cfg.LLM.Primary == "" {
		cfg.LLM.Primary = "claude"
	}
	if cfg.LLM.Claude.Model == "" {
		cfg.LLM.Claude.Model = "claude-3-5-haiku-20241022"
	}
	if cfg.LLM.Gemini.Model == "" {
		cfg.LLM.Gemini.Model = "gemini-2.0-flash"
	}
	if cfg.LLM.CacheTTLSeconds == 0 {
		cfg.LLM.CacheTTLSeconds = 3600
	}

	// Sentiment defaults
	if cfg.Sentiment.ModelPath == "" {
		cfg.Sentiment.ModelPath = "./models/model.onnx"
	}
	if cfg.Sentiment.VocabPath == "" {
		cfg.Sentiment.VocabPath = "./models/vocab.txt"
	}
	if cfg.Sentiment.LibraryPath == "" {
		cfg.Sentiment.LibraryPath = "./models/libonnxruntime.so"
	}
	if cfg.Sentiment.ModelName == "" {
		cfg.Sentiment.ModelName = "distilbert-base-uncased-finetuned-sst-2-english"
	}

	// Notification defaults
	if cfg.Notifications.MinScore == 0 {
		cfg.Notifications.MinScore = 0.7
	}
	if cfg.Notifications.Webhooks.TimeoutSeconds == 0 {
		cfg.Notifications.Webhooks.TimeoutSeconds = 10
	}
	if cfg.Notifications.Webhooks.RetryCount == 0 {
		cfg.Notifications.Webhooks.RetryCount = 3
	}
	if cfg.Notifications.Webhooks.RetryDelaySeconds == 0 {
		cfg.Notifications.Webhooks.RetryDelaySeconds = 2
	}
	if cfg.Notifications.Email.SMTPPort == 0 {
		cfg.Notifications.Email.SMTPPort = 587
	}

	// System defaults
	if cfg.System.LogDir == "" {
		cfg.System.LogDir = "./logs"
	}
	if cfg.System.LogLevel == "" {
		cfg.System.LogLevel = "info"
	}

	// Log rotation defaults
	if cfg.LogRotation.MaxSizeMB == 0 {
		cfg.LogRotation.MaxSizeMB = 50
	}
	if cfg.LogRotation.MaxBackups == 0 {
		cfg.LogRotation.MaxBackups = 5
	}
	if cfg.LogRotation.MaxAgeDays == 0 {
		cfg.LogRotation.MaxAgeDays = 30
	}

	// Create directories
	os.MkdirAll(cfg.System.LogDir, 0755)
	os.MkdirAll(filepath.Dir(cfg.Sentiment.ModelPath), 0755)
}
