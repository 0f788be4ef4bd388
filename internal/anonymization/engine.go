package anonymization

import (
	"regexp"

	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

// Engine redacts credential material from log text before it is sent to an
// external model. Redaction is best-effort pattern matching; it is not a
// substitute for not logging secrets in the first place.
type Engine struct {
	enabled  bool
	patterns []*redactionPattern
}

type redactionPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

func NewEngine(enabled bool) *Engine {
	e := &Engine{enabled: enabled}
	e.initPatterns()
	if enabled {
		logging.Info("[ANON] redaction enabled (%d patterns)", len(e.patterns))
	}
	return e
}

func (e *Engine) initPatterns() {
	e.patterns = []*redactionPattern{
		{
			name:        "bearer_token",
			regex:       regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9_\-.]+`),
			replacement: "Bearer [REDACTED_TOKEN]",
		},
		{
			name:        "jwt",
			regex:       regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`),
			replacement: "[REDACTED_JWT]",
		},
		{
			name:        "api_key",
			regex:       regexp.MustCompile(`(?i)(api[_-]?key|secret|token|password)\s*[=:]\s*[^\s,;]+`),
			replacement: "$1=[REDACTED]",
		},
		{
			name:        "email",
			regex:       regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
			replacement: "[REDACTED_EMAIL]",
		},
		{
			name:        "ipv4",
			regex:       regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			replacement: "[REDACTED_IP]",
		},
	}
}

// RedactText replaces sensitive values in text and returns the redacted
// text plus the number of replacements made. When redaction is disabled
// the input passes through untouched.
func (e *Engine) RedactText(text string) (string, int) {
	if !e.enabled {
		return text, 0
	}

	total := 0
	for _, p := range e.patterns {
		matches := p.regex.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		text = p.regex.ReplaceAllString(text, p.replacement)
		total += len(matches)
	}

	return text, total
}
