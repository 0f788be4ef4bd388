package model

import (
	"fmt"
	"unicode/utf8"
)

// MaxLogTextLen is the longest log text accepted for analysis, in characters.
const MaxLogTextLen = 2000

// LogRecord is a single audit-log entry submitted for analysis. It lives for
// the duration of one request and is never stored.
type LogRecord struct {
	LogID     int64  `json:"log_id"`
	LogText   string `json:"log_text"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Validate checks the field bounds of the record.
func (r LogRecord) Validate() error {
	n := utf8.RuneCountInString(r.LogText)
	if n == 0 {
		return fmt.Errorf("log_text must not be empty")
	}
	if n > MaxLogTextLen {
		return fmt.Errorf("log_text exceeds %d characters (got %d)", MaxLogTextLen, n)
	}
	return nil
}

// Verdict is the classification result for one log record.
type Verdict struct {
	LogID        int64   `json:"log_id"`
	AnomalyScore float64 `json:"anomaly_score"`
	IsAnomaly    bool    `json:"is_anomaly"`
	ModelName    string  `json:"model_name"`
}
