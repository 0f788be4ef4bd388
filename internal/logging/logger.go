package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/natefinch/lumberjack/v3"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
	LogLevelAnomaly
)

type Logger struct {
	roller *lumberjack.Roller
	logger *log.Logger
	level  LogLevel
}

var defaultLogger *Logger

// Init sets up the default logger: stdout plus a size-rotated, compressed
// log file under logDir.
func Init(logDir string, rotation *config.LogRotationConfig, logLevel string, debug bool) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logPath := filepath.Join(logDir, "anomalyd.log")
	maxSize := int64(rotation.MaxSizeMB) * 1024 * 1024

	roller, err := lumberjack.NewRoller(logPath, maxSize, &lumberjack.Options{
		MaxBackups: rotation.MaxBackups,
		MaxAge:     time.Duration(rotation.MaxAgeDays) * 24 * time.Hour,
		Compress:   rotation.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to create log roller: %w", err)
	}

	multiWriter := io.MultiWriter(roller, os.Stdout)

	defaultLogger = &Logger{
		roller: roller,
		logger: log.New(multiWriter, "", log.LstdFlags),
		level:  parseLogLevel(logLevel, debug),
	}

	// Redirect Go's standard log package to the same writer
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags)

	fmt.Printf("[LOGGING] Initialized - LogDir: %s, MaxSize: %d MB, Level: %s\n",
		logDir, rotation.MaxSizeMB, logLevel)
	return nil
}

func parseLogLevel(level string, debug bool) LogLevel {
	if debug {
		return LogLevelDebug
	}

	switch strings.ToLower(level) {
	case "debug":
		return LogLevelDebug
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l *Logger) writeLog(level LogLevel, levelStr, msg string) {
	if level < l.level {
		return
	}
	l.logger.Printf("[%s] %s", levelStr, msg)
}

func Info(msg string, args ...interface{}) {
	text := fmt.Sprintf(msg, args...)
	if defaultLogger != nil {
		defaultLogger.writeLog(LogLevelInfo, "INFO", text)
	} else {
		fmt.Printf("[INFO] %s\n", text)
	}
}

func Error(msg string, args ...interface{}) {
	text := fmt.Sprintf(msg, args...)
	if defaultLogger != nil {
		defaultLogger.writeLog(LogLevelError, "ERROR", text)
	} else {
		fmt.Printf("[ERROR] %s\n", text)
	}
}

func Debug(msg string, args ...interface{}) {
	text := fmt.Sprintf(msg, args...)
	if defaultLogger != nil {
		defaultLogger.writeLog(LogLevelDebug, "DEBUG", text)
	} else {
		fmt.Printf("[DEBUG] %s\n", text)
	}
}

// Anomaly records a detected anomaly in the audit trail.
func Anomaly(logID int64, score float64, modelName, stage string) {
	text := fmt.Sprintf("ANOMALY | log_id=%d | score=%.4f | model=%s | %s", logID, score, modelName, stage)
	if defaultLogger != nil {
		defaultLogger.writeLog(LogLevelAnomaly, "ANOMALY", text)
	} else {
		fmt.Printf("[ANOMALY] %s\n", text)
	}
}

func Close() {
	if defaultLogger != nil && defaultLogger.roller != nil {
		defaultLogger.roller.Close()
	}
}
