package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielsultan7/audit-anomaly-service/internal/anonymization"
	"github.com/danielsultan7/audit-anomaly-service/internal/api"
	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/detection"
	"github.com/danielsultan7/audit-anomaly-service/internal/llm"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
	"github.com/danielsultan7/audit-anomaly-service/internal/model"
	"github.com/danielsultan7/audit-anomaly-service/internal/notifications"
	"github.com/danielsultan7/audit-anomaly-service/internal/sentiment"
)

const version = "1.0.0"

var configPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "anomalyd",
		Short: "Audit-log anomaly analysis service",
		Long: `anomalyd classifies audit-log text as NORMAL or ANOMALOUS, using either
a rule-augmented LLM classifier or a local sentiment-threshold model.`,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP analysis service",
		RunE:  runServe,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [log text]",
		Short: "Classify a single log line and print the verdict",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
	analyzeCmd.Flags().String("timestamp", "", "ISO-8601 timestamp of the log entry")
	analyzeCmd.Flags().Int64("id", 0, "log id to report in the verdict")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("anomalyd %s\n", version)
		},
	}

	rootCmd.AddCommand(serveCmd, analyzeCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildAnalyzer wires the analyzer variant selected in config. The returned
// cleanup releases model and cache resources; llmManager is nil for the
// sentiment variant.
func buildAnalyzer(cfg *config.Config) (detection.Analyzer, *llm.Manager, func(), error) {
	switch cfg.Analysis.Variant {
	case "sentiment":
		scorer, err := sentiment.NewScorer(cfg.Sentiment)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to load sentiment model: %w", err)
		}
		analyzer := detection.NewSentimentAnalyzer(scorer, cfg.Analysis.Threshold)
		return analyzer, nil, func() { scorer.Close() }, nil

	case "llm":
		manager := llm.NewManager(cfg.LLM)
		redactor := anonymization.NewEngine(cfg.Anonymization.Enabled)
		analyzer := detection.NewPromptAnalyzer(detection.NewRuleset(), manager, redactor)
		return analyzer, manager, func() { manager.Close() }, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown analysis variant %q", cfg.Analysis.Variant)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := logging.Init(cfg.System.LogDir, &cfg.LogRotation, cfg.System.LogLevel, cfg.System.Debug); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.Close()

	analyzer, llmManager, cleanup, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	notifier := notifications.NewManager(cfg.Notifications)
	server := api.NewAPIServer(cfg.Server, analyzer, llmManager, notifier)

	logging.Info("[MAIN] anomalyd %s starting (variant: %s, model: %s)",
		version, cfg.Analysis.Variant, analyzer.ModelName())

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Info("[MAIN] received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Error("[MAIN] shutdown error: %v", err)
		return err
	}

	logging.Info("[MAIN] shutdown complete")
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	analyzer, _, cleanup, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	timestamp, _ := cmd.Flags().GetString("timestamp")
	logID, _ := cmd.Flags().GetInt64("id")

	rec := model.LogRecord{
		LogID:     logID,
		LogText:   args[0],
		Timestamp: timestamp,
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	if !analyzer.Ready() {
		return fmt.Errorf("model not available; check configuration")
	}

	verdict, err := analyzer.Analyze(rec)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(verdict, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
