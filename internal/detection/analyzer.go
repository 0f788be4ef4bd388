package detection

import (
	"fmt"
	"math"

	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
	"github.com/danielsultan7/audit-anomaly-service/internal/model"
)

// Labels a classifier may emit.
const (
	LabelNormal    = "NORMAL"
	LabelAnomalous = "ANOMALOUS"
)

// Analyzer renders a verdict for a single log record.
type Analyzer interface {
	Analyze(rec model.LogRecord) (model.Verdict, error)
	ModelName() string
	Ready() bool
}

// LogClassifier is the external LLM collaborator consumed by the prompt
// variant. ClassifyLog receives the tagged log text and returns LabelNormal
// or LabelAnomalous (output is already normalized and validated).
type LogClassifier interface {
	ClassifyLog(taggedText string) (string, error)
	PrimaryModel() string
	Ready() bool
}

// Redactor strips sensitive values from text before it leaves the process.
type Redactor interface {
	RedactText(text string) (string, int)
}

// SentimentModel is the local sentiment collaborator consumed by the
// sentiment variant. Score returns "POSITIVE" or "NEGATIVE" with a
// confidence in [0,1].
type SentimentModel interface {
	Score(text string) (label string, confidence float64, err error)
	ModelName() string
}

// PromptAnalyzer is the rule-augmented LLM variant. Stage 1 checks the
// local signature rules; stage 2 hands the tagged, redacted text to the
// classifier.
type PromptAnalyzer struct {
	rules      *Ruleset
	classifier LogClassifier
	redactor   Redactor
}

func NewPromptAnalyzer(rules *Ruleset, classifier LogClassifier, redactor Redactor) *PromptAnalyzer {
	return &PromptAnalyzer{
		rules:      rules,
		classifier: classifier,
		redactor:   redactor,
	}
}

func (pa *PromptAnalyzer) ModelName() string {
	return pa.classifier.PrimaryModel()
}

func (pa *PromptAnalyzer) Ready() bool {
	return pa.classifier != nil && pa.classifier.Ready()
}

func (pa *PromptAnalyzer) Analyze(rec model.LogRecord) (model.Verdict, error) {
	period := PeriodTag(rec.Timestamp)

	// Stage 1: local signature rules, first match wins.
	if rule := pa.rules.Match(period, rec.LogText); rule != nil {
		logging.Debug("[DETECT] log %d matched local rule %s (stage 1)", rec.LogID, rule.Name)
		return model.Verdict{
			LogID:        rec.LogID,
			AnomalyScore: 1.0,
			IsAnomaly:    true,
			ModelName:    pa.ModelName(),
		}, nil
	}

	// Stage 2: constrained LLM classification of the tagged text.
	tagged := TagText(period, rec.LogText)
	if pa.redactor != nil {
		redacted, n := pa.redactor.RedactText(tagged)
		if n > 0 {
			logging.Debug("[DETECT] log %d: redacted %d sensitive values before LLM call", rec.LogID, n)
		}
		tagged = redacted
	}

	label, err := pa.classifier.ClassifyLog(tagged)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("classification failed: %w", err)
	}

	isAnomaly := label == LabelAnomalous
	score := 0.0
	if isAnomaly {
		score = 1.0
	}

	return model.Verdict{
		LogID:        rec.LogID,
		AnomalyScore: score,
		IsAnomaly:    isAnomaly,
		ModelName:    pa.ModelName(),
	}, nil
}

// SentimentAnalyzer is the sentiment-threshold variant. Negative sentiment
// confidence maps directly onto the anomaly axis; positive confidence maps
// onto its complement. This is a heuristic proxy for anomaly detection, not
// signature matching.
type SentimentAnalyzer struct {
	scorer    SentimentModel
	threshold float64
}

func NewSentimentAnalyzer(scorer SentimentModel, threshold float64) *SentimentAnalyzer {
	return &SentimentAnalyzer{scorer: scorer, threshold: threshold}
}

func (sa *SentimentAnalyzer) ModelName() string {
	return sa.scorer.ModelName()
}

func (sa *SentimentAnalyzer) Ready() bool {
	return sa.scorer != nil
}

func (sa *SentimentAnalyzer) Threshold() float64 {
	return sa.threshold
}

func (sa *SentimentAnalyzer) Analyze(rec model.LogRecord) (model.Verdict, error) {
	label, confidence, err := sa.scorer.Score(rec.LogText)
	if err != nil {
		return model.Verdict{}, fmt.Errorf("sentiment scoring failed: %w", err)
	}

	score := confidence
	if label != "NEGATIVE" {
		score = 1 - confidence
	}
	score = round4(score)

	return model.Verdict{
		LogID:        rec.LogID,
		AnomalyScore: score,
		IsAnomaly:    score >= sa.threshold,
		ModelName:    sa.ModelName(),
	}, nil
}

// round4 rounds to 4 decimal places.
func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// AnalyzeBatch applies the single-item policy to each record. Records that
// fail validation or analysis are logged and skipped; the batch itself
// never fails. The returned slice is never nil. onVerdict, if non-nil, is
// called with each successful verdict and the record that produced it, so
// callers can act on a verdict without re-matching it to its input (log ids
// are not required to be unique within a batch).
func AnalyzeBatch(a Analyzer, recs []model.LogRecord, onVerdict func(model.Verdict, model.LogRecord)) []model.Verdict {
	verdicts := make([]model.Verdict, 0, len(recs))

	for _, rec := range recs {
		if err := rec.Validate(); err != nil {
			logging.Error("[BATCH] skipping log %d: %v", rec.LogID, err)
			continue
		}
		verdict, err := a.Analyze(rec)
		if err != nil {
			logging.Error("[BATCH] analysis failed for log %d: %v", rec.LogID, err)
			continue
		}
		verdicts = append(verdicts, verdict)
		if onVerdict != nil {
			onVerdict(verdict, rec)
		}
	}

	logging.Info("[BATCH] analysis complete: %d/%d successful", len(verdicts), len(recs))
	return verdicts
}
