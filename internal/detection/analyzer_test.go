package detection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielsultan7/audit-anomaly-service/internal/model"
)

// stubClassifier records what reaches stage 2 and answers with a fixed label.
type stubClassifier struct {
	label  string
	err    error
	ready  bool
	tagged []string
}

func (c *stubClassifier) ClassifyLog(taggedText string) (string, error) {
	c.tagged = append(c.tagged, taggedText)
	return c.label, c.err
}

func (c *stubClassifier) PrimaryModel() string { return "test-llm" }
func (c *stubClassifier) Ready() bool          { return c.ready }

type stubScorer struct {
	label      string
	confidence float64
	err        error
}

func (s stubScorer) Score(text string) (string, float64, error) {
	return s.label, s.confidence, s.err
}

func (s stubScorer) ModelName() string { return "test-sentiment" }

func TestPromptAnalyzerLocalRules(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		timestamp string
	}{
		{"sql injection any time of day", "ran SELECT secret FROM vault", "2026-01-26T14:00:00Z"},
		{"sql injection at night", "ran SELECT secret FROM vault", "2026-01-26T02:00:00Z"},
		{"nighttime admin without attack markers", "Admin exported all user data", "2026-01-26T00:15:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := &stubClassifier{label: LabelNormal, ready: true}
			pa := NewPromptAnalyzer(NewRuleset(), classifier, nil)

			verdict, err := pa.Analyze(model.LogRecord{LogID: 1, LogText: tt.text, Timestamp: tt.timestamp})
			require.NoError(t, err)
			assert.True(t, verdict.IsAnomaly)
			assert.Equal(t, 1.0, verdict.AnomalyScore)
			assert.Empty(t, classifier.tagged, "stage 1 match must short-circuit the LLM call")
		})
	}
}

func TestPromptAnalyzerDaytimeAdminReachesLLM(t *testing.T) {
	classifier := &stubClassifier{label: LabelNormal, ready: true}
	pa := NewPromptAnalyzer(NewRuleset(), classifier, nil)

	verdict, err := pa.Analyze(model.LogRecord{
		LogID:     2,
		LogText:   "Admin exported all user data",
		Timestamp: "2026-01-26T17:00:00Z",
	})
	require.NoError(t, err)
	assert.False(t, verdict.IsAnomaly)
	assert.Zero(t, verdict.AnomalyScore)

	require.Len(t, classifier.tagged, 1)
	assert.Equal(t, "[daytime] Admin exported all user data", classifier.tagged[0])
}

func TestPromptAnalyzerMissingTimestampIsDaytime(t *testing.T) {
	classifier := &stubClassifier{label: LabelNormal, ready: true}
	pa := NewPromptAnalyzer(NewRuleset(), classifier, nil)

	_, err := pa.Analyze(model.LogRecord{LogID: 3, LogText: "Admin exported all user data"})
	require.NoError(t, err)

	require.Len(t, classifier.tagged, 1)
	assert.Equal(t, "[daytime] Admin exported all user data", classifier.tagged[0])
}

func TestPromptAnalyzerLLMVerdict(t *testing.T) {
	classifier := &stubClassifier{label: LabelAnomalous, ready: true}
	pa := NewPromptAnalyzer(NewRuleset(), classifier, nil)

	verdict, err := pa.Analyze(model.LogRecord{
		LogID:     4,
		LogText:   "unusual data transfer to external host",
		Timestamp: "2026-01-26T12:00:00Z",
	})
	require.NoError(t, err)
	assert.True(t, verdict.IsAnomaly)
	assert.Equal(t, 1.0, verdict.AnomalyScore)
	assert.Equal(t, "test-llm", verdict.ModelName)
}

func TestPromptAnalyzerClassifierError(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("provider down"), ready: true}
	pa := NewPromptAnalyzer(NewRuleset(), classifier, nil)

	_, err := pa.Analyze(model.LogRecord{LogID: 5, LogText: "routine event"})
	assert.Error(t, err)
}

type countingRedactor struct{ calls int }

func (r *countingRedactor) RedactText(text string) (string, int) {
	r.calls++
	return "[REDACTED]", 1
}

func TestPromptAnalyzerRedactsBeforeLLM(t *testing.T) {
	classifier := &stubClassifier{label: LabelNormal, ready: true}
	redactor := &countingRedactor{}
	pa := NewPromptAnalyzer(NewRuleset(), classifier, redactor)

	_, err := pa.Analyze(model.LogRecord{LogID: 6, LogText: "routine event"})
	require.NoError(t, err)

	assert.Equal(t, 1, redactor.calls)
	require.Len(t, classifier.tagged, 1)
	assert.Equal(t, "[REDACTED]", classifier.tagged[0])
}

func TestSentimentAnalyzerScoring(t *testing.T) {
	tests := []struct {
		name        string
		label       string
		confidence  float64
		wantScore   float64
		wantAnomaly bool
	}{
		{"strong negative", "NEGATIVE", 0.98, 0.98, true},
		{"negative at threshold", "NEGATIVE", 0.7, 0.7, true},
		{"negative below threshold", "NEGATIVE", 0.69, 0.69, false},
		{"strong positive", "POSITIVE", 0.95, 0.05, false},
		{"weak positive crosses threshold", "POSITIVE", 0.2, 0.8, true},
		{"rounding to four places", "NEGATIVE", 0.123456, 0.1235, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sa := NewSentimentAnalyzer(stubScorer{label: tt.label, confidence: tt.confidence}, 0.7)

			verdict, err := sa.Analyze(model.LogRecord{LogID: 1, LogText: "some event"})
			require.NoError(t, err)
			assert.InDelta(t, tt.wantScore, verdict.AnomalyScore, 1e-9)
			assert.Equal(t, tt.wantAnomaly, verdict.IsAnomaly)
			assert.Equal(t, "test-sentiment", verdict.ModelName)
		})
	}
}

func TestSentimentAnalyzerScorerError(t *testing.T) {
	sa := NewSentimentAnalyzer(stubScorer{err: errors.New("session closed")}, 0.7)

	_, err := sa.Analyze(model.LogRecord{LogID: 1, LogText: "some event"})
	assert.Error(t, err)
}

// failingAnalyzer errors on a specific log id.
type failingAnalyzer struct {
	failID int64
}

func (a failingAnalyzer) ModelName() string { return "batch-stub" }
func (a failingAnalyzer) Ready() bool       { return true }

func (a failingAnalyzer) Analyze(rec model.LogRecord) (model.Verdict, error) {
	if rec.LogID == a.failID {
		return model.Verdict{}, errors.New("forced failure")
	}
	return model.Verdict{LogID: rec.LogID, ModelName: a.ModelName()}, nil
}

func TestAnalyzeBatchSkipsFailures(t *testing.T) {
	recs := []model.LogRecord{
		{LogID: 1, LogText: "ok"},
		{LogID: 2, LogText: "ok"},
		{LogID: 3, LogText: "ok"},
	}

	verdicts := AnalyzeBatch(failingAnalyzer{failID: 2}, recs, nil)
	require.Len(t, verdicts, 2)
	assert.Equal(t, int64(1), verdicts[0].LogID)
	assert.Equal(t, int64(3), verdicts[1].LogID)
}

func TestAnalyzeBatchSkipsInvalidRecords(t *testing.T) {
	recs := []model.LogRecord{
		{LogID: 1, LogText: "ok"},
		{LogID: 2, LogText: ""}, // fails validation
	}

	verdicts := AnalyzeBatch(failingAnalyzer{failID: -1}, recs, nil)
	require.Len(t, verdicts, 1)
	assert.Equal(t, int64(1), verdicts[0].LogID)
}

func TestAnalyzeBatchEmptyNeverNil(t *testing.T) {
	verdicts := AnalyzeBatch(failingAnalyzer{}, nil, nil)
	assert.NotNil(t, verdicts)
	assert.Empty(t, verdicts)
}

func TestAnalyzeBatchCallbackPairsVerdictWithRecord(t *testing.T) {
	// Duplicate log ids in one batch: each callback must carry the text of
	// the record that produced the verdict, not another record with the
	// same id.
	recs := []model.LogRecord{
		{LogID: 9, LogText: "first event"},
		{LogID: 9, LogText: "second event"},
		{LogID: 10, LogText: ""}, // skipped, no callback
	}

	var texts []string
	verdicts := AnalyzeBatch(failingAnalyzer{failID: -1}, recs, func(v model.Verdict, rec model.LogRecord) {
		assert.Equal(t, v.LogID, rec.LogID)
		texts = append(texts, rec.LogText)
	})

	require.Len(t, verdicts, 2)
	assert.Equal(t, []string{"first event", "second event"}, texts)
}
