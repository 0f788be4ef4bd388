package sentiment

import (
	"math"
	"sync"

	"github.com/danielsultan7/audit-anomaly-service/internal/config"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
)

// SST-2 label order: index 0 is negative, index 1 is positive.
const (
	LabelNegative = "NEGATIVE"
	LabelPositive = "POSITIVE"
)

// Scorer classifies text sentiment with a local ONNX model. Inference calls
// are serialized with a mutex; a single session keeps memory bounded and
// the model is fast enough that queueing beats duplicating it.
type Scorer struct {
	tokenizer *tokenizer
	session   *onnxSession
	modelName string
	mu        sync.Mutex
}

func NewScorer(cfg config.SentimentConfig) (*Scorer, error) {
	tok, err := newTokenizer(cfg.VocabPath)
	if err != nil {
		return nil, err
	}

	session, err := newONNXSession(cfg.ModelPath, cfg.LibraryPath)
	if err != nil {
		return nil, err
	}

	logging.Info("[SENTIMENT] model loaded: %s (%s)", cfg.ModelName, cfg.ModelPath)
	return &Scorer{
		tokenizer: tok,
		session:   session,
		modelName: cfg.ModelName,
	}, nil
}

func (s *Scorer) ModelName() string {
	return s.modelName
}

// Score classifies the text and returns the winning label with its softmax
// confidence.
func (s *Scorer) Score(text string) (string, float64, error) {
	ids, mask := s.tokenizer.tokenize(text)

	s.mu.Lock()
	logits, err := s.session.infer(ids, mask)
	s.mu.Unlock()
	if err != nil {
		return "", 0, err
	}

	probs := softmax(logits)
	if probs[1] >= probs[0] {
		return LabelPositive, probs[1], nil
	}
	return LabelNegative, probs[0], nil
}

// Close releases the ONNX session.
func (s *Scorer) Close() error {
	return s.session.close()
}

// softmax converts logits to probabilities, subtracting the max logit for
// numerical stability.
func softmax(logits []float32) []float64 {
	max := float64(logits[0])
	for _, l := range logits[1:] {
		if float64(l) > max {
			max = float64(l)
		}
	}

	probs := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		probs[i] = math.Exp(float64(l) - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
