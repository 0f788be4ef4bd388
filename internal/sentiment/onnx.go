package sentiment

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// onnxSession wraps a DynamicAdvancedSession for a BERT-style sequence
// classification model with a [batch, numLabels] logits output. DistilBERT
// exports omit token_type_ids, so that input is fed only when the model
// declares it.
type onnxSession struct {
	session     *ort.DynamicAdvancedSession
	inputNames  []string
	outputName  string
	numLabels   int64
	wantTypeIDs bool
}

func newONNXSession(modelPath, libPath string) (*onnxSession, error) {
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}

	inputNames, wantTypeIDs, err := validateInputs(inputs)
	if err != nil {
		return nil, err
	}

	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}
	outputName := outputs[0].Name
	dims := outputs[0].Dimensions
	if len(dims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D logits output, got %v", dims)
	}
	numLabels := dims[1]
	if numLabels != 2 {
		return nil, fmt.Errorf("onnx: expected 2 sentiment labels, model has %d", numLabels)
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		[]string{outputName},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &onnxSession{
		session:     session,
		inputNames:  inputNames,
		outputName:  outputName,
		numLabels:   numLabels,
		wantTypeIDs: wantTypeIDs,
	}, nil
}

// validateInputs checks for input_ids and attention_mask and reports
// whether the model also declares token_type_ids.
func validateInputs(inputs []ort.InputOutputInfo) ([]string, bool, error) {
	nameSet := make(map[string]bool, len(inputs))
	for _, inp := range inputs {
		nameSet[inp.Name] = true
	}
	required := []string{"input_ids", "attention_mask"}
	for _, name := range required {
		if !nameSet[name] {
			return nil, false, fmt.Errorf("onnx: model missing required input %q", name)
		}
	}
	if nameSet["token_type_ids"] {
		return append(required, "token_type_ids"), true, nil
	}
	return required, false, nil
}

// infer runs one classification call for a single sequence and returns the
// raw logits, one float per label.
func (s *onnxSession) infer(inputIDs, attentionMask []int64) ([]float32, error) {
	shape := ort.NewShape(1, int64(len(inputIDs)))

	tIDs, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input_ids tensor: %w", err)
	}
	defer tIDs.Destroy()

	tMask, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create attention_mask tensor: %w", err)
	}
	defer tMask.Destroy()

	inputs := []ort.Value{tIDs, tMask}
	if s.wantTypeIDs {
		tTypes, err := ort.NewTensor(shape, make([]int64, len(inputIDs)))
		if err != nil {
			return nil, fmt.Errorf("onnx: failed to create token_type_ids tensor: %w", err)
		}
		defer tTypes.Destroy()
		inputs = append(inputs, tTypes)
	}

	outShape := ort.NewShape(1, s.numLabels)
	tOut, err := ort.NewEmptyTensor[float32](outShape)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := s.session.Run(inputs, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}

	src := tOut.GetData()
	logits := make([]float32, len(src))
	copy(logits, src)
	return logits, nil
}

func (s *onnxSession) close() error {
	return s.session.Destroy()
}
