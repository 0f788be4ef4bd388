package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax(t *testing.T) {
	tests := []struct {
		name   string
		logits []float32
		want   []float64
	}{
		{"equal logits", []float32{0, 0}, []float64{0.5, 0.5}},
		{"shift invariance", []float32{1000, 1000}, []float64{0.5, 0.5}},
		{"strong negative", []float32{8, -8}, []float64{0.9999998874648253, 1.1253516207009508e-07}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := softmax(tt.logits)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-9)
			}
		})
	}
}

func TestSoftmaxSumsToOne(t *testing.T) {
	probs := softmax([]float32{-3.2, 4.7})
	assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-12)
	assert.Greater(t, probs[1], probs[0])
}
