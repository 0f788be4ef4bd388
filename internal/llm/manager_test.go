package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	output     string
	err        error
	calls      int
	configured bool
}

func (s *stubProvider) ClassifyLog(taggedText string) (string, error) {
	s.calls++
	return s.output, s.err
}

func (s *stubProvider) GetName() string  { return "stub" }
func (s *stubProvider) ModelID() string  { return "stub-model-v1" }
func (s *stubProvider) Configured() bool { return s.configured }

func newStubManager(p Provider) *Manager {
	return &Manager{
		providers: map[string]Provider{"stub": p},
		primary:   "stub",
		cache:     NewClassificationCache(60),
	}
}

func TestClassifyLogNormalization(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"clean anomalous", "ANOMALOUS", "ANOMALOUS"},
		{"clean normal", "NORMAL", "NORMAL"},
		{"lowercase", "anomalous", "ANOMALOUS"},
		{"surrounding whitespace", "  NORMAL\n", "NORMAL"},
		{"trailing period", "Anomalous.", "ANOMALOUS"},
		{"unexpected output falls back to normal", "I think this looks suspicious", "NORMAL"},
		{"empty output falls back to normal", "", "NORMAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newStubManager(&stubProvider{output: tt.output, configured: true})
			defer m.Close()

			label, err := m.ClassifyLog("[daytime] some log line " + tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, label)
		})
	}
}

func TestClassifyLogProviderError(t *testing.T) {
	m := newStubManager(&stubProvider{err: errors.New("upstream timeout"), configured: true})
	defer m.Close()

	_, err := m.ClassifyLog("[daytime] user logged in")
	assert.Error(t, err)
}

func TestClassifyLogUnconfiguredProvider(t *testing.T) {
	m := newStubManager(&stubProvider{output: "NORMAL", configured: false})
	defer m.Close()

	_, err := m.ClassifyLog("[daytime] user logged in")
	assert.Error(t, err)
	assert.False(t, m.Ready())
}

func TestClassifyLogCachesResults(t *testing.T) {
	stub := &stubProvider{output: "ANOMALOUS", configured: true}
	m := newStubManager(stub)
	defer m.Close()

	const tagged = "[nighttime] Admin deleted audit records"

	label, err := m.ClassifyLog(tagged)
	require.NoError(t, err)
	assert.Equal(t, "ANOMALOUS", label)

	label, err = m.ClassifyLog(tagged)
	require.NoError(t, err)
	assert.Equal(t, "ANOMALOUS", label)
	assert.Equal(t, 1, stub.calls)

	stats := m.CacheStats()
	assert.Equal(t, 1, stats["entries"])
	assert.Equal(t, 1, stats["total_hits"])

	assert.Equal(t, 1, m.ClearCache())
	_, err = m.ClassifyLog(tagged)
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls)
}

func TestClassifyLogFallsBackToSecondary(t *testing.T) {
	primary := &stubProvider{err: errors.New("rate limited"), configured: true}
	secondary := &stubProvider{output: "ANOMALOUS", configured: true}
	m := &Manager{
		providers: map[string]Provider{"primary": primary, "secondary": secondary},
		primary:   "primary",
		cache:     NewClassificationCache(60),
	}
	defer m.Close()

	label, err := m.ClassifyLog("[daytime] something odd")
	require.NoError(t, err)
	assert.Equal(t, "ANOMALOUS", label)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestCacheExpiry(t *testing.T) {
	c := NewClassificationCache(0)
	defer c.Close()

	c.Set("[daytime] hello", "NORMAL")
	_, ok := c.Get("[daytime] hello")
	assert.False(t, ok, "zero TTL entries should be expired immediately")
}

func TestPrimaryModel(t *testing.T) {
	m := newStubManager(&stubProvider{configured: true})
	defer m.Close()
	assert.Equal(t, "stub-model-v1", m.PrimaryModel())
}
