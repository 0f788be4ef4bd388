package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"single char", "x", false},
		{"typical entry", "User logged in from workstation 12", false},
		{"exactly max length", strings.Repeat("a", MaxLogTextLen), false},
		{"multibyte runes count as characters", strings.Repeat("é", MaxLogTextLen), false},
		{"empty", "", true},
		{"over max length", strings.Repeat("a", MaxLogTextLen+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LogRecord{LogID: 1, LogText: tt.text}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
