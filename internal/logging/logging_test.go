package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", FormatJSON, zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", FormatConsole, zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", "", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", FormatJSON, zapcore.ErrorLevel, zapcore.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", FormatJSON)
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}
