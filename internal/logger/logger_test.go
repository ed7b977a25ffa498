package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"feedbackinsights/internal/config"
)

func TestNewFallsBackToInfoOnBadLevel(t *testing.T) {
	log, err := New(config.LogConfig{Level: "loud", Encoding: "json"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.InfoLevel))
	require.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewConsoleDebug(t *testing.T) {
	log, err := New(config.LogConfig{Level: "DEBUG", Encoding: "console", Development: true})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zapcore.DebugLevel))
}
