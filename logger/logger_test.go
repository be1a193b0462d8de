package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoggerIsSafeBeforeInitialize(t *testing.T) {
	require.NotNil(t, Logger)
	// must not panic
	Logger.Infow("message before initialization", "key", "value")
}

func TestInitialize(t *testing.T) {
	require.NoError(t, Initialize(false, zapcore.InfoLevel))
	assert.False(t, JSONOutput)
	require.NotNil(t, Logger)

	require.NoError(t, Initialize(true, zapcore.WarnLevel))
	assert.True(t, JSONOutput)
}

func TestNamed(t *testing.T) {
	require.NoError(t, Initialize(false, zapcore.InfoLevel))
	child := Named("workspace.watcher")
	require.NotNil(t, child)
	child.Debugw("suppressed at info level")
}

func TestVerbosityToLevel(t *testing.T) {
	assert.Equal(t, zapcore.WarnLevel, VerbosityToLevel(0))
	assert.Equal(t, zapcore.InfoLevel, VerbosityToLevel(1))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(2))
	assert.Equal(t, zapcore.DebugLevel, VerbosityToLevel(7))
}
