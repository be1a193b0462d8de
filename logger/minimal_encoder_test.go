package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encode(t *testing.T, ent zapcore.Entry, fields ...zapcore.Field) string {
	t.Helper()
	enc := newMinimalEncoder()
	buf, err := enc.EncodeEntry(ent, fields)
	require.NoError(t, err)
	return buf.String()
}

func TestEncodeEntryBasic(t *testing.T) {
	out := encode(t, zapcore.Entry{
		Time:       time.Date(2026, 8, 1, 13, 4, 35, 0, time.UTC),
		Level:      zapcore.InfoLevel,
		LoggerName: "workspace.scanner",
		Message:    "Content scanned",
	}, zap.String("content", "myMod"), zap.Int("count", 42))

	assert.Contains(t, out, "13:04:35")
	// component names are abbreviated for visual grouping
	assert.Contains(t, out, "w.scanner")
	assert.Contains(t, out, "Content scanned")
	assert.Contains(t, out, "content=")
	assert.Contains(t, out, "myMod")
	assert.Contains(t, out, "42")
	// INFO level itself is not printed
	assert.NotContains(t, out, "INFO")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestEncodeEntryLevels(t *testing.T) {
	warn := encode(t, zapcore.Entry{Time: time.Now(), Level: zapcore.WarnLevel, Message: "careful"})
	assert.Contains(t, warn, "WARN")

	errOut := encode(t, zapcore.Entry{Time: time.Now(), Level: zapcore.ErrorLevel, Message: "broken"})
	assert.Contains(t, errOut, "ERROR")
}

func TestAbbreviateName(t *testing.T) {
	assert.Equal(t, "scanner", abbreviateName("scanner"))
	assert.Equal(t, "w.watcher", abbreviateName("workspace.watcher"))
	assert.Equal(t, "w.graph.builder", abbreviateName("workspace.graph.builder"))
}

func TestFieldValueTypes(t *testing.T) {
	assert.Equal(t, "text", fieldValue(zap.String("k", "text")))
	assert.Equal(t, "7", fieldValue(zap.Int("k", 7)))
	assert.Equal(t, "true", fieldValue(zap.Bool("k", true)))
	assert.Equal(t, "1500ms", fieldValue(zap.Duration("k", 1500*time.Millisecond)))
}
