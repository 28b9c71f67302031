package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelWarn, &buf)

	l.Info("dropped %d", 1)
	l.Warn("kept %s", "warn")
	l.Error("kept %s", "error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "warn", first["level"])
	assert.Equal(t, "kept warn", first["message"])
}

func TestLoggerCriticalDoesNotExit(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(LevelCritical, &buf)

	l.Error("below threshold")
	l.Critical("sanction pipeline stalled")

	out := buf.String()
	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "sanction pipeline stalled")
	assert.Contains(t, out, `"severity":"critical"`)
}

func TestGlobalHelpersWithoutLogger(t *testing.T) {
	SetGlobalLogger(nil)
	assert.NotPanics(t, func() {
		Info("no logger configured")
		Error("still fine")
	})
	assert.NoError(t, Close())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel(" warning "))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "CRITICAL", LevelCritical.String())
}
