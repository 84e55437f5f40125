package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("info"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestInitLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Level: "info"})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Debug("hidden")
	Info("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "key=value")
	assert.False(t, DebugEnabled())
}

func TestInitDebug(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Level: "debug"})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Debug("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.True(t, DebugEnabled())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, Config{Level: "info", Format: "json"})
	t.Cleanup(func() { Init(Config{Level: "info"}) })

	Info("structured", "count", 3)
	assert.Contains(t, buf.String(), `"count":3`)
}
