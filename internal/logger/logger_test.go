package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestLogger_WritesJSONWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New("parser", WithOutput(&buf))

	l.Info("order_parsed", map[string]any{"items": 3})

	entries := decode(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, "parser", entries[0]["service"])
	assert.Equal(t, "order_parsed", entries[0]["action"])
	assert.Equal(t, float64(3), entries[0]["items"])
	assert.Contains(t, entries[0], "timestamp")
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New("parser", WithOutput(&buf), WithLevel(LevelWarn))

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("shown", nil)
	l.Error("failed", errors.New("boom"), nil)

	entries := decode(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	errField, ok := entries[1]["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", errField["msg"])
}

func TestLogger_NamedSharesOutput(t *testing.T) {
	var buf bytes.Buffer
	l := New("api", WithOutput(&buf)).Named("playground")

	l.Info("connected", nil)

	entries := decode(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "playground", entries[0]["service"])
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Error("ignored", errors.New("x"), map[string]any{"k": "v"})
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel(""))
}
