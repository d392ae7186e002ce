package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/text-adventure-client/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_ProductionWritesJSON(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := Setup(&config.Config{Environment: "production", LogLevel: slog.LevelInfo}, &buf)
	WithRequestID(log, "req-1").Info("screen fetched", "screen_id", "abc")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "screen fetched", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "abc", line["screen_id"])
}

func TestSetup_DevelopmentWritesTextAndFiltersLevel(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	var buf bytes.Buffer
	log := Setup(&config.Config{Environment: "development", LogLevel: slog.LevelWarn}, &buf)
	log.Info("hidden")
	WithError(log, errors.New("boom")).Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "error=boom")
}

func TestOpenFile(t *testing.T) {
	w, closeFn, err := OpenFile(&config.Config{})
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	_, err = w.Write([]byte("ignored"))
	assert.NoError(t, err)

	path := filepath.Join(t.TempDir(), "client.log")
	w, closeFn, err = OpenFile(&config.Config{LogFile: path})
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "hello"))
}
