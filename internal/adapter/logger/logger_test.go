package logger_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsletter/internal/adapter/logger"
	"newsletter/pkg/config"
)

func TestNew_WritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer

	log, err := logger.New(logger.Options{ServiceName: "newsletter", Level: "info", Sink: &buf})
	require.NoError(t, err)

	log.Info("subscription saved")
	require.NoError(t, log.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "subscription saved", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "newsletter", entry["service"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer

	log, err := logger.New(logger.Options{ServiceName: "newsletter", Level: "warn", Sink: &buf})
	require.NoError(t, err)

	log.Info("ignored")
	log.SQL.Info().Msg("ignored too")

	assert.Empty(t, buf.String())
}

func TestNew_SQLLoggerSharesSink(t *testing.T) {
	var buf bytes.Buffer

	log, err := logger.New(logger.Options{ServiceName: "newsletter", Level: "debug", Sink: &buf})
	require.NoError(t, err)

	log.SQL.Debug().Str("query", "SELECT 1").Msg("exec")

	assert.Contains(t, buf.String(), `"component":"sql"`)
	assert.Contains(t, buf.String(), `"query":"SELECT 1"`)
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logger.New(logger.Options{Level: "loud"})

	assert.Error(t, err)
}

func TestOptionsFromSettings_AddsRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	opts := logger.OptionsFromSettings("newsletter", config.LogSettings{Level: "info", File: path, MaxSizeMB: 1})
	require.NotNil(t, opts.File)

	var buf bytes.Buffer
	opts.Sink = &buf

	log, err := logger.New(opts)
	require.NoError(t, err)

	log.Info("to both sinks")
	require.NoError(t, opts.File.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(data), "to both sinks"))
	assert.Contains(t, buf.String(), "to both sinks")
}

func TestOptionsFromSettings_WithoutFile(t *testing.T) {
	opts := logger.OptionsFromSettings("newsletter", config.LogSettings{Level: "info"})

	assert.Nil(t, opts.File)
	assert.Equal(t, os.Stdout, opts.Sink)
}
