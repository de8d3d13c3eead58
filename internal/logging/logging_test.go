package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitch-sim/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"info":    zerolog.InfoLevel,
		"Warn":    zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

func TestSetupConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := setup(config.LogConfig{Level: "warn", Console: true}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info().Msg("hidden")
	logger.Warn().Str("team", "team_a").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "team_a")
}

func TestSetupFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.log")
	logger, closer, err := setup(config.LogConfig{Level: "info", File: path}, nil)
	require.NoError(t, err)

	logger.Info().Int("half", 2).Msg("half started")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "half started", entry["message"])
	assert.Equal(t, 2.0, entry["half"])
	assert.Contains(t, entry, "time")
}

func TestSetupNothingEnabled(t *testing.T) {
	logger, closer, err := setup(config.LogConfig{}, nil)
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
	assert.Equal(t, zerolog.Disabled, logger.GetLevel())
}

func TestSetupBadFile(t *testing.T) {
	_, closer, err := setup(config.LogConfig{File: filepath.Join(t.TempDir(), "missing", "sim.log")}, nil)
	assert.Error(t, err)
	assert.NotNil(t, closer)
}
