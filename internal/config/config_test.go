package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2700, cfg.Match.StepsPerHalf())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
match:
  halfDuration: 10
  seed: 99
  benchSize: 3
  formation: "4-4-2"
server:
  port: 8081
  tickInterval: 250ms
  allowedOrigins:
    - https://*.example.com
output:
  csv: true
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10.0, cfg.Match.HalfDuration)
	assert.Equal(t, int64(99), cfg.Match.Seed)
	assert.Equal(t, 3, cfg.Match.BenchSize)
	assert.Equal(t, "4-4-2", cfg.Match.Formation)
	assert.Equal(t, 11, cfg.Match.PlayersPerSide, "unset keys keep their defaults")
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.TickInterval)
	assert.Equal(t, []string{"https://*.example.com"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Output.CSV)
	assert.True(t, cfg.Output.JSONL)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match.yaml")
	require.NoError(t, os.WriteFile(path, []byte("match:\n  halfDuration: 10\n"), 0644))

	t.Setenv("PITCH_MATCH_HALFDURATION", "2")
	t.Setenv("PITCH_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2.0, cfg.Match.HalfDuration)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "error reading config file")
	})

	t.Run("invalid values", func(t *testing.T) {
		t.Setenv("PITCH_MATCH_PLAYERSPERSIDE", "0")
		_, err := Load("")
		assert.ErrorContains(t, err, "playersPerSide")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*AppConfig)
		wantErr string
	}{
		{"zero half", func(c *AppConfig) { c.Match.HalfDuration = 0 }, "halfDuration"},
		{"zero tick", func(c *AppConfig) { c.Match.TickSize = 0 }, "tickSize must be positive"},
		{"tick longer than a half", func(c *AppConfig) { c.Match.HalfDuration = 0.01 }, "longer than a half"},
		{"negative bench", func(c *AppConfig) { c.Match.BenchSize = -2 }, "benchSize"},
		{"foul probability", func(c *AppConfig) { c.Match.FoulProbability = 2 }, "foulProbability"},
		{"port", func(c *AppConfig) { c.Server.Port = 70000 }, "server.port"},
		{"tick interval", func(c *AppConfig) { c.Server.TickInterval = 0 }, "tickInterval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Match.PlayersPerSide = 0
	cfg.Server.Port = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "playersPerSide")
	assert.Contains(t, err.Error(), "server.port")
}
