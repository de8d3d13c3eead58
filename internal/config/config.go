// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for match, server, logging and output settings.
//
// Values are layered: the Default* constructors below, then an optional YAML
// file, then PITCH_* environment variables (PITCH_MATCH_HALFDURATION=10).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "PITCH"

// =============================================================================
// MATCH CONFIGURATION
// =============================================================================

// MatchConfig holds the simulation settings of one match.
type MatchConfig struct {
	HalfDuration    float64 `mapstructure:"halfDuration"` // minutes
	TickSize        float64 `mapstructure:"tickSize"`     // seconds of match time per tick
	Seed            int64   `mapstructure:"seed"`         // 0 = derive from the clock
	PlayersPerSide  int     `mapstructure:"playersPerSide"`
	BenchSize       int     `mapstructure:"benchSize"`
	Formation       string  `mapstructure:"formation"`
	FormationsFile  string  `mapstructure:"formationsFile"` // extra formation tables (YAML)
	FoulProbability float64 `mapstructure:"foulProbability"`
	TeamAName       string  `mapstructure:"teamAName"`
	TeamBName       string  `mapstructure:"teamBName"`
}

// DefaultMatch returns the reference match: 2x45 minutes, 11-a-side, one second ticks.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		HalfDuration:    45,
		TickSize:        1.0,
		PlayersPerSide:  11,
		BenchSize:       0,
		Formation:       "legacy",
		FoulProbability: 0.2,
		TeamAName:       "Team A",
		TeamBName:       "Team B",
	}
}

// StepsPerHalf is the number of ticks in one half
func (m MatchConfig) StepsPerHalf() int {
	return int(m.HalfDuration * 60 / m.TickSize)
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	DebugAddr      string        `mapstructure:"debugAddr"`    // pprof + metrics, keep on localhost
	TickInterval   time.Duration `mapstructure:"tickInterval"` // wall-clock time between ticks
	RateLimit      float64       `mapstructure:"rateLimit"`    // requests per second per IP
	RateBurst      int           `mapstructure:"rateBurst"`
	AllowedOrigins []string      `mapstructure:"allowedOrigins"`
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:           3000,
		DebugAddr:      "localhost:6060",
		TickInterval:   100 * time.Millisecond,
		RateLimit:      10,
		RateBurst:      20,
		AllowedOrigins: []string{"*"},
	}
}

// =============================================================================
// LOGGING CONFIGURATION
// =============================================================================

// LogConfig holds logger settings.
type LogConfig struct {
	Level   string `mapstructure:"level"`   // trace, debug, info, warn, error
	File    string `mapstructure:"file"`    // optional JSON log file
	Console bool   `mapstructure:"console"` // human readable output on stdout
}

// DefaultLog returns the default logging configuration.
func DefaultLog() LogConfig {
	return LogConfig{
		Level:   "info",
		Console: true,
	}
}

// =============================================================================
// OUTPUT CONFIGURATION
// =============================================================================

// OutputConfig selects the event stream sinks written for each match.
type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	JSONL bool   `mapstructure:"jsonl"` // structured events, one per line
	Text  bool   `mapstructure:"text"`  // legacy human readable match log
	CSV   bool   `mapstructure:"csv"`   // ball and player positions
}

// DefaultOutput returns the default output configuration.
func DefaultOutput() OutputConfig {
	return OutputConfig{
		Dir:   "./matches",
		JSONL: true,
		Text:  true,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Match  MatchConfig  `mapstructure:"match"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	Output OutputConfig `mapstructure:"output"`
}

// Default returns the complete default configuration.
func Default() AppConfig {
	return AppConfig{
		Match:  DefaultMatch(),
		Server: DefaultServer(),
		Log:    DefaultLog(),
		Output: DefaultOutput(),
	}
}

// Load returns the configuration from defaults, the optional YAML file at
// path and the environment, validated.
func Load(path string) (AppConfig, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return AppConfig{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d AppConfig) {
	v.SetDefault("match.halfDuration", d.Match.HalfDuration)
	v.SetDefault("match.tickSize", d.Match.TickSize)
	v.SetDefault("match.seed", d.Match.Seed)
	v.SetDefault("match.playersPerSide", d.Match.PlayersPerSide)
	v.SetDefault("match.benchSize", d.Match.BenchSize)
	v.SetDefault("match.formation", d.Match.Formation)
	v.SetDefault("match.formationsFile", d.Match.FormationsFile)
	v.SetDefault("match.foulProbability", d.Match.FoulProbability)
	v.SetDefault("match.teamAName", d.Match.TeamAName)
	v.SetDefault("match.teamBName", d.Match.TeamBName)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.debugAddr", d.Server.DebugAddr)
	v.SetDefault("server.tickInterval", d.Server.TickInterval)
	v.SetDefault("server.rateLimit", d.Server.RateLimit)
	v.SetDefault("server.rateBurst", d.Server.RateBurst)
	v.SetDefault("server.allowedOrigins", d.Server.AllowedOrigins)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.console", d.Log.Console)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.jsonl", d.Output.JSONL)
	v.SetDefault("output.text", d.Output.Text)
	v.SetDefault("output.csv", d.Output.CSV)
}

// Validate reports every setting that cannot produce a playable match.
func (c AppConfig) Validate() error {
	var errs []error
	m := c.Match
	if m.HalfDuration <= 0 {
		errs = append(errs, fmt.Errorf("match.halfDuration must be positive, got %v", m.HalfDuration))
	}
	if m.TickSize <= 0 {
		errs = append(errs, fmt.Errorf("match.tickSize must be positive, got %v", m.TickSize))
	} else if m.HalfDuration > 0 && m.StepsPerHalf() < 1 {
		errs = append(errs, fmt.Errorf("match.tickSize %v is longer than a half", m.TickSize))
	}
	if m.PlayersPerSide < 1 {
		errs = append(errs, fmt.Errorf("match.playersPerSide must be at least 1, got %d", m.PlayersPerSide))
	}
	if m.BenchSize < 0 {
		errs = append(errs, fmt.Errorf("match.benchSize must not be negative, got %d", m.BenchSize))
	}
	if m.FoulProbability < 0 || m.FoulProbability > 1 {
		errs = append(errs, fmt.Errorf("match.foulProbability must be in [0,1], got %v", m.FoulProbability))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.TickInterval <= 0 {
		errs = append(errs, fmt.Errorf("server.tickInterval must be positive, got %v", c.Server.TickInterval))
	}
	return errors.Join(errs...)
}
