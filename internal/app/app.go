// Package app turns the loaded configuration into a running match: the
// engine, its output sinks and the shared .env/config bootstrap of the
// commands.
package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"pitch-sim/internal/config"
	"pitch-sim/internal/game"
	"pitch-sim/internal/logging"
)

// Bootstrap loads .env (from the parent or current directory), the config
// file at path and the logger. The returned closer closes the log file.
func Bootstrap(path string) (config.AppConfig, zerolog.Logger, io.Closer, error) {
	envFile := ""
	if err := godotenv.Load("../.env"); err == nil {
		envFile = "../.env"
	} else if err := godotenv.Load(".env"); err == nil {
		envFile = ".env"
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, zerolog.Nop(), nil, err
	}
	logger, closer, err := logging.Setup(cfg.Log)
	if err != nil {
		return cfg, zerolog.Nop(), nil, err
	}
	if envFile != "" {
		logger.Debug().Str("file", envFile).Msg("loaded environment")
	}
	return cfg, logger, closer, nil
}

// EngineConfig maps the match settings onto the engine
func EngineConfig(m config.MatchConfig, logger zerolog.Logger) (game.EngineConfig, error) {
	formations, err := game.LoadFormations(m.FormationsFile)
	if err != nil {
		return game.EngineConfig{}, err
	}
	cfg := game.DefaultEngineConfig()
	cfg.HalfDuration = m.HalfDuration
	cfg.TickSize = m.TickSize
	cfg.Seed = m.Seed
	cfg.PlayersPerSide = m.PlayersPerSide
	cfg.BenchSize = m.BenchSize
	cfg.Formation = m.Formation
	cfg.Formations = formations
	cfg.FoulProbability = m.FoulProbability
	cfg.Logger = logger
	return cfg, nil
}

// NewMatch creates the engine and attaches the configured sinks. Callers
// must Close the engine to flush the sinks.
func NewMatch(cfg config.AppConfig, logger zerolog.Logger) (*game.Engine, error) {
	ecfg, err := EngineConfig(cfg.Match, logger)
	if err != nil {
		return nil, err
	}
	engine, err := game.NewEngine(ecfg)
	if err != nil {
		return nil, err
	}
	paths, err := AttachSinks(engine, cfg.Output)
	if err != nil {
		engine.Close()
		return nil, err
	}
	for _, p := range paths {
		logger.Info().Str("path", p).Msg("writing match output")
	}
	return engine, nil
}

// AttachSinks opens one file per enabled sink, named after the match ID,
// and returns their paths.
func AttachSinks(engine *game.Engine, out config.OutputConfig) ([]string, error) {
	type sinkSpec struct {
		enabled bool
		suffix  string
		open    func(io.WriteCloser) game.Sink
	}
	specs := []sinkSpec{
		{out.JSONL, ".jsonl", func(w io.WriteCloser) game.Sink { return game.NewJSONLSink(w) }},
		{out.Text, ".log", func(w io.WriteCloser) game.Sink { return game.NewTextSink(w) }},
		{out.CSV, ".positions.csv", func(w io.WriteCloser) game.Sink { return game.NewCSVSink(w) }},
	}

	var paths []string
	for _, spec := range specs {
		if !spec.enabled {
			continue
		}
		if len(paths) == 0 {
			if err := os.MkdirAll(out.Dir, 0755); err != nil {
				return nil, fmt.Errorf("creating output dir: %w", err)
			}
		}
		path := filepath.Join(out.Dir, engine.MatchID()+spec.suffix)
		f, err := game.OpenFile(path)
		if err != nil {
			return paths, err
		}
		engine.Events().AddSink(spec.open(f))
		paths = append(paths, path)
	}
	return paths, nil
}
