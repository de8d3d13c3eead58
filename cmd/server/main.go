package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pitch-sim/internal/api"
	"pitch-sim/internal/app"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (empty = defaults + env)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

// run serves one match until a signal or a fatal API error. Deferred cleanup
// always runs before main exits.
func run(configPath string) error {
	// Load centralized configuration (SSOT - Single Source of Truth)
	cfg, logger, closer, err := app.Bootstrap(configPath)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer closer.Close()

	engine, err := app.NewMatch(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("creating match")
		return fmt.Errorf("creating match: %w", err)
	}

	var debugServer interface{ Shutdown(context.Context) error }
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if srv := api.StartDebugServer(api.ObservabilityConfigFromEnv(cfg.Server.DebugAddr), logger); srv != nil {
			debugServer = srv
		}
	}

	// Subscribe before the clock starts so spectators see kick-off
	server := api.NewServer(engine, cfg.Server, logger)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	engine.Start(cfg.Server.TickInterval)
	logger.Info().
		Str("match", engine.MatchID()).
		Int("port", cfg.Server.Port).
		Dur("tick_interval", cfg.Server.TickInterval).
		Msg("match underway")

	// Serve until a signal arrives; the API stays up after full time
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	matchDone := engine.Done()
	for running := true; running; {
		select {
		case <-matchDone:
			score := engine.Score()
			logger.Info().Int("team_a", score.TeamA).Int("team_b", score.TeamB).Msg("full time, API still serving")
			matchDone = nil
		case sig := <-sigChan:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
			running = false
		case err := <-serverErr:
			if err != nil {
				logger.Error().Err(err).Msg("API server failed")
				runErr = fmt.Errorf("api server: %w", err)
			}
			running = false
		}
	}

	engine.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("API shutdown")
	}
	if debugServer != nil {
		debugServer.Shutdown(ctx)
	}
	if err := engine.Close(); err != nil {
		logger.Error().Err(err).Msg("writing match output")
	}
	logger.Info().Msg("goodbye")
	return runErr
}
