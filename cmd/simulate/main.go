// Command simulate plays one match headless at full speed, writes the
// configured event sinks and prints a summary.
//
// USAGE:
//
//	go run ./cmd/simulate -config match.yaml -seed 42
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"pitch-sim/internal/app"
	"pitch-sim/internal/config"
	"pitch-sim/internal/game"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file (empty = defaults + env)")
	seed := flag.Int64("seed", 0, "Random seed, overrides the config (0 = keep)")
	outputDir := flag.String("output-dir", "", "Directory for event output, overrides the config")
	flag.Parse()

	if err := run(*configPath, *seed, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "simulate: %v\n", err)
		os.Exit(1)
	}
}

// run plays the match. Deferred cleanup always runs before main exits.
func run(configPath string, seed int64, outputDir string) error {
	cfg, logger, closer, err := app.Bootstrap(configPath)
	if err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	defer closer.Close()

	if seed != 0 {
		cfg.Match.Seed = seed
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	engine, err := app.NewMatch(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("creating match")
		return fmt.Errorf("creating match: %w", err)
	}

	start := time.Now()
	engine.Run()
	elapsed := time.Since(start)

	if err := engine.Close(); err != nil {
		logger.Error().Err(err).Msg("writing match output")
	}
	printSummary(os.Stdout, cfg.Match, engine, elapsed)
	return nil
}

func printSummary(w io.Writer, m config.MatchConfig, engine *game.Engine, elapsed time.Duration) {
	snap := engine.Snapshot()
	score := snap.Score

	fmt.Fprintf(w, "\nMatch %s (seed %d)\n", snap.MatchID, snap.Seed)
	fmt.Fprintf(w, "  %s %d - %d %s\n", m.TeamAName, score.TeamA, score.TeamB, m.TeamBName)
	if winner, ok := score.Winner(); ok {
		name := m.TeamAName
		if winner == game.TeamB {
			name = m.TeamBName
		}
		fmt.Fprintf(w, "  Winner: %s\n", name)
	} else {
		fmt.Fprintln(w, "  Draw")
	}

	steps := int64(2 * m.StepsPerHalf())
	fmt.Fprintf(w, "  %s ticks, %s events in %s\n",
		humanize.Comma(steps), humanize.Comma(int64(snap.EventCount)), elapsed.Round(time.Millisecond))

	fmt.Fprintln(w, "\nTop rewards")
	for _, s := range engine.Standings(5) {
		fmt.Fprintf(w, "  %s  player %-3d %-7s %s\n",
			humanize.Ordinal(s.Rank), s.PlayerID, s.Team, humanize.Commaf(s.Reward))
	}
	teams := engine.TeamRewards()
	fmt.Fprintf(w, "  %s total %s, %s total %s\n",
		m.TeamAName, humanize.Commaf(teams[game.TeamA]), m.TeamBName, humanize.Commaf(teams[game.TeamB]))

	fmt.Fprintln(w, "\nEvents")
	counts := engine.EventCounts()
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-16s %s\n", name, humanize.Comma(int64(counts[name])))
	}
}
