package game

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

// =============================================================================
// BENCHMARK SUITE: SIMULATION HOT PATH
// Run with: go test -bench=. -benchmem ./internal/game/...
// =============================================================================

func BenchmarkEngineTick_5aside(b *testing.B)  { benchmarkEngineTick(b, 5) }
func BenchmarkEngineTick_11aside(b *testing.B) { benchmarkEngineTick(b, 11) }
func BenchmarkEngineTick_50aside(b *testing.B) { benchmarkEngineTick(b, 50) }

func benchmarkEngineTick(b *testing.B, perSide int) {
	cfg := DefaultEngineConfig()
	cfg.PlayersPerSide = perSide
	cfg.Seed = 1
	engine, err := NewEngine(cfg)
	if err != nil {
		b.Fatal(err)
	}
	engine.startHalf(1)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.tick()
	}
}

func BenchmarkPublishSnapshot(b *testing.B) {
	engine, err := NewEngine(DefaultEngineConfig())
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		engine.publishSnapshot()
	}
}

func BenchmarkChemistryMatrix(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	roster := make([]*Player, 11)
	for i := range roster {
		traits := RandomTraits(rng)
		roster[i] = NewPlayer(i+1, TeamA, r2.Vec{}, PlayerOptions{Traits: &traits})
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		NewChemistryMatrix(roster)
	}
}

func BenchmarkCalculateMovement(b *testing.B) {
	pos, vel := r2.Vec{X: 10, Y: 10}, r2.Vec{X: 1, Y: 0.5}
	acc := r2.Vec{X: 0.2, Y: 0.1}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pos, vel = CalculateMovement(pos, vel, acc, 1.0, 80)
	}
}
