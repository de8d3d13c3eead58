package game

import (
	"math/rand"
	"time"
)

// Rand is the uniform source every decision draws from. *rand.Rand satisfies it.
type Rand interface {
	// Float64 returns a value in [0,1)
	Float64() float64
}

// NewRand returns a seeded source. A zero seed picks one from the clock; the
// chosen seed is returned so it can be logged and replayed.
func NewRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// uniform draws from [lo, hi)
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// ScriptedRand replays a fixed sequence of draws, cycling when exhausted.
// It exists so decision tests can force specific branches.
type ScriptedRand struct {
	Values []float64
	next   int
}

// NewScriptedRand returns a source that yields values in order
func NewScriptedRand(values ...float64) *ScriptedRand {
	return &ScriptedRand{Values: values}
}

// Float64 returns the next scripted value
func (s *ScriptedRand) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	return v
}

// Draws reports how many values have been consumed
func (s *ScriptedRand) Draws() int {
	return s.next
}
