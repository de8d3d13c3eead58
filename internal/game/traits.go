package game

import (
	"fmt"
)

// Trait indexes the canonical personality trait set shared by every player
type Trait int

const (
	TraitDrive Trait = iota
	TraitAggression
	TraitMentalToughness
	TraitConscientiousness
	TraitResponsibility
	TraitLeadership
	TraitSelfControl
	TraitSelfConfidence
	TraitCoachability
	TraitTruthfulness
	TraitTeamSpirit
	TraitLearnability
	TraitCommunication
	TraitGameSense

	NumTraits
)

var traitNames = [NumTraits]string{
	"Drive and Determination",
	"Aggression",
	"Mental Toughness",
	"Conscientiousness",
	"Responsibility",
	"Leadership",
	"Self-Control",
	"Self-Confidence",
	"Coachability",
	"Truthfulness",
	"Team Spirit",
	"Learnability",
	"Communication",
	"Game Sense",
}

// String returns the trait's display name
func (t Trait) String() string {
	if t < 0 || t >= NumTraits {
		return "unknown"
	}
	return traitNames[t]
}

// TraitByName resolves a trait display name. Lookup is exact: "aggression"
// is not "Aggression".
func TraitByName(name string) (Trait, error) {
	for i, n := range traitNames {
		if n == name {
			return Trait(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown trait %q", ErrInvalidArgument, name)
}

// Traits is a fixed-size trait vector with values in [0,1]
type Traits [NumTraits]float64

// Get returns a trait value
func (t *Traits) Get(trait Trait) float64 {
	return t[trait]
}

// Lookup returns a trait value by display name
func (t *Traits) Lookup(name string) (float64, error) {
	trait, err := TraitByName(name)
	if err != nil {
		return 0, err
	}
	return t[trait], nil
}

// Set assigns a trait by display name, clamping the value to [0,1]
func (t *Traits) Set(name string, value float64) error {
	trait, err := TraitByName(name)
	if err != nil {
		return err
	}
	t[trait] = min(max(value, 0), 1)
	return nil
}

// Map returns the traits keyed by display name
func (t *Traits) Map() map[string]float64 {
	m := make(map[string]float64, NumTraits)
	for i, v := range t {
		m[traitNames[i]] = v
	}
	return m
}

// RandomTraits draws every trait uniformly from [0,1)
func RandomTraits(rng Rand) Traits {
	var t Traits
	for i := range t {
		t[i] = rng.Float64()
	}
	return t
}

// UniformTraits sets every trait to v (useful for fixtures)
func UniformTraits(v float64) Traits {
	var t Traits
	for i := range t {
		t[i] = v
	}
	return t
}
