package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Physics constants
const (
	Friction      = 0.1  // ground friction applied to player velocity per second
	AirResistance = 0.02 // air drag applied to player velocity per second
	StaminaFloor  = 0.2  // minimum stamina factor so exhausted players still move
	MaxStamina    = 100.0

	baseStaminaRate = 0.05
)

// Action names understood by the stamina model
const (
	ActionSprint  = "sprint"
	ActionTackle  = "tackle"
	ActionDribble = "dribble"
	ActionWalk    = "walk"
	ActionStand   = "stand"
)

// staminaMultipliers scales the drain rate per action. Dribble carries its
// extra cost through the effort level, so it is deliberately absent here.
var staminaMultipliers = map[string]float64{
	ActionSprint: 2.0,
	ActionTackle: 1.5,
	ActionWalk:   0.5,
	ActionStand:  0.2,
}

// StaminaFactor is max(stamina/100, 0.2)
func StaminaFactor(stamina float64) float64 {
	return math.Max(stamina/MaxStamina, StaminaFloor)
}

// CalculateMovement integrates one step of player motion. Acceleration is
// damped by stamina, then friction and air resistance decay the new velocity
// in that order. Position is never clamped.
func CalculateMovement(position, velocity, acceleration r2.Vec, dt, stamina float64) (r2.Vec, r2.Vec) {
	adjusted := r2.Scale(StaminaFactor(stamina), acceleration)

	v := r2.Add(velocity, r2.Scale(dt, adjusted))
	v = r2.Scale(1-Friction*dt, v)
	v = r2.Scale(1-AirResistance*dt, v)

	return r2.Add(position, r2.Scale(dt, v)), v
}

// UpdateStamina drains stamina for dt seconds of the given effort and action.
// Unknown actions use a multiplier of 1. The result is never negative.
func UpdateStamina(stamina, dt, effortLevel float64, actionType string) float64 {
	rate := baseStaminaRate * effortLevel
	if m, ok := staminaMultipliers[actionType]; ok {
		rate *= m
	}
	return math.Max(stamina-rate*dt, 0)
}

// StaminaPolicy is the single place where stamina costs are decided, both
// the physics-routed drains and the flat per-action costs.
type StaminaPolicy struct {
	PassForceCost    float64 // per unit of pass force
	ShotForceCost    float64 // per unit of shot force
	PassCost         float64 // flat cost of a decided pass
	DribbleCost      float64 // flat cost of a decided dribble
	ShotCost         float64 // flat cost of a decided shot
	RestRecovery     float64 // recovered per rest decision
	HalfTimeRecovery float64
}

// DefaultStaminaPolicy returns the reference costs
func DefaultStaminaPolicy() StaminaPolicy {
	return StaminaPolicy{
		PassForceCost:    0.02,
		ShotForceCost:    0.05,
		PassCost:         5,
		DribbleCost:      10,
		ShotCost:         15,
		RestRecovery:     5,
		HalfTimeRecovery: 30,
	}
}

// Drain applies the physics stamina model
func (sp StaminaPolicy) Drain(stamina, dt, effort float64, action string) float64 {
	return clampStamina(UpdateStamina(stamina, dt, effort, action))
}

// Spend subtracts a flat cost
func (sp StaminaPolicy) Spend(stamina, cost float64) float64 {
	return clampStamina(stamina - cost)
}

// Recover adds stamina up to the cap
func (sp StaminaPolicy) Recover(stamina, amount float64) float64 {
	return clampStamina(stamina + amount)
}

func clampStamina(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > MaxStamina {
		return MaxStamina
	}
	return s
}
