package game

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// Player movement and contact tuning
const (
	ArrivalEpsilon    = 1e-3 // closer than this to a target counts as arrived
	MoveAcceleration  = 0.2  // acceleration magnitude when running to a spot
	DribbleEffort     = 1.2
	SprintEffort      = 1.0
	TackleRange       = 2.0
	TackleSkillFactor = 0.8

	DefaultSkill = 0.7
)

// Player is one footballer. Kinematics and stamina change every tick; ID,
// team and role are fixed at setup.
type Player struct {
	ID       int      `json:"id"`
	Team     TeamSide `json:"team"`
	Role     Role     `json:"role"`
	Position r2.Vec   `json:"position"`
	Velocity r2.Vec   `json:"velocity"`
	Stamina  float64  `json:"stamina"`
	Skill    float64  `json:"skill"`
	Traits   Traits   `json:"-"`

	// Chemistry is the mean chemistry with current teammates
	Chemistry float64 `json:"chemistry"`

	// PhysicalAttributes is carried for downstream consumers only
	PhysicalAttributes map[string]float64 `json:"physicalAttributes,omitempty"`

	// SentOff is set once the player has been shown a red card
	SentOff bool `json:"sentOff"`

	policy StaminaPolicy
}

// PlayerOptions contains options for creating a player
type PlayerOptions struct {
	Role               Role
	Skill              float64 // in (0, 1]; zero or out of range uses DefaultSkill
	Traits             *Traits // defaults to 0.5 everywhere
	PhysicalAttributes map[string]float64
	Policy             *StaminaPolicy
}

// NewPlayer creates a rested, stationary player
func NewPlayer(id int, team TeamSide, position r2.Vec, opts PlayerOptions) *Player {
	skill := opts.Skill
	if !(skill > 0 && skill <= 1) {
		skill = DefaultSkill
	}
	traits := UniformTraits(0.5)
	if opts.Traits != nil {
		traits = *opts.Traits
	}
	policy := DefaultStaminaPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	return &Player{
		ID:                 id,
		Team:               team,
		Role:               opts.Role,
		Position:           position,
		Stamina:            MaxStamina,
		Skill:              skill,
		Traits:             traits,
		PhysicalAttributes: opts.PhysicalAttributes,
		policy:             policy,
	}
}

// Aggression is a shortcut for the most used trait
func (p *Player) Aggression() float64 {
	return p.Traits.Get(TraitAggression)
}

// DistanceTo returns the distance between two players
func (p *Player) DistanceTo(other *Player) float64 {
	return distance(p.Position, other.Position)
}

// Dribble carries the ball forward. The acceleration is scaled by stamina,
// skill and aggression before being integrated.
func (p *Player) Dribble(acceleration r2.Vec, dt float64) {
	scale := StaminaFactor(p.Stamina) * p.Skill * p.Aggression()
	effective := r2.Scale(scale, acceleration)

	p.Position, p.Velocity = CalculateMovement(p.Position, p.Velocity, effective, dt, p.Stamina)
	p.Stamina = p.policy.Drain(p.Stamina, dt, DribbleEffort, ActionDribble)
}

// MoveToPosition sprints toward target. Does nothing once the player is
// within ArrivalEpsilon of it.
func (p *Player) MoveToPosition(target r2.Vec, dt float64) {
	if distance(p.Position, target) < ArrivalEpsilon {
		return
	}

	acceleration := r2.Scale(MoveAcceleration, unit(r2.Sub(target, p.Position)))
	p.Position, p.Velocity = CalculateMovement(p.Position, p.Velocity, acceleration, dt, p.Stamina)
	p.Stamina = p.policy.Drain(p.Stamina, dt, SprintEffort, ActionSprint)
}

// PassBall plays the ball toward target
func (p *Player) PassBall(ball *Ball, target r2.Vec, force float64) {
	ball.Pass(force, target)
	ball.Touch(p.ID, p.Team)
	p.Stamina = p.policy.Spend(p.Stamina, p.policy.PassForceCost*force)
}

// Shoot strikes the ball toward goal
func (p *Player) Shoot(ball *Ball, goal r2.Vec, force float64) {
	ball.Shoot(force, goal)
	ball.Touch(p.ID, p.Team)
	p.Stamina = p.policy.Spend(p.Stamina, p.policy.ShotForceCost*force)
}

// Tackle attempts to win the ball from target. A draw is taken only when
// the target is in range. The target's state is not modified.
func (p *Player) Tackle(target *Player, rng Rand) bool {
	if p.DistanceTo(target) >= TackleRange {
		return false
	}
	successProbability := p.Skill * TackleSkillFactor * p.Aggression()
	return rng.Float64() < successProbability
}

// UpdateChemistry recomputes the player's chemistry as the mean pairwise
// chemistry with every other player in teammates
func (p *Player) UpdateChemistry(teammates []*Player) {
	total := 0.0
	n := 0
	for _, mate := range teammates {
		if mate.ID == p.ID {
			continue
		}
		total += CalculateChemistry(p, mate)
		n++
	}
	if n == 0 {
		p.Chemistry = 0
		return
	}
	p.Chemistry = total / float64(n)
}
