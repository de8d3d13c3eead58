package game

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// BallFriction is the fraction of ball velocity lost per update
const BallFriction = 0.015

// Touch records who last played the ball
type Touch struct {
	PlayerID int      `json:"playerId"`
	Team     TeamSide `json:"team"`
}

// Ball is the single match ball. It is owned by the Engine and referenced by
// players and agents when they pass or shoot.
type Ball struct {
	Position r2.Vec
	Velocity r2.Vec
	Friction float64

	// LastTouch is nil until somebody kicks the ball
	LastTouch *Touch

	length float64
	width  float64
}

// NewBall places a stationary ball on the centre spot of the field
func NewBall(field *Field) *Ball {
	return &Ball{
		Position: field.Center(),
		Friction: BallFriction,
		length:   field.Length,
		width:    field.Width,
	}
}

// Kick sets the ball velocity to force along direction. A zero direction
// leaves the ball with zero velocity.
func (b *Ball) Kick(force float64, direction r2.Vec) {
	b.Velocity = r2.Scale(force, unit(direction))
}

// Pass kicks the ball from its current position toward target
func (b *Ball) Pass(force float64, target r2.Vec) {
	b.Kick(force, r2.Sub(target, b.Position))
}

// Shoot kicks the ball from its current position toward the goal
func (b *Ball) Shoot(force float64, goal r2.Vec) {
	b.Kick(force, r2.Sub(goal, b.Position))
}

// Touch marks the player who last kicked the ball
func (b *Ball) Touch(playerID int, team TeamSide) {
	b.LastTouch = &Touch{PlayerID: playerID, Team: team}
}

// Reset puts the ball back on a spot with no velocity and no last touch
func (b *Ball) Reset(spot r2.Vec) {
	b.Position = spot
	b.Velocity = r2.Vec{}
	b.LastTouch = nil
}

// UpdatePosition advances the ball by dt. An axis that ends up outside the
// pitch has its velocity component reflected; the position itself is left
// where it is. Friction is applied once after the bounce check.
func (b *Ball) UpdatePosition(dt float64) {
	b.Position = r2.Add(b.Position, r2.Scale(dt, b.Velocity))

	if b.Position.X < 0 || b.Position.X > b.length {
		b.Velocity.X = -b.Velocity.X
	}
	if b.Position.Y < 0 || b.Position.Y > b.width {
		b.Velocity.Y = -b.Velocity.Y
	}

	b.Velocity = r2.Sub(b.Velocity, r2.Scale(b.Friction, b.Velocity))
}
