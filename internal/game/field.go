package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pitch dimensions in meters
const (
	PitchLength        = 105.0
	PitchWidth         = 68.0
	GoalBoxDepth       = 5.5
	GoalBoxHalfWidth   = 9.16
	PenaltyBoxDepth    = 16.5
	PenaltyHalfWidth   = 20.15
	CenterCircleRadius = 9.15
)

// Rect is an axis-aligned region with inclusive bounds
type Rect struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether p lies inside the rectangle (edges included)
func (r Rect) Contains(p r2.Vec) bool {
	return r.MinX <= p.X && p.X <= r.MaxX && r.MinY <= p.Y && p.Y <= r.MaxY
}

// Field holds the static pitch geometry. Index 0 of the box arrays is the
// left end (x = 0, defended by team A), index 1 the right end.
type Field struct {
	Length             float64
	Width              float64
	GoalBoxes          [2]Rect
	PenaltyBoxes       [2]Rect
	CenterCircleRadius float64
}

// NewField returns a standard 105x68 pitch
func NewField() *Field {
	f := &Field{
		Length:             PitchLength,
		Width:              PitchWidth,
		CenterCircleRadius: CenterCircleRadius,
	}
	midY := f.Width / 2

	f.GoalBoxes[0] = Rect{MinX: 0, MaxX: GoalBoxDepth, MinY: midY - GoalBoxHalfWidth, MaxY: midY + GoalBoxHalfWidth}
	f.GoalBoxes[1] = Rect{MinX: f.Length - GoalBoxDepth, MaxX: f.Length, MinY: midY - GoalBoxHalfWidth, MaxY: midY + GoalBoxHalfWidth}

	f.PenaltyBoxes[0] = Rect{MinX: 0, MaxX: PenaltyBoxDepth, MinY: midY - PenaltyHalfWidth, MaxY: midY + PenaltyHalfWidth}
	f.PenaltyBoxes[1] = Rect{MinX: f.Length - PenaltyBoxDepth, MaxX: f.Length, MinY: midY - PenaltyHalfWidth, MaxY: midY + PenaltyHalfWidth}

	return f
}

// Dimensions returns (length, width)
func (f *Field) Dimensions() (float64, float64) {
	return f.Length, f.Width
}

// Center returns the kickoff spot
func (f *Field) Center() r2.Vec {
	return r2.Vec{X: f.Length / 2, Y: f.Width / 2}
}

// Midline is the x coordinate of the halfway line
func (f *Field) Midline() float64 {
	return f.Length / 2
}

// IsInGoalArea reports whether p is inside either goal box
func (f *Field) IsInGoalArea(p r2.Vec) bool {
	_, ok := f.GoalBoxAt(p)
	return ok
}

// GoalBoxAt returns the team attacking the goal box that contains p.
// The right box is attacked by team A, the left box by team B.
func (f *Field) GoalBoxAt(p r2.Vec) (TeamSide, bool) {
	switch {
	case f.GoalBoxes[0].Contains(p):
		return TeamB, true
	case f.GoalBoxes[1].Contains(p):
		return TeamA, true
	}
	return "", false
}

// IsInPenaltyArea reports whether p is inside either penalty box
func (f *Field) IsInPenaltyArea(p r2.Vec) bool {
	return f.PenaltyBoxes[0].Contains(p) || f.PenaltyBoxes[1].Contains(p)
}

// IsInSidelineArea reports whether p is off the pitch (throw-in territory)
func (f *Field) IsInSidelineArea(p r2.Vec) bool {
	return p.X < 0 || p.X > f.Length || p.Y < 0 || p.Y > f.Width
}

// CrossedSideline reports whether p left the pitch over a touchline
func (f *Field) CrossedSideline(p r2.Vec) bool {
	return p.Y < 0 || p.Y > f.Width
}

// CrossedGoalLine reports whether p left the pitch over a goal line.
// The returned side is the team defending that end.
func (f *Field) CrossedGoalLine(p r2.Vec) (TeamSide, bool) {
	switch {
	case p.X < 0:
		return TeamA, true
	case p.X > f.Length:
		return TeamB, true
	}
	return "", false
}

// GoalFor returns the goal mouth a team shoots at
func (f *Field) GoalFor(team TeamSide) r2.Vec {
	if team == TeamA {
		return r2.Vec{X: f.Length, Y: f.Width / 2}
	}
	return r2.Vec{X: 0, Y: f.Width / 2}
}

// distance is the Euclidean distance between two points
func distance(a, b r2.Vec) float64 {
	return r2.Norm(r2.Sub(a, b))
}

// unit returns the unit vector of v, or the zero vector when v has no length
func unit(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}
