package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewPlayerSkill(t *testing.T) {
	tests := []struct {
		name  string
		skill float64
		want  float64
	}{
		{"unset", 0, DefaultSkill},
		{"in range", 0.35, 0.35},
		{"upper bound", 1, 1},
		{"negative", -0.2, DefaultSkill},
		{"above one", 1.5, DefaultSkill},
		{"NaN", math.NaN(), DefaultSkill},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPlayer(1, TeamA, r2.Vec{}, PlayerOptions{Skill: tt.skill})
			assert.Equal(t, tt.want, p.Skill)
		})
	}
}

func TestNewPlayerDefaults(t *testing.T) {
	p := NewPlayer(7, TeamB, r2.Vec{X: 3, Y: 4}, PlayerOptions{Role: RoleDefender})

	assert.Equal(t, MaxStamina, p.Stamina)
	assert.Equal(t, UniformTraits(0.5), p.Traits)
	assert.Equal(t, r2.Vec{}, p.Velocity)
	assert.Equal(t, RoleDefender, p.Role)
	assert.False(t, p.SentOff)
}
