package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateChemistry(t *testing.T) {
	a := testPlayer(1, TeamA, RoleDefender, 0, 0)
	b := testPlayer(2, TeamA, RoleDefender, 0, 0)
	a.Traits = UniformTraits(1)
	b.Traits = UniformTraits(0.5)

	assert.InDelta(t, 0.5, CalculateChemistry(a, b), 1e-9)

	b.Traits = UniformTraits(0)
	assert.Zero(t, CalculateChemistry(a, b))
}

func TestChemistryIsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	roster := make([]*Player, 6)
	for i := range roster {
		roster[i] = testPlayer(i+1, TeamA, RoleMidfielder, 0, 0)
		roster[i].Traits = RandomTraits(rng)
	}
	m := NewChemistryMatrix(roster)
	require.Equal(t, 6, m.Size())

	for _, a := range roster {
		self, err := m.Get(a.ID, a.ID)
		require.NoError(t, err)
		assert.Zero(t, self)

		for _, b := range roster {
			ab, err := m.Get(a.ID, b.ID)
			require.NoError(t, err)
			ba, err := m.Get(b.ID, a.ID)
			require.NoError(t, err)
			assert.Equal(t, ab, ba)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
	}

	_, err := m.Get(1, 42)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestUpdateChemistry(t *testing.T) {
	a := testPlayer(1, TeamA, RoleDefender, 0, 0)
	b := testPlayer(2, TeamA, RoleDefender, 0, 0)
	c := testPlayer(3, TeamA, RoleDefender, 0, 0)
	a.Traits = UniformTraits(1)
	b.Traits = UniformTraits(0.2)
	c.Traits = UniformTraits(0.6)

	a.UpdateChemistry([]*Player{a, b, c})
	assert.InDelta(t, 0.4, a.Chemistry, 1e-9)

	a.UpdateChemistry([]*Player{a})
	assert.Zero(t, a.Chemistry, "no teammates")
}

func TestTraits(t *testing.T) {
	var tr Traits
	require.NoError(t, tr.Set("Aggression", 1.7))
	v, err := tr.Lookup("Aggression")
	require.NoError(t, err)
	assert.Equal(t, 1.0, v, "values are clamped")

	_, err = tr.Lookup("aggression")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, tr.Map(), int(NumTraits))
}
