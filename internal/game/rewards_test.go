package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRewardTable(t *testing.T) *Rewards {
	t.Helper()
	r := NewRewards()
	for id := 1; id <= 4; id++ {
		team := TeamA
		if id > 2 {
			team = TeamB
		}
		r.Register(testPlayer(id, team, RoleMidfielder, 0, 0))
	}
	return r
}

func TestRewardsAdd(t *testing.T) {
	r := newRewardTable(t)

	require.NoError(t, r.Add(3, RewardPass))
	require.NoError(t, r.Add(1, RewardShot+RewardGoal))
	require.NoError(t, r.Add(3, RewardShot))

	v, ok := r.Player(1)
	assert.True(t, ok)
	assert.Equal(t, 130.0, v)
	assert.Equal(t, 130.0, r.Team(TeamA))
	assert.Equal(t, 40.0, r.Team(TeamB))
	assert.Equal(t, 1, r.Rank(1))
	assert.Equal(t, 2, r.Rank(3))

	err := r.Add(99, RewardPass)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRewardsRegisterTwice(t *testing.T) {
	r := newRewardTable(t)
	require.NoError(t, r.Add(2, 10))

	r.Register(testPlayer(2, TeamA, RoleDefender, 0, 0))

	v, _ := r.Player(2)
	assert.Equal(t, 10.0, v, "re-registering keeps the running total")
}

func TestStandings(t *testing.T) {
	r := newRewardTable(t)
	require.NoError(t, r.Add(4, 50))
	require.NoError(t, r.Add(2, 20))

	all := r.Standings(0)
	require.Len(t, all, 4)
	assert.Equal(t, Standing{Rank: 1, PlayerID: 4, Team: TeamB, Reward: 50}, all[0])
	assert.Equal(t, Standing{Rank: 2, PlayerID: 2, Team: TeamA, Reward: 20}, all[1])
	// the scoreless players follow in ID order
	assert.Equal(t, 1, all[2].PlayerID)
	assert.Equal(t, 3, all[3].PlayerID)

	assert.Len(t, r.Standings(2), 2)
}

func TestSettle(t *testing.T) {
	t.Run("win", func(t *testing.T) {
		r := newRewardTable(t)
		r.Settle(Score{TeamA: 0, TeamB: 2})

		assert.Equal(t, 0.0, r.Team(TeamA))
		assert.Equal(t, 2*RewardWin, r.Team(TeamB))
	})

	t.Run("draw", func(t *testing.T) {
		r := newRewardTable(t)
		r.Settle(Score{TeamA: 1, TeamB: 1})

		assert.Equal(t, 2*RewardDraw, r.Team(TeamA))
		assert.Equal(t, 2*RewardDraw, r.Team(TeamB))
		for _, s := range r.Standings(0) {
			assert.Equal(t, RewardDraw, s.Reward)
		}
	})
}
