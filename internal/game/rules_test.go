package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestAwardGoal(t *testing.T) {
	p := newPitch()

	require.NoError(t, p.rules.AwardGoal(TeamA))
	require.NoError(t, p.rules.AwardGoal(TeamB))
	require.NoError(t, p.rules.AwardGoal(TeamA))

	assert.Equal(t, Score{TeamA: 2, TeamB: 1}, p.rules.Score())
	last := p.rec.events[len(p.rec.events)-1].Payload.(ScorePayload)
	assert.Equal(t, ScorePayload{Team: TeamA, TeamA: 2, TeamB: 1}, last)

	err := p.rules.AwardGoal("team_c")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, Score{TeamA: 2, TeamB: 1}, p.rules.Score(), "score untouched")
	assert.Len(t, p.rec.events, 3)
}

func TestScoreWinner(t *testing.T) {
	w, ok := Score{TeamA: 2, TeamB: 1}.Winner()
	assert.True(t, ok)
	assert.Equal(t, TeamA, w)

	w, ok = Score{TeamA: 0, TeamB: 3}.Winner()
	assert.True(t, ok)
	assert.Equal(t, TeamB, w)

	_, ok = Score{TeamA: 1, TeamB: 1}.Winner()
	assert.False(t, ok)
}

func TestCommitFoul(t *testing.T) {
	t.Run("first foul is a yellow and a free kick", func(t *testing.T) {
		p := newPitch()
		sentOff, err := p.rules.CommitFoul(TeamA, 4, r2.Vec{X: 50, Y: 34})

		require.NoError(t, err)
		assert.False(t, sentOff)
		assert.Equal(t, 1, p.rules.Fouls(TeamA))
		assert.Equal(t, 1, p.rules.YellowCards(4))
		assert.Equal(t, []EventType{EventTypeFoul, EventTypeYellowCard, EventTypeFreeKick}, p.rec.types())
		assert.Equal(t, TeamB, p.rec.events[2].Payload.(RestartPayload).Team)
	})

	t.Run("second foul is a red", func(t *testing.T) {
		p := newPitch()
		_, err := p.rules.CommitFoul(TeamB, 15, r2.Vec{X: 50, Y: 34})
		require.NoError(t, err)
		sentOff, err := p.rules.CommitFoul(TeamB, 15, r2.Vec{X: 60, Y: 20})
		require.NoError(t, err)

		assert.True(t, sentOff)
		assert.True(t, p.rules.HasRedCard(15))
		assert.Equal(t, 2, p.rules.Fouls(TeamB))
		assert.Contains(t, p.rec.types(), EventTypeRedCard)

		// A third booking does not show another red
		sentOff, err = p.rules.CommitFoul(TeamB, 15, r2.Vec{X: 60, Y: 20})
		require.NoError(t, err)
		assert.False(t, sentOff)
	})

	t.Run("inside the box is a penalty", func(t *testing.T) {
		p := newPitch()
		_, err := p.rules.CommitFoul(TeamA, 2, r2.Vec{X: 10, Y: 34})
		require.NoError(t, err)

		assert.Equal(t, []EventType{EventTypeFoul, EventTypeYellowCard, EventTypePenalty}, p.rec.types())
		assert.Equal(t, TeamB, p.rec.events[2].Payload.(RestartPayload).Team)
	})

	t.Run("unknown team", func(t *testing.T) {
		p := newPitch()
		_, err := p.rules.CommitFoul("team_c", 2, r2.Vec{})
		assert.ErrorIs(t, err, ErrInvalidArgument)
		assert.Empty(t, p.rec.events)
		assert.Zero(t, p.rules.YellowCards(2))
	})
}

func TestCheckOffside(t *testing.T) {
	rules := NewGameRules(NewField(), nil)
	defenders := []*Player{
		testPlayer(20, TeamB, RoleDefender, 70, 30),
		testPlayer(21, TeamB, RoleDefender, 80, 40),
	}
	attackers := []*Player{
		testPlayer(1, TeamA, RoleDefender, 30, 30),
		testPlayer(2, TeamA, RoleDefender, 20, 40),
	}
	ball := r2.Vec{X: 52.5, Y: 34}

	tests := []struct {
		name     string
		pos      r2.Vec
		ball     r2.Vec
		team     TeamSide
		opposing []*Player
		want     bool
	}{
		{"beyond the last defender", r2.Vec{X: 85, Y: 34}, ball, TeamA, defenders, true},
		{"level with the line", r2.Vec{X: 80, Y: 34}, ball, TeamA, defenders, false},
		{"behind the ball", r2.Vec{X: 85, Y: 34}, r2.Vec{X: 90, Y: 34}, TeamA, defenders, false},
		{"own half", r2.Vec{X: 50, Y: 34}, r2.Vec{X: 10, Y: 34}, TeamA, []*Player{}, false},
		{"no opponents", r2.Vec{X: 100, Y: 34}, ball, TeamA, nil, false},
		{"team B beyond the line", r2.Vec{X: 15, Y: 34}, ball, TeamB, attackers, true},
		{"team B in its own half", r2.Vec{X: 60, Y: 34}, ball, TeamB, attackers, false},
		{"team B no opponents", r2.Vec{X: 5, Y: 34}, ball, TeamB, nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.CheckOffside(tt.pos, tt.ball, tt.team, tt.opposing))
		})
	}
}

func TestRestarts(t *testing.T) {
	t.Run("throw-in", func(t *testing.T) {
		p := newPitch()
		assert.False(t, p.rules.HandleThrowIn(r2.Vec{X: 50, Y: 30}, TeamA))
		assert.True(t, p.rules.HandleThrowIn(r2.Vec{X: 50, Y: 70}, TeamA))
		assert.Equal(t, []EventType{EventTypeThrowIn}, p.rec.types())
	})

	t.Run("corner off a defender", func(t *testing.T) {
		p := newPitch()
		// ball over team B's goal line, last touched by team B
		assert.True(t, p.rules.HandleCornerKick(r2.Vec{X: 106, Y: 10}, TeamB))
		assert.False(t, p.rules.HandleGoalKick(r2.Vec{X: 106, Y: 10}, TeamB))
		assert.Equal(t, TeamA, p.rec.events[0].Payload.(RestartPayload).Team)
	})

	t.Run("goal kick off an attacker", func(t *testing.T) {
		p := newPitch()
		assert.False(t, p.rules.HandleCornerKick(r2.Vec{X: -1, Y: 10}, TeamB))
		assert.True(t, p.rules.HandleGoalKick(r2.Vec{X: -1, Y: 10}, TeamB))
		assert.Equal(t, TeamA, p.rec.events[0].Payload.(RestartPayload).Team)
	})

	t.Run("ball still in play", func(t *testing.T) {
		p := newPitch()
		assert.False(t, p.rules.HandleCornerKick(r2.Vec{X: 50, Y: 10}, TeamA))
		assert.False(t, p.rules.HandleGoalKick(r2.Vec{X: 50, Y: 10}, TeamA))
		assert.Empty(t, p.rec.events)
	})
}

func TestSubstitution(t *testing.T) {
	p := newPitch()
	tired := testPlayer(1, TeamA, RoleDefender, 10, 10)
	fresh := testPlayer(2, TeamA, RoleDefender, 20, 10)
	sub1 := testPlayer(10, TeamA, RoleMidfielder, 52, -2)
	sub2 := testPlayer(11, TeamA, RoleMidfielder, 52, -2)
	require.NoError(t, p.rules.SetRoster(TeamA, []*Player{tired, fresh}, []*Player{sub1, sub2}))

	assert.Nil(t, p.rules.HandleSubstitution(fresh))

	tired.Stamina = SubstitutionThreshold - 1
	in := p.rules.HandleSubstitution(tired)

	require.NotNil(t, in)
	assert.Equal(t, sub2.ID, in.ID, "the last bench player comes on")
	assert.Equal(t, []*Player{sub2, fresh}, p.rules.InGame(TeamA))
	assert.Equal(t, []*Player{sub1}, p.rules.Bench(TeamA))
	payload := p.rec.events[0].Payload.(SubstitutionPayload)
	assert.Equal(t, SubstitutionPayload{Team: TeamA, PlayerOut: 1, PlayerIn: 11}, payload)

	// a player no longer on the pitch cannot be replaced again
	assert.Nil(t, p.rules.HandleSubstitution(tired))

	assert.ErrorIs(t, p.rules.SetRoster("team_c", nil, nil), ErrInvalidArgument)
}

func TestSubstitutionWithEmptyBench(t *testing.T) {
	p := newPitch()
	tired := testPlayer(1, TeamB, RoleDefender, 10, 10)
	tired.Stamina = 1
	require.NoError(t, p.rules.SetRoster(TeamB, []*Player{tired}, nil))

	assert.Nil(t, p.rules.HandleSubstitution(tired))
	assert.Empty(t, p.rec.events)
}

func TestSendOff(t *testing.T) {
	p := newPitch()
	a := testPlayer(1, TeamA, RoleDefender, 10, 10)
	b := testPlayer(2, TeamA, RoleDefender, 20, 10)
	require.NoError(t, p.rules.SetRoster(TeamA, []*Player{a, b}, nil))

	p.rules.SendOff(a)

	assert.True(t, a.SentOff)
	assert.Equal(t, []*Player{b}, p.rules.InGame(TeamA))
}
