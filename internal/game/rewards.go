package game

import (
	"fmt"
	"sync"

	"pitch-sim/internal/game/ranking"
)

// Reward amounts
const (
	RewardPass = 10.0
	RewardShot = 30.0
	RewardGoal = 100.0
	RewardWin  = 50.0 // per player of the winning side
	RewardDraw = 10.0 // per player of both sides
)

// Standing is one row of the reward table
type Standing struct {
	Rank     int      `json:"rank"`
	PlayerID int      `json:"playerId"`
	Team     TeamSide `json:"team"`
	Reward   float64  `json:"reward"`
}

// Rewards keeps running reward sums per player and per team. It is a side
// channel only; nothing in the decision policy reads it.
type Rewards struct {
	mu     sync.RWMutex
	teams  map[int]TeamSide
	totals map[TeamSide]float64
	board  *ranking.SkipList
}

// NewRewards creates an empty reward table
func NewRewards() *Rewards {
	return &Rewards{
		teams:  make(map[int]TeamSide),
		totals: map[TeamSide]float64{TeamA: 0, TeamB: 0},
		board:  ranking.New(),
	}
}

// Register enters a player with zero reward. Registering twice is a no-op.
func (r *Rewards) Register(p *Player) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.teams[p.ID]; ok {
		return
	}
	r.teams[p.ID] = p.Team
	r.board.Set(p.ID, 0)
}

// Add credits amount to a registered player and their team
func (r *Rewards) Add(playerID int, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	team, ok := r.teams[playerID]
	if !ok {
		return fmt.Errorf("%w: player %d has no reward entry", ErrInvalidArgument, playerID)
	}
	r.board.Add(playerID, amount)
	r.totals[team] += amount
	return nil
}

// Player returns a player's reward
func (r *Rewards) Player(playerID int) (float64, bool) {
	return r.board.Score(playerID)
}

// Team returns the summed reward of a side
func (r *Rewards) Team(team TeamSide) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.totals[team]
}

// Rank returns a player's 1-based standing, 0 if unknown
func (r *Rewards) Rank(playerID int) int {
	return r.board.Rank(playerID)
}

// Standings returns the top n rows, highest reward first (n <= 0 for all).
// Equal rewards are ordered by player ID.
func (r *Rewards) Standings(n int) []Standing {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n <= 0 {
		n = r.board.Len()
	}
	entries := r.board.Range(1, n)
	out := make([]Standing, len(entries))
	for i, e := range entries {
		out[i] = Standing{Rank: i + 1, PlayerID: e.Key, Team: r.teams[e.Key], Reward: e.Score}
	}
	return out
}

// Settle pays the end-of-match rewards to every player who took part
func (r *Rewards) Settle(score Score) {
	r.mu.RLock()
	ids := make([]int, 0, len(r.teams))
	teams := make([]TeamSide, 0, len(r.teams))
	for id, team := range r.teams {
		ids = append(ids, id)
		teams = append(teams, team)
	}
	r.mu.RUnlock()

	winner, decided := score.Winner()
	for i, id := range ids {
		switch {
		case !decided:
			r.Add(id, RewardDraw)
		case teams[i] == winner:
			r.Add(id, RewardWin)
		}
	}
}
