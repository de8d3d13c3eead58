package game

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// SubstitutionThreshold is the stamina below which a player is taken off
const SubstitutionThreshold = 20.0

// Score is the goal count of both sides
type Score struct {
	TeamA int `json:"teamA"`
	TeamB int `json:"teamB"`
}

// Get returns the goals of one side
func (s Score) Get(team TeamSide) int {
	if team == TeamA {
		return s.TeamA
	}
	return s.TeamB
}

// Winner returns the leading side, or false on a draw
func (s Score) Winner() (TeamSide, bool) {
	switch {
	case s.TeamA > s.TeamB:
		return TeamA, true
	case s.TeamB > s.TeamA:
		return TeamB, true
	}
	return "", false
}

// GameRules adjudicates a match: score, fouls and cards, offside, bounds and
// restarts. Restart handlers only emit events; they never move the ball.
type GameRules struct {
	field   *Field
	emitter Emitter

	score       map[TeamSide]int
	fouls       map[TeamSide]int
	yellowCards map[int]int
	redCards    map[int]bool

	bench  map[TeamSide][]*Player
	inGame map[TeamSide][]*Player
}

// NewGameRules creates a rules engine with zero scores. A nil emitter discards events.
func NewGameRules(field *Field, emitter Emitter) *GameRules {
	if emitter == nil {
		emitter = discardEmitter{}
	}
	return &GameRules{
		field:       field,
		emitter:     emitter,
		score:       map[TeamSide]int{TeamA: 0, TeamB: 0},
		fouls:       map[TeamSide]int{TeamA: 0, TeamB: 0},
		yellowCards: make(map[int]int),
		redCards:    make(map[int]bool),
		bench:       map[TeamSide][]*Player{TeamA: nil, TeamB: nil},
		inGame:      map[TeamSide][]*Player{TeamA: nil, TeamB: nil},
	}
}

// AwardGoal adds one goal to team
func (r *GameRules) AwardGoal(team TeamSide) error {
	if _, ok := r.score[team]; !ok {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, team)
	}
	r.score[team]++

	s := r.Score()
	r.emitter.Emit(EventTypeScore, 0, ScorePayload{Team: team, TeamA: s.TeamA, TeamB: s.TeamB})
	return nil
}

// Score returns the current score
func (r *GameRules) Score() Score {
	return Score{TeamA: r.score[TeamA], TeamB: r.score[TeamB]}
}

// Fouls returns the number of fouls committed by team
func (r *GameRules) Fouls(team TeamSide) int {
	return r.fouls[team]
}

// YellowCards returns the yellow cards shown to a player
func (r *GameRules) YellowCards(playerID int) int {
	return r.yellowCards[playerID]
}

// HasRedCard reports whether the player has been sent off
func (r *GameRules) HasRedCard(playerID int) bool {
	return r.redCards[playerID]
}

// CommitFoul books a foul by playerID of team at position. Every foul is a
// yellow card; the second one is a red card. The opponent is awarded a
// penalty inside a penalty box, a free kick anywhere else. The returned flag
// is true when this foul sent the player off.
func (r *GameRules) CommitFoul(team TeamSide, playerID int, position r2.Vec) (bool, error) {
	if _, ok := r.fouls[team]; !ok {
		return false, fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, team)
	}
	r.fouls[team]++
	r.emitter.Emit(EventTypeFoul, playerID, FoulPayload{
		PlayerID: playerID, Team: team, X: position.X, Y: position.Y, TeamFouls: r.fouls[team],
	})

	r.yellowCards[playerID]++
	yellows := r.yellowCards[playerID]
	r.emitter.Emit(EventTypeYellowCard, playerID, CardPayload{PlayerID: playerID, Team: team, Yellows: yellows})

	sentOff := false
	if yellows >= 2 && !r.redCards[playerID] {
		r.redCards[playerID] = true
		sentOff = true
		r.emitter.Emit(EventTypeRedCard, playerID, CardPayload{PlayerID: playerID, Team: team, Yellows: yellows})
	}

	if r.field.IsInPenaltyArea(position) {
		r.emitter.Emit(EventTypePenalty, 0, RestartPayload{Team: team.Opponent(), X: position.X, Y: position.Y})
	} else {
		r.HandleFreeKick(position, team.Opponent())
	}
	return sentOff, nil
}

// CheckOffside reports whether an attacker of team at playerPos is offside.
// Only positions past the midline count. The defending line is the deepest
// opposing player; with no opposing players nobody is offside.
func (r *GameRules) CheckOffside(playerPos, ballPos r2.Vec, team TeamSide, opposing []*Player) bool {
	line := defendingLine(team, opposing)
	switch team {
	case TeamA:
		if playerPos.X <= r.field.Midline() {
			return false
		}
		return playerPos.X > line && playerPos.X > ballPos.X
	case TeamB:
		if playerPos.X >= r.field.Midline() {
			return false
		}
		return playerPos.X < line && playerPos.X < ballPos.X
	}
	return false
}

// defendingLine is the max (team A attacking) or min (team B attacking) x of
// the opposing players. An empty roster yields a line nobody can be beyond.
func defendingLine(attacking TeamSide, opposing []*Player) float64 {
	if attacking == TeamA {
		if len(opposing) == 0 {
			return math.Inf(1)
		}
		line := math.Inf(-1)
		for _, p := range opposing {
			line = math.Max(line, p.Position.X)
		}
		return line
	}

	if len(opposing) == 0 {
		return math.Inf(-1)
	}
	line := math.Inf(1)
	for _, p := range opposing {
		line = math.Min(line, p.Position.X)
	}
	return line
}

// CheckOutOfBounds reports whether the ball has left the pitch
func (r *GameRules) CheckOutOfBounds(ballPos r2.Vec) bool {
	return r.field.IsInSidelineArea(ballPos)
}

// IsInSidelineArea reports whether p is off the pitch
func (r *GameRules) IsInSidelineArea(p r2.Vec) bool {
	return r.field.IsInSidelineArea(p)
}

// IsInGoalArea reports whether p is inside a goal box
func (r *GameRules) IsInGoalArea(p r2.Vec) bool {
	return r.field.IsInGoalArea(p)
}

// IsInPenaltyArea reports whether p is inside a penalty box
func (r *GameRules) IsInPenaltyArea(p r2.Vec) bool {
	return r.field.IsInPenaltyArea(p)
}

// HandleThrowIn awards a throw-in to team when the ball is off the pitch
func (r *GameRules) HandleThrowIn(ballPos r2.Vec, team TeamSide) bool {
	if !r.field.IsInSidelineArea(ballPos) {
		return false
	}
	r.emitter.Emit(EventTypeThrowIn, 0, RestartPayload{Team: team, X: ballPos.X, Y: ballPos.Y})
	return true
}

// HandleCornerKick awards a corner to the attacking side when the ball left
// over a goal line off a defender. lastTouch is the side that touched it last.
func (r *GameRules) HandleCornerKick(ballPos r2.Vec, lastTouch TeamSide) bool {
	defending, ok := r.field.CrossedGoalLine(ballPos)
	if !ok || lastTouch != defending {
		return false
	}
	r.emitter.Emit(EventTypeCornerKick, 0, RestartPayload{Team: defending.Opponent(), X: ballPos.X, Y: ballPos.Y})
	return true
}

// HandleGoalKick awards a goal kick to the defending side when the attackers
// put the ball over the goal line
func (r *GameRules) HandleGoalKick(ballPos r2.Vec, lastTouch TeamSide) bool {
	defending, ok := r.field.CrossedGoalLine(ballPos)
	if !ok || lastTouch == defending {
		return false
	}
	r.emitter.Emit(EventTypeGoalKick, 0, RestartPayload{Team: defending, X: ballPos.X, Y: ballPos.Y})
	return true
}

// HandleFreeKick awards a free kick to team at the foul position
func (r *GameRules) HandleFreeKick(foulPos r2.Vec, team TeamSide) {
	r.emitter.Emit(EventTypeFreeKick, 0, RestartPayload{Team: team, X: foulPos.X, Y: foulPos.Y})
}

// SetRoster registers the players on the pitch and on the bench for team
func (r *GameRules) SetRoster(team TeamSide, inGame, bench []*Player) error {
	if !team.Valid() {
		return fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, team)
	}
	r.inGame[team] = slices.Clone(inGame)
	r.bench[team] = slices.Clone(bench)
	return nil
}

// InGame returns the players of team currently on the pitch
func (r *GameRules) InGame(team TeamSide) []*Player {
	return slices.Clone(r.inGame[team])
}

// Bench returns the substitutes team has left
func (r *GameRules) Bench(team TeamSide) []*Player {
	return slices.Clone(r.bench[team])
}

// HandleSubstitution replaces a tired player with the last substitute on
// the bench. It returns the incoming player, or nil when no change was made.
func (r *GameRules) HandleSubstitution(player *Player) *Player {
	team := player.Team
	if player.Stamina >= SubstitutionThreshold || len(r.bench[team]) == 0 {
		return nil
	}
	idx := slices.Index(r.inGame[team], player)
	if idx < 0 {
		return nil
	}

	bench := r.bench[team]
	incoming := bench[len(bench)-1]
	r.bench[team] = bench[:len(bench)-1]
	r.inGame[team][idx] = incoming

	r.emitter.Emit(EventTypeSubstitution, player.ID, SubstitutionPayload{
		Team: team, PlayerOut: player.ID, PlayerIn: incoming.ID,
	})
	return incoming
}

// SendOff removes a red-carded player from the pitch
func (r *GameRules) SendOff(player *Player) {
	player.SentOff = true
	team := player.Team
	if idx := slices.Index(r.inGame[team], player); idx >= 0 {
		r.inGame[team] = slices.Delete(r.inGame[team], idx, idx+1)
	}
}
