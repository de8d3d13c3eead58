package game

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Decision tuning
const (
	RestThreshold          = 10.0 // below this a player always rests
	AttackerRestRefusal    = 30.0 // attackers above this never rest
	PassForce              = 10.0
	ShotForce              = 20.0
	PassMinStamina         = 5.0
	DribbleMinStamina      = 10.0
	ShotMinStamina         = 15.0
	TackleSearchRadius     = 5.0
	DefaultFoulProbability = 0.2

	chemistryWeight = 0.6
	proximityWeight = 0.4
	proximityEps    = 1e-5
)

var (
	goalkeeperAnchorX   = 5.0
	attackerAnchor      = r2.Vec{X: 52.5, Y: 34}
	dribbleAcceleration = r2.Vec{X: 0.1, Y: 0.05}
	defenderZone        = Rect{MinX: 0, MaxX: 40, MinY: 0, MaxY: 68}
	midfieldZone        = Rect{MinX: 40, MaxX: 70, MinY: 0, MaxY: 68}
)

// ActionTag is the outcome of one decision branch
type ActionTag string

const (
	TagRest    ActionTag = "rest"
	TagMove    ActionTag = "move"
	TagPass    ActionTag = "pass"
	TagTackle  ActionTag = "tackle"
	TagDribble ActionTag = "dribble"
	TagShoot   ActionTag = "shoot"
)

// branch selects tag when the decision draw is below the threshold
type branch struct {
	below float64
	tag   ActionTag
}

// decisionTables are cumulative per-role probability tables
var decisionTables = map[Role][]branch{
	RoleGoalkeeper: {{0.7, TagMove}, {1, TagPass}},
	RoleDefender:   {{0.4, TagMove}, {0.8, TagPass}, {1, TagTackle}},
	RoleMidfielder: {{0.3, TagMove}, {0.6, TagPass}, {1, TagDribble}},
	RoleAttacker:   {{0.2, TagDribble}, {0.5, TagPass}, {0.8, TagShoot}, {1, TagMove}},
}

// pickAction maps a draw in [0,1) to the first branch whose threshold exceeds it
func pickAction(table []branch, p float64) ActionTag {
	for _, b := range table {
		if p < b.below {
			return b.tag
		}
	}
	if len(table) == 0 {
		return TagRest
	}
	return table[len(table)-1].tag
}

// Outcome reports what a decision did
type Outcome struct {
	Tag      ActionTag
	Executed bool // false when the branch was a no-op
	TargetID int  // pass receiver or tackled opponent
	Goal     bool
	Offside  bool
	Foul     bool
	SentOff  bool // the acting player was shown a second yellow
}

// AgentOptions wires a TeamAgent to the match
type AgentOptions struct {
	Field           *Field
	Rules           *GameRules
	Ball            *Ball
	Rand            Rand
	Emitter         Emitter
	FoulProbability float64 // chance that a failed tackle is a foul
	Policy          *StaminaPolicy
}

// TeamAgent decides and executes one action per player per tick for one side
type TeamAgent struct {
	team      TeamSide
	players   []*Player
	opponents *TeamAgent
	chemistry *ChemistryMatrix

	field   *Field
	rules   *GameRules
	ball    *Ball
	rng     Rand
	emitter Emitter

	foulProbability float64
	policy          StaminaPolicy
}

// NewTeamAgent builds the agent for team and seeds its chemistry matrix.
// Every roster player must belong to team and have a known role.
func NewTeamAgent(team TeamSide, roster []*Player, opts AgentOptions) (*TeamAgent, error) {
	if !team.Valid() {
		return nil, fmt.Errorf("%w: unknown team %q", ErrInvalidArgument, team)
	}
	for _, p := range roster {
		if p.Team != team {
			return nil, fmt.Errorf("%w: player %d plays for %s, not %s", ErrInvalidArgument, p.ID, p.Team, team)
		}
		if _, ok := decisionTables[p.Role]; !ok {
			return nil, fmt.Errorf("%w: player %d has role %q", ErrInvalidArgument, p.ID, p.Role)
		}
	}
	if opts.Field == nil || opts.Ball == nil || opts.Rand == nil {
		return nil, fmt.Errorf("%w: agent needs a field, a ball and a random source", ErrInvalidArgument)
	}

	emitter := opts.Emitter
	if emitter == nil {
		emitter = discardEmitter{}
	}
	rules := opts.Rules
	if rules == nil {
		rules = NewGameRules(opts.Field, emitter)
	}
	policy := DefaultStaminaPolicy()
	if opts.Policy != nil {
		policy = *opts.Policy
	}

	a := &TeamAgent{
		team:            team,
		players:         slices.Clone(roster),
		field:           opts.Field,
		rules:           rules,
		ball:            opts.Ball,
		rng:             opts.Rand,
		emitter:         emitter,
		foulProbability: opts.FoulProbability,
		policy:          policy,
	}
	a.refreshChemistry()
	return a, nil
}

// Team returns the side the agent plays for
func (a *TeamAgent) Team() TeamSide {
	return a.team
}

// Players returns the current roster in processing order
func (a *TeamAgent) Players() []*Player {
	return slices.Clone(a.players)
}

// SetOpponents links the agent to the other side's roster
func (a *TeamAgent) SetOpponents(other *TeamAgent) {
	a.opponents = other
}

func (a *TeamAgent) opposingPlayers() []*Player {
	if a.opponents == nil {
		return nil
	}
	return a.opponents.players
}

// Chemistry returns the seeded chemistry between two roster members
func (a *TeamAgent) Chemistry(playerID, teammateID int) (float64, error) {
	return a.chemistry.Get(playerID, teammateID)
}

// RemovePlayer takes a player off the roster and recomputes chemistry
func (a *TeamAgent) RemovePlayer(playerID int) error {
	idx := slices.IndexFunc(a.players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return fmt.Errorf("%w: player %d is not on the %s roster", ErrInvalidArgument, playerID, a.team)
	}
	a.players = slices.Delete(a.players, idx, idx+1)
	a.refreshChemistry()
	return nil
}

// ReplacePlayer puts in into the roster slot of playerID and recomputes chemistry
func (a *TeamAgent) ReplacePlayer(playerID int, in *Player) error {
	idx := slices.IndexFunc(a.players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return fmt.Errorf("%w: player %d is not on the %s roster", ErrInvalidArgument, playerID, a.team)
	}
	if in.Team != a.team {
		return fmt.Errorf("%w: player %d plays for %s", ErrInvalidArgument, in.ID, in.Team)
	}
	a.players[idx] = in
	a.refreshChemistry()
	return nil
}

func (a *TeamAgent) refreshChemistry() {
	a.chemistry = NewChemistryMatrix(a.players)
	for _, p := range a.players {
		p.UpdateChemistry(a.players)
	}
}

// Decide chooses and executes one action for player. Exhausted players
// rest without consuming a draw; everyone else draws once and follows
// their role's table.
func (a *TeamAgent) Decide(player *Player, dt float64) Outcome {
	if player.Stamina < RestThreshold {
		return a.rest(player)
	}

	p := a.rng.Float64()
	switch tag := pickAction(decisionTables[player.Role], p); tag {
	case TagMove:
		return a.move(player, dt)
	case TagPass:
		return a.attemptPass(player)
	case TagTackle:
		return a.attemptTackle(player)
	case TagDribble:
		return a.dribble(player, dt)
	case TagShoot:
		return a.attemptShot(player)
	default:
		return a.rest(player)
	}
}

func (a *TeamAgent) rest(player *Player) Outcome {
	if player.Role == RoleAttacker && player.Stamina > AttackerRestRefusal {
		return Outcome{Tag: TagRest}
	}
	player.Stamina = a.policy.Recover(player.Stamina, a.policy.RestRecovery)
	a.emitter.Emit(EventTypeRest, player.ID, RestPayload{PlayerID: player.ID, Stamina: player.Stamina})
	return Outcome{Tag: TagRest, Executed: true}
}

// moveTarget returns the role's destination. Random targets draw x, then y.
func (a *TeamAgent) moveTarget(player *Player) r2.Vec {
	switch player.Role {
	case RoleGoalkeeper:
		return r2.Vec{X: goalkeeperAnchorX, Y: player.Position.Y}
	case RoleDefender:
		return randomPoint(a.rng, defenderZone)
	case RoleMidfielder:
		return randomPoint(a.rng, midfieldZone)
	default:
		return attackerAnchor
	}
}

func randomPoint(rng Rand, zone Rect) r2.Vec {
	x := uniform(rng, zone.MinX, zone.MaxX)
	y := uniform(rng, zone.MinY, zone.MaxY)
	return r2.Vec{X: x, Y: y}
}

func (a *TeamAgent) move(player *Player, dt float64) Outcome {
	player.MoveToPosition(a.moveTarget(player), dt)
	return Outcome{Tag: TagMove, Executed: true}
}

// passScore weighs chemistry against proximity
func passScore(chemistry, dist float64) float64 {
	return chemistryWeight*chemistry + proximityWeight*(1/(dist+proximityEps))
}

// selectPassTarget returns the best scoring teammate. Ties keep the first
// candidate in roster order.
func (a *TeamAgent) selectPassTarget(player *Player) *Player {
	var target *Player
	best := math.Inf(-1)
	for _, mate := range a.players {
		if mate.ID == player.ID {
			continue
		}
		chem, err := a.chemistry.Get(player.ID, mate.ID)
		if err != nil {
			continue
		}
		if score := passScore(chem, player.DistanceTo(mate)); target == nil || score > best {
			target, best = mate, score
		}
	}
	return target
}

func (a *TeamAgent) attemptPass(player *Player) Outcome {
	out := Outcome{Tag: TagPass}
	target := a.selectPassTarget(player)
	if target == nil || player.Stamina <= PassMinStamina {
		return out
	}

	ballPos := a.ball.Position
	player.PassBall(a.ball, target.Position, PassForce)
	player.Stamina = a.policy.Spend(player.Stamina, a.policy.PassCost)
	a.emitter.Emit(EventTypePass, player.ID, PassPayload{
		PlayerID: player.ID, TargetID: target.ID, X: target.Position.X, Y: target.Position.Y,
	})
	out.Executed = true
	out.TargetID = target.ID

	opposing := a.opposingPlayers()
	if a.rules.CheckOffside(target.Position, ballPos, a.team, opposing) {
		a.emitter.Emit(EventTypeOffside, target.ID, OffsidePayload{
			PlayerID: target.ID, Team: a.team, X: target.Position.X,
			DefendingLine: defendingLine(a.team, opposing),
		})
		a.rules.HandleFreeKick(target.Position, a.team.Opponent())
		out.Offside = true
	}
	return out
}

// attemptTackle goes for the first opponent in roster order within
// TackleSearchRadius. A failed tackle may be a foul.
func (a *TeamAgent) attemptTackle(player *Player) Outcome {
	out := Outcome{Tag: TagTackle}
	var target *Player
	for _, opp := range a.opposingPlayers() {
		if player.DistanceTo(opp) < TackleSearchRadius {
			target = opp
			break
		}
	}
	if target == nil {
		return out
	}

	success := player.Tackle(target, a.rng)
	a.emitter.Emit(EventTypeTackle, player.ID, TacklePayload{
		PlayerID: player.ID, OpponentID: target.ID, Success: success,
	})
	out.Executed = true
	out.TargetID = target.ID

	if !success && a.foulProbability > 0 && a.rng.Float64() < a.foulProbability {
		sentOff, err := a.rules.CommitFoul(a.team, player.ID, player.Position)
		if err == nil {
			out.Foul = true
			out.SentOff = sentOff
		}
	}
	return out
}

func (a *TeamAgent) dribble(player *Player, dt float64) Outcome {
	if player.Stamina <= DribbleMinStamina {
		return Outcome{Tag: TagDribble}
	}
	player.Dribble(dribbleAcceleration, dt)
	player.Stamina = a.policy.Spend(player.Stamina, a.policy.DribbleCost)
	a.emitter.Emit(EventTypeDribble, player.ID, DribblePayload{
		PlayerID: player.ID, X: player.Position.X, Y: player.Position.Y,
	})
	return Outcome{Tag: TagDribble, Executed: true}
}

// ShotProbability is skill*0.5 + (100/distance)*0.2. It is not clamped and
// exceeds 1 close to goal.
func ShotProbability(skill, distanceToGoal float64) float64 {
	return skill*0.5 + (100/distanceToGoal)*0.2
}

// attemptShot either scores outright (ball untouched) or kicks the ball at
// goal. The shot's stamina cost applies either way.
func (a *TeamAgent) attemptShot(player *Player) Outcome {
	out := Outcome{Tag: TagShoot}
	if player.Stamina <= ShotMinStamina {
		return out
	}

	goal := a.field.GoalFor(a.team)
	dist := distance(player.Position, goal)
	prob := ShotProbability(player.Skill, dist)

	if a.rng.Float64() < prob {
		a.emitter.Emit(EventTypeGoal, player.ID, GoalPayload{PlayerID: player.ID, Team: a.team, Method: "shot"})
		if err := a.rules.AwardGoal(a.team); err == nil {
			out.Goal = true
		}
	} else {
		player.Shoot(a.ball, goal, ShotForce)
		a.emitter.Emit(EventTypeShot, player.ID, ShotPayload{
			PlayerID: player.ID, Team: a.team, Distance: dist, Probability: prob,
		})
	}
	player.Stamina = a.policy.Spend(player.Stamina, a.policy.ShotCost)
	out.Executed = true
	return out
}
