package game

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r2"
)

// goalKickDistance is how far from its goal line a goal kick is taken
const goalKickDistance = 11.0

// EngineConfig configures one match
type EngineConfig struct {
	HalfDuration    float64 // minutes
	TickSize        float64 // seconds per tick
	Seed            int64   // 0 picks a seed from the clock
	PlayersPerSide  int
	BenchSize       int
	Formation       string
	Formations      Formations // nil uses the embedded tables
	FoulProbability float64
	Policy          *StaminaPolicy
	Logger          zerolog.Logger

	// Rand overrides the seeded source, for tests
	Rand Rand
}

// DefaultEngineConfig returns a full 2x45 minute, 11-a-side match with one second ticks
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		HalfDuration:    45,
		TickSize:        1.0,
		PlayersPerSide:  11,
		Formation:       DefaultFormation,
		FoulProbability: DefaultFoulProbability,
		Logger:          zerolog.Nop(),
	}
}

// StepsPerHalf is the number of ticks in one half
func (c EngineConfig) StepsPerHalf() int {
	return int(c.HalfDuration * 60 / c.TickSize)
}

// TickObserver is called after every tick with the new snapshot
type TickObserver func(snap MatchSnapshot, took time.Duration)

// Engine is the simulation clock. It owns the field, the ball, the rules and
// both team agents, and advances the match one tick at a time.
type Engine struct {
	mu  sync.RWMutex
	log zerolog.Logger

	matchID string
	seed    int64
	rng     Rand
	policy  StaminaPolicy

	field   *Field
	ball    *Ball
	rules   *GameRules
	agents  map[TeamSide]*TeamAgent
	players map[int]*Player // everyone, bench included
	events  *EventLog
	rewards *Rewards

	dt           float64
	stepsPerHalf int
	phase        Phase
	half         int
	step         int

	snapshotPool *SnapshotPool
	observers    []TickObserver

	running  bool
	stopped  bool
	ticker   *time.Ticker
	stopChan chan struct{}
	done     chan struct{}
}

// NewEngine sets up both teams and returns an engine ready for its first tick
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.TickSize <= 0 || cfg.HalfDuration <= 0 {
		return nil, fmt.Errorf("%w: half duration and tick size must be positive", ErrInvalidArgument)
	}
	if cfg.StepsPerHalf() < 1 {
		return nil, fmt.Errorf("%w: a half of %.2f minutes is shorter than one %.2fs tick",
			ErrInvalidArgument, cfg.HalfDuration, cfg.TickSize)
	}
	if cfg.PlayersPerSide < 1 || cfg.BenchSize < 0 {
		return nil, fmt.Errorf("%w: need at least one player per side and a non-negative bench", ErrInvalidArgument)
	}
	if cfg.FoulProbability < 0 || cfg.FoulProbability > 1 {
		return nil, fmt.Errorf("%w: foul probability %.2f outside [0,1]", ErrInvalidArgument, cfg.FoulProbability)
	}

	formations := cfg.Formations
	if formations == nil {
		var err error
		if formations, err = DefaultFormations(); err != nil {
			return nil, err
		}
	}
	name := cfg.Formation
	if name == "" {
		name = DefaultFormation
	}
	formation, err := formations.Get(name)
	if err != nil {
		return nil, err
	}

	rng, seed := cfg.Rand, cfg.Seed
	if rng == nil {
		rng, seed = NewRand(cfg.Seed)
	}
	policy := DefaultStaminaPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}

	field := NewField()
	events := NewEventLog()
	e := &Engine{
		log:          cfg.Logger,
		matchID:      uuid.NewString(),
		seed:         seed,
		rng:          rng,
		policy:       policy,
		field:        field,
		ball:         NewBall(field),
		rules:        NewGameRules(field, events),
		agents:       make(map[TeamSide]*TeamAgent, 2),
		players:      make(map[int]*Player),
		events:       events,
		rewards:      NewRewards(),
		dt:           cfg.TickSize,
		stepsPerHalf: cfg.StepsPerHalf(),
		phase:        PhasePending,
		snapshotPool: NewSnapshotPool(2 * cfg.PlayersPerSide),
		stopChan:     make(chan struct{}),
		done:         make(chan struct{}),
	}
	e.log = e.log.With().Str("match", e.matchID).Logger()

	if err := e.setupTeams(cfg, formation); err != nil {
		return nil, err
	}
	e.publishSnapshot()

	e.log.Info().
		Int64("seed", seed).
		Str("formation", formation.Name).
		Int("players_per_side", cfg.PlayersPerSide).
		Int("bench", cfg.BenchSize).
		Int("steps_per_half", e.stepsPerHalf).
		Float64("dt", e.dt).
		Msg("match created")
	return e, nil
}

// setupTeams creates the squads. Starters get IDs 1..2N (team A first),
// substitutes follow. Random draws happen in ID order.
func (e *Engine) setupTeams(cfg EngineConfig, formation Formation) error {
	n := cfg.PlayersPerSide
	rosters := map[TeamSide][]*Player{}
	benches := map[TeamSide][]*Player{}

	for j := 0; j < 2*n; j++ {
		team, slot := TeamA, j
		x := math.Mod(float64(10*j), e.field.Length)
		if j >= n {
			team, slot = TeamB, j-n
			x = e.field.Length - x
		}
		p := e.newPlayer(j+1, team, r2.Vec{X: x, Y: e.field.Width / 2}, formation.RoleFor(slot))
		rosters[team] = append(rosters[team], p)
		e.rewards.Register(p)
	}

	nextID := 2*n + 1
	for _, team := range Teams {
		for i := 0; i < cfg.BenchSize; i++ {
			p := e.newPlayer(nextID, team, r2.Vec{X: e.field.Length / 2, Y: -2}, RoleMidfielder)
			benches[team] = append(benches[team], p)
			nextID++
		}
	}

	for _, team := range Teams {
		if err := e.rules.SetRoster(team, rosters[team], benches[team]); err != nil {
			return err
		}
		agent, err := NewTeamAgent(team, rosters[team], AgentOptions{
			Field:           e.field,
			Rules:           e.rules,
			Ball:            e.ball,
			Rand:            e.rng,
			Emitter:         e.events,
			FoulProbability: cfg.FoulProbability,
			Policy:          &e.policy,
		})
		if err != nil {
			return err
		}
		e.agents[team] = agent
	}
	e.agents[TeamA].SetOpponents(e.agents[TeamB])
	e.agents[TeamB].SetOpponents(e.agents[TeamA])
	return nil
}

func (e *Engine) newPlayer(id int, team TeamSide, pos r2.Vec, role Role) *Player {
	skill := uniform(e.rng, 0.6, 0.9)
	traits := RandomTraits(e.rng)
	attrs := map[string]float64{
		"pace":     uniform(e.rng, 40, 99),
		"strength": uniform(e.rng, 40, 99),
		"stamina":  uniform(e.rng, 40, 99),
		"agility":  uniform(e.rng, 40, 99),
	}
	p := NewPlayer(id, team, pos, PlayerOptions{
		Role:               role,
		Skill:              skill,
		Traits:             &traits,
		PhysicalAttributes: attrs,
		Policy:             &e.policy,
	})
	e.players[id] = p
	return p
}

// OnTick registers an observer. Observers run on the ticking goroutine
// after the engine lock is released.
func (e *Engine) OnTick(fn TickObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, fn)
}

// Step advances the match by one tick, handling half-time and full time. It
// reports whether there is more to play.
func (e *Engine) Step() bool {
	start := time.Now()

	e.mu.Lock()
	if e.phase == PhaseFullTime {
		e.mu.Unlock()
		return false
	}
	if e.phase == PhasePending {
		e.startHalf(1)
	}

	e.tick()
	e.step++
	if e.step >= e.stepsPerHalf {
		if e.half == 1 {
			e.halfTime()
			e.startHalf(2)
		} else {
			e.fullTime()
		}
	}
	e.publishSnapshot()

	more := e.phase != PhaseFullTime
	snap := e.snapshotPool.AcquireRead().Clone()
	observers := e.observers
	e.mu.Unlock()

	took := time.Since(start)
	for _, fn := range observers {
		fn(snap, took)
	}
	return more
}

// Run plays the match to completion and returns the final score
func (e *Engine) Run() Score {
	for e.Step() {
	}
	return e.Score()
}

func (e *Engine) startHalf(half int) {
	e.half, e.step = half, 0
	e.phase = PhaseFirstHalf
	if half == 2 {
		e.phase = PhaseSecondHalf
	}
	e.events.SetClock(half, 0)
	e.ball.Reset(e.field.Center())

	s := e.rules.Score()
	e.events.Emit(EventTypeHalfStart, 0, PhasePayload{Half: half, TeamA: s.TeamA, TeamB: s.TeamB})
	e.log.Info().Int("half", half).Msg("half started")
}

func (e *Engine) halfTime() {
	e.phase = PhaseHalfTime
	s := e.rules.Score()
	e.events.Emit(EventTypeHalfTime, 0, PhasePayload{Half: e.half, TeamA: s.TeamA, TeamB: s.TeamB})

	for _, team := range Teams {
		for _, p := range e.agents[team].Players() {
			p.Stamina = e.policy.Recover(p.Stamina, e.policy.HalfTimeRecovery)
		}
	}
	e.log.Info().Int("team_a", s.TeamA).Int("team_b", s.TeamB).Msg("half-time")
}

func (e *Engine) fullTime() {
	e.phase = PhaseFullTime
	s := e.rules.Score()
	winner, _ := s.Winner()
	e.events.Emit(EventTypeFullTime, 0, PhasePayload{Half: e.half, TeamA: s.TeamA, TeamB: s.TeamB, Winner: winner})
	e.rewards.Settle(s)

	e.log.Info().
		Int("team_a", s.TeamA).
		Int("team_b", s.TeamB).
		Str("winner", string(winner)).
		Int("events", e.events.Len()).
		Msg("full time")
}

// tick runs one simulation step: every player decides in order (team A
// roster, then team B), then the ball moves once and the rules adjudicate
// where it ended up.
func (e *Engine) tick() {
	e.events.SetClock(e.half, e.step)

	order := append(e.agents[TeamA].Players(), e.agents[TeamB].Players()...)
	for _, p := range order {
		if p.SentOff {
			continue
		}
		out := e.agents[p.Team].Decide(p, e.dt)
		e.credit(p, out)
		if out.SentOff {
			e.sendOff(p)
		}
		if out.Goal {
			e.ball.Reset(e.field.Center())
		}
	}

	e.ball.UpdatePosition(e.dt)
	e.adjudicateBall()
	e.substitute()
	e.emitPositions()
}

func (e *Engine) credit(p *Player, out Outcome) {
	if !out.Executed {
		return
	}
	var amount float64
	switch out.Tag {
	case TagPass:
		amount = RewardPass
	case TagShoot:
		amount = RewardShot
		if out.Goal {
			amount += RewardGoal
		}
	default:
		return
	}
	if err := e.rewards.Add(p.ID, amount); err != nil {
		e.log.Warn().Err(err).Int("player", p.ID).Msg("reward not credited")
	}
}

func (e *Engine) sendOff(p *Player) {
	e.rules.SendOff(p)
	if err := e.agents[p.Team].RemovePlayer(p.ID); err != nil {
		e.log.Warn().Err(err).Int("player", p.ID).Msg("send-off")
		return
	}
	e.log.Info().Int("player", p.ID).Str("team", string(p.Team)).Msg("red card")
}

// adjudicateBall scores a ball resting in a goal box and restarts play when
// it has left the pitch
func (e *Engine) adjudicateBall() {
	pos := e.ball.Position
	var lastTeam TeamSide
	lastPlayer := 0
	if lt := e.ball.LastTouch; lt != nil {
		lastTeam, lastPlayer = lt.Team, lt.PlayerID
	}

	if team, ok := e.field.GoalBoxAt(pos); ok {
		scorer := 0
		if lastTeam == team {
			scorer = lastPlayer
		}
		e.events.Emit(EventTypeGoal, scorer, GoalPayload{PlayerID: scorer, Team: team, Method: "ball_in_goal"})
		if err := e.rules.AwardGoal(team); err != nil {
			e.log.Warn().Err(err).Msg("goal not awarded")
		}
		if scorer != 0 {
			if err := e.rewards.Add(scorer, RewardGoal); err != nil {
				e.log.Warn().Err(err).Int("player", scorer).Msg("reward not credited")
			}
		}
		e.log.Debug().Str("team", string(team)).Int("scorer", scorer).Msg("goal")
		e.ball.Reset(e.field.Center())
		return
	}

	if !e.rules.CheckOutOfBounds(pos) {
		return
	}

	if e.field.CrossedSideline(pos) {
		taker := TeamA
		if lastTeam != "" {
			taker = lastTeam.Opponent()
		}
		e.rules.HandleThrowIn(pos, taker)
		e.ball.Reset(r2.Vec{X: clamp(pos.X, 0, e.field.Length), Y: clamp(pos.Y, 0, e.field.Width)})
		return
	}

	defending, _ := e.field.CrossedGoalLine(pos)
	endX := 0.0
	if defending == TeamB {
		endX = e.field.Length
	}
	if e.rules.HandleCornerKick(pos, lastTeam) {
		cornerY := 0.0
		if pos.Y > e.field.Width/2 {
			cornerY = e.field.Width
		}
		e.ball.Reset(r2.Vec{X: endX, Y: cornerY})
		return
	}
	e.rules.HandleGoalKick(pos, lastTeam)
	kickX := goalKickDistance
	if defending == TeamB {
		kickX = e.field.Length - goalKickDistance
	}
	e.ball.Reset(r2.Vec{X: kickX, Y: e.field.Width / 2})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// substitute replaces tired players while substitutes remain
func (e *Engine) substitute() {
	for _, team := range Teams {
		for _, p := range e.rules.InGame(team) {
			in := e.rules.HandleSubstitution(p)
			if in == nil {
				continue
			}
			in.Position = p.Position
			if err := e.agents[team].ReplacePlayer(p.ID, in); err != nil {
				e.log.Warn().Err(err).Int("player", p.ID).Msg("substitution")
				continue
			}
			e.rewards.Register(in)
			e.log.Debug().Int("out", p.ID).Int("in", in.ID).Str("team", string(team)).Msg("substitution")
		}
	}
}

func (e *Engine) emitPositions() {
	b := e.ball
	e.events.Emit(EventTypeBallPosition, 0, BallPositionPayload{
		X: b.Position.X, Y: b.Position.Y, VX: b.Velocity.X, VY: b.Velocity.Y,
	})
	for _, team := range Teams {
		for _, p := range e.agents[team].players {
			e.events.Emit(EventTypePlayerPosition, p.ID, PlayerPositionPayload{
				PlayerID: p.ID, Team: p.Team, X: p.Position.X, Y: p.Position.Y, Stamina: p.Stamina,
			})
		}
	}
}

// publishSnapshot copies the match state into the next snapshot slot
func (e *Engine) publishSnapshot() {
	snap := e.snapshotPool.AcquireWrite()
	snap.MatchID = e.matchID
	snap.Seed = e.seed
	snap.Phase = e.phase
	snap.Half = e.half
	snap.Step = e.step
	snap.Score = e.rules.Score()
	snap.EventCount = e.events.Len()

	snap.Ball = BallSnapshot{
		X: e.ball.Position.X, Y: e.ball.Position.Y,
		VX: e.ball.Velocity.X, VY: e.ball.Velocity.Y,
	}
	if lt := e.ball.LastTouch; lt != nil {
		snap.Ball.LastTouch = lt.PlayerID
	}

	for _, team := range Teams {
		for _, p := range e.agents[team].players {
			snap.Players = append(snap.Players, e.playerSnapshot(p))
		}
	}
	e.snapshotPool.PublishWrite()
}

func (e *Engine) playerSnapshot(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:        p.ID,
		Team:      p.Team,
		Role:      p.Role,
		X:         p.Position.X,
		Y:         p.Position.Y,
		VX:        p.Velocity.X,
		VY:        p.Velocity.Y,
		Stamina:   p.Stamina,
		Skill:     p.Skill,
		Chemistry: p.Chemistry,
		Yellows:   e.rules.YellowCards(p.ID),
		SentOff:   p.SentOff,
	}
}

// Start plays the match in the background, one tick per interval, until
// full time or Stop. A stopped engine cannot be started again.
func (e *Engine) Start(interval time.Duration) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	if e.stopped {
		e.mu.Unlock()
		e.log.Warn().Msg("match clock already stopped, ignoring start")
		return
	}
	e.running = true
	e.ticker = time.NewTicker(interval)
	e.mu.Unlock()

	go func() {
		defer close(e.done)
		defer e.ticker.Stop()
		for {
			select {
			case <-e.ticker.C:
				if !e.Step() {
					return
				}
			case <-e.stopChan:
				return
			}
		}
	}()

	e.log.Info().Dur("interval", interval).Msg("match clock started")
}

// Stop halts a match started with Start. It is safe to call more than once.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	e.stopped = true
	close(e.stopChan)
	e.mu.Unlock()

	<-e.done
	e.log.Info().Msg("match clock stopped")
}

// Done is closed when a match started with Start finishes or is stopped
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Close flushes and closes the event sinks
func (e *Engine) Close() error {
	return e.events.Close()
}

// Events returns the match event log
func (e *Engine) Events() *EventLog {
	return e.events
}

// EventsSince returns events after a sequence number, optionally filtered by type
func (e *Engine) EventsSince(after uint64, limit int, types ...EventType) []Event {
	return e.events.EventsSince(after, limit, types...)
}

// Snapshot returns a copy of the latest published match state
func (e *Engine) Snapshot() MatchSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// Score returns the current score
func (e *Engine) Score() Score {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Score()
}

// Standings returns the top n reward standings (n <= 0 for all)
func (e *Engine) Standings(n int) []Standing {
	return e.rewards.Standings(n)
}

// TeamRewards returns the reward total of both sides
func (e *Engine) TeamRewards() map[TeamSide]float64 {
	return map[TeamSide]float64{
		TeamA: e.rewards.Team(TeamA),
		TeamB: e.rewards.Team(TeamB),
	}
}

// Player returns a snapshot of any player in the squads, bench included,
// with their reward and standing. Rank is 0 for players who never came on.
func (e *Engine) Player(id int) (PlayerSnapshot, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	p, ok := e.players[id]
	if !ok {
		return PlayerSnapshot{}, false
	}
	snap := e.playerSnapshot(p)
	snap.Reward, _ = e.rewards.Player(id)
	snap.Rank = e.rewards.Rank(id)
	return snap, true
}

// MatchID returns the unique ID of this match
func (e *Engine) MatchID() string {
	return e.matchID
}

// Seed returns the seed the random source was created with
func (e *Engine) Seed() int64 {
	return e.seed
}

// Finished reports whether full time has been played
func (e *Engine) Finished() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase == PhaseFullTime
}

// Phase returns the current match stage
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.phase
}

// EventCounts returns per-type event totals keyed by wire name
func (e *Engine) EventCounts() map[string]uint64 {
	return e.events.Counts()
}
