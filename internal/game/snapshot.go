package game

import (
	"slices"
	"sync/atomic"
	"time"
)

// Phase is the match stage a snapshot was taken in
type Phase string

const (
	PhasePending    Phase = "pending"
	PhaseFirstHalf  Phase = "first_half"
	PhaseHalfTime   Phase = "half_time"
	PhaseSecondHalf Phase = "second_half"
	PhaseFullTime   Phase = "full_time"
)

// PlayerSnapshot is an immutable copy of player state
type PlayerSnapshot struct {
	ID        int      `json:"id"`
	Team      TeamSide `json:"team"`
	Role      Role     `json:"role"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	VX        float64  `json:"vx"`
	VY        float64  `json:"vy"`
	Stamina   float64  `json:"stamina"`
	Skill     float64  `json:"skill"`
	Chemistry float64  `json:"chemistry"`
	Yellows   int      `json:"yellows"`
	SentOff   bool     `json:"sentOff"`

	// Filled by Engine.Player only
	Reward float64 `json:"reward,omitempty"`
	Rank   int     `json:"rank,omitempty"`
}

// BallSnapshot is an immutable copy of ball state. LastTouch is 0 when nobody has played it.
type BallSnapshot struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	VX        float64 `json:"vx"`
	VY        float64 `json:"vy"`
	LastTouch int     `json:"lastTouch"`
}

// MatchSnapshot is the complete match state at the end of a tick
type MatchSnapshot struct {
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	MatchID   string    `json:"matchId"`
	Seed      int64     `json:"seed"`

	Phase Phase `json:"phase"`
	Half  int   `json:"half"`
	Step  int   `json:"step"`
	Score Score `json:"score"`

	Ball    BallSnapshot     `json:"ball"`
	Players []PlayerSnapshot `json:"players"`

	EventCount int `json:"eventCount"`
}

// Clone returns a deep copy safe to hand to other goroutines
func (s *MatchSnapshot) Clone() MatchSnapshot {
	out := *s
	out.Players = slices.Clone(s.Players)
	return out
}

// SnapshotPool is a triple buffer of snapshots with preallocated player
// slices. The producer fills one slot while readers use the last published one.
type SnapshotPool struct {
	snapshots [3]MatchSnapshot
	writeIdx  uint32 // atomic
	readIdx   uint32 // atomic
	sequence  uint64 // atomic
}

// NewSnapshotPool sizes each slot for the given number of players
func NewSnapshotPool(maxPlayers int) *SnapshotPool {
	pool := &SnapshotPool{}
	for i := range pool.snapshots {
		pool.snapshots[i] = MatchSnapshot{
			Phase:   PhasePending,
			Players: make([]PlayerSnapshot, 0, maxPlayers),
		}
	}
	return pool
}

// AcquireWrite returns the next slot with its player slice emptied
func (p *SnapshotPool) AcquireWrite() *MatchSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Players = snap.Players[:0]
	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()
	return snap
}

// PublishWrite makes the last acquired slot visible to readers
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published slot
func (p *SnapshotPool) AcquireRead() *MatchSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}
