package game

import (
	"fmt"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeBallPosition
	EventTypePlayerPosition
	EventTypeGoal
	EventTypeScore
	EventTypePass
	EventTypeShot
	EventTypeTackle
	EventTypeFoul
	EventTypeYellowCard
	EventTypeRedCard
	EventTypePenalty
	EventTypeFreeKick
	EventTypeOffside
	EventTypeRest
	EventTypeDribble
	EventTypeThrowIn
	EventTypeCornerKick
	EventTypeGoalKick
	EventTypeSubstitution
	EventTypeHalfStart
	EventTypeHalfTime
	EventTypeFullTime

	numEventTypes
)

// EventVersion for backwards compatibility in consumers
const EventVersion uint8 = 1

var eventTypeNames = [numEventTypes]string{
	"unknown",
	"ball_position",
	"player_position",
	"goal",
	"score",
	"pass",
	"shot",
	"tackle",
	"foul",
	"yellow_card",
	"red_card",
	"penalty",
	"free_kick",
	"offside",
	"rest",
	"dribble",
	"throw_in",
	"corner_kick",
	"goal_kick",
	"substitution",
	"half_start",
	"half_time",
	"full_time",
}

// String returns the wire name of the event type
func (t EventType) String() string {
	if t >= numEventTypes {
		return "unknown"
	}
	return eventTypeNames[t]
}

// MarshalText encodes the type by name
func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name
func (t *EventType) UnmarshalText(text []byte) error {
	parsed, err := ParseEventType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseEventType resolves a wire name
func ParseEventType(name string) (EventType, error) {
	for i, n := range eventTypeNames {
		if n == name && i != int(EventTypeUnknown) {
			return EventType(i), nil
		}
	}
	return EventTypeUnknown, fmt.Errorf("%w: unknown event type %q", ErrInvalidArgument, name)
}

// AllEventTypes lists every concrete event type
func AllEventTypes() []EventType {
	types := make([]EventType, 0, numEventTypes-1)
	for t := EventTypeBallPosition; t < numEventTypes; t++ {
		types = append(types, t)
	}
	return types
}

// Event is one entry of the append-only match stream
type Event struct {
	Version  uint8     `json:"version"`
	Type     EventType `json:"type"`
	Sequence uint64    `json:"sequence"` // monotonic, starts at 1
	Half     int       `json:"half"`
	Step     int       `json:"step"`
	PlayerID int       `json:"playerId,omitempty"` // 0 when no player is involved
	Payload  any       `json:"payload,omitempty"`
}

// Emitter receives events from the rules engine and the team agents
type Emitter interface {
	Emit(eventType EventType, playerID int, payload any)
}

type discardEmitter struct{}

func (discardEmitter) Emit(EventType, int, any) {}

// Typed payloads for different event types

// BallPositionPayload is emitted once per tick
type BallPositionPayload struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// PlayerPositionPayload is emitted once per player per tick
type PlayerPositionPayload struct {
	PlayerID int      `json:"playerId"`
	Team     TeamSide `json:"team"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Stamina  float64  `json:"stamina"`
}

// GoalPayload names the scorer. Method is "shot" or "ball_in_goal".
type GoalPayload struct {
	PlayerID int      `json:"playerId"`
	Team     TeamSide `json:"team"`
	Method   string   `json:"method"`
}

// ScorePayload carries the score after a change
type ScorePayload struct {
	Team  TeamSide `json:"team"`
	TeamA int      `json:"teamA"`
	TeamB int      `json:"teamB"`
}

// PassPayload contains pass details; X/Y is the target's position
type PassPayload struct {
	PlayerID int     `json:"playerId"`
	TargetID int     `json:"targetId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// ShotPayload describes a missed or saved attempt that kicked the ball
type ShotPayload struct {
	PlayerID    int      `json:"playerId"`
	Team        TeamSide `json:"team"`
	Distance    float64  `json:"distance"`
	Probability float64  `json:"probability"`
}

// TacklePayload contains tackle outcome
type TacklePayload struct {
	PlayerID   int  `json:"playerId"`
	OpponentID int  `json:"opponentId"`
	Success    bool `json:"success"`
}

// FoulPayload contains foul details
type FoulPayload struct {
	PlayerID  int      `json:"playerId"`
	Team      TeamSide `json:"team"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	TeamFouls int      `json:"teamFouls"`
}

// CardPayload is used for yellow and red cards
type CardPayload struct {
	PlayerID int      `json:"playerId"`
	Team     TeamSide `json:"team"`
	Yellows  int      `json:"yellows"`
}

// RestartPayload is used for penalties, free kicks, throw-ins, corners and goal kicks
type RestartPayload struct {
	Team TeamSide `json:"team"`
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
}

// OffsidePayload flags a pass receiver beyond the defending line
type OffsidePayload struct {
	PlayerID      int      `json:"playerId"`
	Team          TeamSide `json:"team"`
	X             float64  `json:"x"`
	DefendingLine float64  `json:"defendingLine"`
}

// RestPayload contains stamina after resting
type RestPayload struct {
	PlayerID int     `json:"playerId"`
	Stamina  float64 `json:"stamina"`
}

// DribblePayload contains the dribbler's position afterwards
type DribblePayload struct {
	PlayerID int     `json:"playerId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// SubstitutionPayload names both players
type SubstitutionPayload struct {
	Team      TeamSide `json:"team"`
	PlayerOut int      `json:"playerOut"`
	PlayerIn  int      `json:"playerIn"`
}

// PhasePayload marks half boundaries. Winner is empty for a draw or an unfinished match.
type PhasePayload struct {
	Half   int      `json:"half"`
	TeamA  int      `json:"teamA"`
	TeamB  int      `json:"teamB"`
	Winner TeamSide `json:"winner,omitempty"`
}
