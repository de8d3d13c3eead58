package game

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gocarina/gocsv"
)

// OpenFile creates (truncating) an output file for a sink
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return f, nil
}

// JSONLSink writes newline-delimited JSON events
type JSONLSink struct {
	out io.Closer
	buf *bufio.Writer
	enc *json.Encoder
}

// NewJSONLSink wraps w; Close flushes and closes it
func NewJSONLSink(w io.WriteCloser) *JSONLSink {
	buf := bufio.NewWriterSize(w, 64*1024)
	return &JSONLSink{out: w, buf: buf, enc: json.NewEncoder(buf)}
}

// Write encodes one event per line
func (s *JSONLSink) Write(event Event) error {
	return s.enc.Encode(event)
}

// Close flushes buffered lines and closes the file
func (s *JSONLSink) Close() error {
	if err := s.buf.Flush(); err != nil {
		s.out.Close()
		return err
	}
	return s.out.Close()
}

// TextSink writes the human-readable match log. Lines keep the wording of
// the older text logs so existing log tooling can still read them.
type TextSink struct {
	out io.Closer
	buf *bufio.Writer
}

// NewTextSink wraps w; Close flushes and closes it
func NewTextSink(w io.WriteCloser) *TextSink {
	return &TextSink{out: w, buf: bufio.NewWriter(w)}
}

// Write renders the event as a single line
func (s *TextSink) Write(event Event) error {
	line, ok := FormatText(event)
	if !ok {
		return nil
	}
	if _, err := s.buf.WriteString(line); err != nil {
		return err
	}
	return s.buf.WriteByte('\n')
}

// Close flushes and closes the file
func (s *TextSink) Close() error {
	if err := s.buf.Flush(); err != nil {
		s.out.Close()
		return err
	}
	return s.out.Close()
}

func fmtVec(x, y float64) string {
	return "[" + strconv.FormatFloat(x, 'f', 2, 64) + " " + strconv.FormatFloat(y, 'f', 2, 64) + "]"
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatText renders an event in the text log format. Events without a text
// form report false.
func FormatText(ev Event) (string, bool) {
	switch p := ev.Payload.(type) {
	case BallPositionPayload:
		return fmt.Sprintf("[SIMULATION]Half %d, Step %d: Ball position: %s", ev.Half, ev.Step, fmtVec(p.X, p.Y)), true
	case PlayerPositionPayload:
		return fmt.Sprintf("[SIMULATION]Half %d, Step %d: Player %d Position: %s, Stamina: %s",
			ev.Half, ev.Step, p.PlayerID, fmtVec(p.X, p.Y), fmtNum(p.Stamina)), true
	case GoalPayload:
		return fmt.Sprintf("[AGENT]Player %d scores a goal for %s!", p.PlayerID, p.Team), true
	case ScorePayload:
		return fmt.Sprintf("[Rules] Goal awarded to %s! Current score: team_a %d - team_b %d", p.Team, p.TeamA, p.TeamB), true
	case PassPayload:
		return fmt.Sprintf("[AGENT]Player %d passed the ball to Player %d at position %s", p.PlayerID, p.TargetID, fmtVec(p.X, p.Y)), true
	case ShotPayload:
		return fmt.Sprintf("[AGENT]Player %d shoots towards the goal from %s m", p.PlayerID, fmtNum(p.Distance)), true
	case TacklePayload:
		if p.Success {
			return fmt.Sprintf("[AGENT]Player %d successfully tackled Player %d", p.PlayerID, p.OpponentID), true
		}
		return fmt.Sprintf("[AGENT]Player %d failed to tackle Player %d", p.PlayerID, p.OpponentID), true
	case FoulPayload:
		return fmt.Sprintf("[Rules] Foul by Player %d of %s at %s", p.PlayerID, p.Team, fmtVec(p.X, p.Y)), true
	case CardPayload:
		if ev.Type == EventTypeRedCard {
			return fmt.Sprintf("[Rules] Player %d has received a red card!", p.PlayerID), true
		}
		return fmt.Sprintf("[Rules] Player %d has received a yellow card.", p.PlayerID), true
	case RestartPayload:
		return formatRestart(ev.Type, p), true
	case OffsidePayload:
		return fmt.Sprintf("[Rules] Player %d of %s is offside", p.PlayerID, p.Team), true
	case RestPayload:
		return fmt.Sprintf("[AGENT]Player %d is resting to regain stamina. Current stamina: %s", p.PlayerID, fmtNum(p.Stamina)), true
	case DribblePayload:
		return fmt.Sprintf("[AGENT]Player %d is dribbling. Current position: %s", p.PlayerID, fmtVec(p.X, p.Y)), true
	case SubstitutionPayload:
		return fmt.Sprintf("[Rules] Player %d is being substituted. Player %d comes on for %s.", p.PlayerOut, p.PlayerIn, p.Team), true
	case PhasePayload:
		switch ev.Type {
		case EventTypeHalfStart:
			return fmt.Sprintf("[SIMULATION]Starting Half %d", p.Half), true
		case EventTypeHalfTime:
			return "[SIMULATION]Half-time break. Players rest.", true
		case EventTypeFullTime:
			return fmt.Sprintf("[SIMULATION]Full Time! Final Scores:\t Team A:%d - Team B:%d", p.TeamA, p.TeamB), true
		}
	}
	return "", false
}

func formatRestart(t EventType, p RestartPayload) string {
	switch t {
	case EventTypeThrowIn:
		return fmt.Sprintf("[Rules] Throw-in awarded to %s. A player is assigned to take it.", p.Team)
	case EventTypeCornerKick:
		return fmt.Sprintf("[Rules] Corner kick awarded to %s.", p.Team)
	case EventTypeGoalKick:
		return fmt.Sprintf("[Rules] Goal kick awarded to %s.", p.Team)
	case EventTypePenalty:
		return fmt.Sprintf("[Rules] Penalty awarded to %s", p.Team)
	default:
		return fmt.Sprintf("[Rules] Free kick awarded to %s at position %s", p.Team, fmtVec(p.X, p.Y))
	}
}

// PositionRow is one CSV sample of the ball or a player
type PositionRow struct {
	Half     int     `csv:"half"`
	Step     int     `csv:"step"`
	Entity   string  `csv:"entity"` // "ball" or "player"
	PlayerID int     `csv:"player_id"`
	Team     string  `csv:"team"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Stamina  float64 `csv:"stamina"`
}

const csvBatchSize = 256

// CSVSink writes ball and player position samples as CSV; other events are ignored
type CSVSink struct {
	out           io.WriteCloser
	rows          []PositionRow
	headerWritten bool
}

// NewCSVSink wraps w; Close flushes and closes it
func NewCSVSink(w io.WriteCloser) *CSVSink {
	return &CSVSink{out: w, rows: make([]PositionRow, 0, csvBatchSize)}
}

// Write buffers position samples and flushes them in batches
func (s *CSVSink) Write(event Event) error {
	switch p := event.Payload.(type) {
	case BallPositionPayload:
		s.rows = append(s.rows, PositionRow{Half: event.Half, Step: event.Step, Entity: "ball", X: p.X, Y: p.Y})
	case PlayerPositionPayload:
		s.rows = append(s.rows, PositionRow{
			Half: event.Half, Step: event.Step, Entity: "player",
			PlayerID: p.PlayerID, Team: string(p.Team), X: p.X, Y: p.Y, Stamina: p.Stamina,
		})
	default:
		return nil
	}
	if len(s.rows) >= csvBatchSize {
		return s.flush()
	}
	return nil
}

func (s *CSVSink) flush() error {
	if len(s.rows) == 0 {
		return nil
	}
	var err error
	if !s.headerWritten {
		// First write includes headers
		err = gocsv.Marshal(s.rows, s.out)
		s.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(s.rows, s.out)
	}
	s.rows = s.rows[:0]
	if err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	return nil
}

// Close writes any buffered rows and closes the file
func (s *CSVSink) Close() error {
	if err := s.flush(); err != nil {
		s.out.Close()
		return err
	}
	return s.out.Close()
}
