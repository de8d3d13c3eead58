package game

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Sink is a serialization target for the event stream
type Sink interface {
	Write(event Event) error
	Close() error
}

// EventLog is the append-only event stream of one match. Events are stamped
// with the current half/step and a monotonic sequence, kept in memory, and
// fanned out to sinks and subscribers in emission order.
type EventLog struct {
	mu       sync.RWMutex
	events   []Event
	sequence uint64
	half     int
	step     int

	sinks       []Sink
	subscribers []func(Event)

	// Stats for monitoring
	counts     [numEventTypes]uint64 // atomic
	sinkErrors uint64                // atomic
	firstErr   error
}

// NewEventLog creates an empty event log
func NewEventLog() *EventLog {
	return &EventLog{
		events: make([]Event, 0, 4096),
	}
}

// AddSink registers a serialization target. Not safe to call while a match is running.
func (el *EventLog) AddSink(s Sink) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.sinks = append(el.sinks, s)
}

// Subscribe registers a callback invoked synchronously for each event
func (el *EventLog) Subscribe(fn func(Event)) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.subscribers = append(el.subscribers, fn)
}

// SetClock sets the half/step stamped on subsequent events
func (el *EventLog) SetClock(half, step int) {
	el.mu.Lock()
	el.half, el.step = half, step
	el.mu.Unlock()
}

// Emit appends an event and forwards it to sinks and subscribers
func (el *EventLog) Emit(eventType EventType, playerID int, payload any) {
	el.mu.Lock()
	el.sequence++
	event := Event{
		Version:  EventVersion,
		Type:     eventType,
		Sequence: el.sequence,
		Half:     el.half,
		Step:     el.step,
		PlayerID: playerID,
		Payload:  payload,
	}
	el.events = append(el.events, event)

	for _, s := range el.sinks {
		if err := s.Write(event); err != nil {
			atomic.AddUint64(&el.sinkErrors, 1)
			if el.firstErr == nil {
				el.firstErr = err
			}
		}
	}
	subscribers := el.subscribers
	el.mu.Unlock()

	if eventType < numEventTypes {
		atomic.AddUint64(&el.counts[eventType], 1)
	}
	for _, fn := range subscribers {
		fn(event)
	}
}

// Events returns a copy of the whole stream
func (el *EventLog) Events() []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	out := make([]Event, len(el.events))
	copy(out, el.events)
	return out
}

// EventsSince returns events with a sequence greater than after, optionally
// restricted to the given types, at most limit entries (limit <= 0 means all)
func (el *EventLog) EventsSince(after uint64, limit int, types ...EventType) []Event {
	el.mu.RLock()
	defer el.mu.RUnlock()

	// sequence n lives at index n-1
	start := int(min(after, uint64(len(el.events))))
	out := make([]Event, 0)
	for _, ev := range el.events[start:] {
		if len(types) > 0 && !containsType(types, ev.Type) {
			continue
		}
		out = append(out, ev)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

func containsType(types []EventType, t EventType) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

// Len returns the number of events emitted so far
func (el *EventLog) Len() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return len(el.events)
}

// Count returns how many events of a type were emitted
func (el *EventLog) Count(eventType EventType) uint64 {
	if eventType >= numEventTypes {
		return 0
	}
	return atomic.LoadUint64(&el.counts[eventType])
}

// Counts returns per-type totals keyed by wire name, omitting zeroes
func (el *EventLog) Counts() map[string]uint64 {
	out := make(map[string]uint64)
	for _, t := range AllEventTypes() {
		if n := el.Count(t); n > 0 {
			out[t.String()] = n
		}
	}
	return out
}

// Err returns the first sink write error, if any
func (el *EventLog) Err() error {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.firstErr
}

// Close flushes and closes every sink
func (el *EventLog) Close() error {
	el.mu.Lock()
	defer el.mu.Unlock()

	var errs []error
	for _, s := range el.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	el.sinks = nil
	return errors.Join(errs...)
}

// GetStats returns metrics for monitoring
func (el *EventLog) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"total":      el.Len(),
		"sinkErrors": atomic.LoadUint64(&el.sinkErrors),
		"byType":     el.Counts(),
	}
}
