package player

import "github.com/cockroachdb/errors"

// ErrUnknownEvent is returned when an event name cannot be parsed.
var ErrUnknownEvent = errors.New("unknown player event")

// Event represents a signal sent to the player state machine.
type Event int

const (
	EventPlayBegin Event = iota // Playback is requested
	EventPlay                   // Media started or resumed playing
	EventPause                  // Media was paused

	numEvents
)

var eventNames = [numEvents]string{
	EventPlayBegin: "PLAY_BEGIN",
	EventPlay:      "PLAY",
	EventPause:     "PAUSE",
}

// String returns the string representation of the event.
func (e Event) String() string {
	if !e.Valid() {
		return "UNKNOWN"
	}
	return eventNames[e]
}

// Valid reports whether e is one of the defined events.
func (e Event) Valid() bool {
	return e >= EventPlayBegin && e < numEvents
}

// Events returns every event in declaration order.
func Events() []Event {
	events := make([]Event, 0, numEvents)
	for e := EventPlayBegin; e < numEvents; e++ {
		events = append(events, e)
	}
	return events
}

// ParseEvent parses an event name such as "PLAY_BEGIN", "play_begin" or "playBegin".
func ParseEvent(name string) (Event, error) {
	key := normalizeName(name)
	for e := EventPlayBegin; e < numEvents; e++ {
		if normalizeName(eventNames[e]) == key {
			return e, nil
		}
	}
	return EventPlayBegin, errors.Wrapf(ErrUnknownEvent, "%q", name)
}

// ParseEvents parses a list of event names, stopping at the first unknown one.
func ParseEvents(names []string) ([]Event, error) {
	events := make([]Event, 0, len(names))
	for i, name := range names {
		e, err := ParseEvent(name)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i)
		}
		events = append(events, e)
	}
	return events, nil
}
