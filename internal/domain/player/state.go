// Package player provides the playback state machine of a media player.
package player

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// MachineID identifies the player state machine.
const MachineID = "playerMachine"

// ErrUnknownState is returned when a state name cannot be parsed.
var ErrUnknownState = errors.New("unknown player state")

// State represents the playback state of the player.
type State int

const (
	StateIdle         State = iota // Playback has not begun
	StatePlayingBegin              // Playback requested, not yet playing
	StatePlaying                   // Media is playing
	StatePaused                    // Media is paused

	numStates
)

var stateNames = [numStates]string{
	StateIdle:         "idle",
	StatePlayingBegin: "playingBegin",
	StatePlaying:      "playing",
	StatePaused:       "paused",
}

// String returns the string representation of the state.
func (s State) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stateNames[s]
}

// Valid reports whether s is one of the defined states.
func (s State) Valid() bool {
	return s >= StateIdle && s < numStates
}

// States returns every state in declaration order.
func States() []State {
	states := make([]State, 0, numStates)
	for s := StateIdle; s < numStates; s++ {
		states = append(states, s)
	}
	return states
}

// ParseState parses a state name. Matching ignores case, underscores and hyphens,
// so "playingBegin", "PLAYING_BEGIN" and "playing-begin" are equivalent.
func ParseState(name string) (State, error) {
	key := normalizeName(name)
	for s := StateIdle; s < numStates; s++ {
		if normalizeName(stateNames[s]) == key {
			return s, nil
		}
	}
	return StateIdle, errors.Wrapf(ErrUnknownState, "%q", name)
}

func normalizeName(name string) string {
	r := strings.NewReplacer("_", "", "-", "", " ", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(name)))
}
