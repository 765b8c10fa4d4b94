package player

// Rule is a single entry of the transition table.
type Rule struct {
	From  State
	Event Event
	To    State
}

// noTransition marks an undefined (state, event) pair in the table.
const noTransition State = -1

// table is indexed by [current state][event]. It is never written after init.
var table = [numStates][numEvents]State{
	StateIdle: {
		EventPlayBegin: StatePlayingBegin,
		EventPlay:      noTransition,
		EventPause:     noTransition,
	},
	StatePlayingBegin: {
		EventPlayBegin: noTransition,
		EventPlay:      StatePlaying,
		EventPause:     StatePaused,
	},
	StatePlaying: {
		EventPlayBegin: StatePlayingBegin,
		EventPlay:      noTransition,
		EventPause:     StatePaused,
	},
	StatePaused: {
		EventPlayBegin: noTransition,
		EventPlay:      StatePlaying,
		EventPause:     noTransition,
	},
}

// Transition looks up the next state for the given state and event.
// ok is false when the event is not defined for the state; next is then the
// unchanged state.
func Transition(from State, event Event) (next State, ok bool) {
	if !from.Valid() || !event.Valid() {
		return from, false
	}
	to := table[from][event]
	if to == noTransition {
		return from, false
	}
	return to, true
}

// AcceptedEvents returns the events defined for the state, in declaration order.
func AcceptedEvents(s State) []Event {
	var events []Event
	for _, e := range Events() {
		if _, ok := Transition(s, e); ok {
			events = append(events, e)
		}
	}
	return events
}

// Transitions returns a copy of every defined rule, ordered by state then event.
func Transitions() []Rule {
	var rules []Rule
	for _, s := range States() {
		for _, e := range Events() {
			if to, ok := Transition(s, e); ok {
				rules = append(rules, Rule{From: s, Event: e, To: to})
			}
		}
	}
	return rules
}
