package player

import "sync"

// Machine holds the current playback state and advances it on events.
// It is safe for concurrent use.
type Machine struct {
	mu    sync.RWMutex
	state State
}

// New creates a machine in the idle state.
func New() *Machine {
	return &Machine{state: StateIdle}
}

// CurrentState returns the current state.
func (m *Machine) CurrentState() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Send applies the event and returns the resulting state.
// Events not defined for the current state leave it unchanged.
func (m *Machine) Send(event Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state, _ = Transition(m.state, event)
	return m.state
}

// SendChanged is like Send but also returns the previous state and whether
// the event moved the machine.
func (m *Machine) SendChanged(event Event) (from, to State, changed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	from = m.state
	m.state, changed = Transition(from, event)
	return from, m.state, changed
}

// Can reports whether the event is defined for the current state.
func (m *Machine) Can(event Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := Transition(m.state, event)
	return ok
}
