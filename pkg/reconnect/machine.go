package reconnect

import "sync"

// Transition defines a state change triggered by an event.
type Transition struct {
	From  State
	To    State
	Event Event
}

// DefaultTransitions returns the connection lifecycle table.
func DefaultTransitions() []Transition {
	ts := make([]Transition, 0, 16)
	for _, from := range States() {
		ts = append(ts,
			Transition{From: from, To: Connecting, Event: EventConnect},
			Transition{From: from, To: Disconnected, Event: EventDisconnect},
		)
	}
	return append(ts,
		Transition{From: Connecting, To: Connected, Event: EventOpen},
		Transition{From: Connecting, To: Error, Event: EventFail},
		Transition{From: Connected, To: Error, Event: EventFail},
		Transition{From: Error, To: Connecting, Event: EventRetry},
	)
}

// Machine is a thread-safe finite state machine over State.
// Lookups use a nested map: [from][event]to.
type Machine struct {
	current     State
	transitions map[State]map[Event]State
	mu          sync.RWMutex
}

// NewMachine creates a machine in the Idle state.
// With no transitions given it uses DefaultTransitions.
func NewMachine(transitions ...Transition) *Machine {
	if len(transitions) == 0 {
		transitions = DefaultTransitions()
	}

	m := &Machine{
		current:     Idle,
		transitions: make(map[State]map[Event]State),
	}
	for _, t := range transitions {
		if _, ok := m.transitions[t.From]; !ok {
			m.transitions[t.From] = make(map[Event]State)
		}
		m.transitions[t.From][t.Event] = t.To
	}
	return m
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Fire applies ev and returns the state it left.
// The current state is unchanged when no transition matches.
func (m *Machine) Fire(ev Event) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.current
	to, ok := m.transitions[from][ev]
	if !ok {
		return from, &TransitionError{From: from, Event: ev}
	}
	m.current = to
	return from, nil
}

// CanFire reports whether ev has a transition from the current state.
func (m *Machine) CanFire(ev Event) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transitions[m.current][ev]
	return ok
}
