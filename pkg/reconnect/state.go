package reconnect

// State is the connection state of a stream session.
type State string

const (
	Idle         State = "idle"
	Connecting   State = "connecting"
	Connected    State = "connected"
	Disconnected State = "disconnected"
	Error        State = "error"
)

// States lists every connection state.
func States() []State {
	return []State{Idle, Connecting, Connected, Disconnected, Error}
}

func (s State) String() string {
	return string(s)
}

// IsValid reports whether s is a known state.
func (s State) IsValid() bool {
	switch s {
	case Idle, Connecting, Connected, Disconnected, Error:
		return true
	}
	return false
}

// ParseState converts a raw string into a State.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.IsValid() {
		return "", ErrUnknownState
	}
	return st, nil
}

// Event triggers a state transition.
type Event string

const (
	EventConnect    Event = "connect"
	EventOpen       Event = "open"
	EventFail       Event = "fail"
	EventRetry      Event = "retry"
	EventDisconnect Event = "disconnect"
)

func (e Event) String() string {
	return string(e)
}
