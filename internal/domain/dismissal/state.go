package dismissal

// State is the dismissal state machine's current state.
type State int

const (
	// StateIdle is a session that has not been started yet.
	StateIdle State = iota
	// StateRinging means audio and vibration are active.
	StateRinging
	// StateSilenced means audio and vibration are suppressed until the resume timer fires.
	StateSilenced
	// StateComplete is terminal: the goal was reached.
	StateComplete
	// StateClosed is terminal: the host left the screen before the goal was reached.
	StateClosed
)

// String returns a human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRinging:
		return "ringing"
	case StateSilenced:
		return "silenced"
	case StateComplete:
		return "complete"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// IsLive reports whether the session is ringing or silenced.
func (s State) IsLive() bool {
	return s == StateRinging || s == StateSilenced
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateClosed
}
