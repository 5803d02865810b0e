package schema

// SessionState is the lifecycle state of a session.
type SessionState int

const (
	// SessionStateUnknown is never reached by a live session.
	SessionStateUnknown SessionState = iota
	// SessionStateIdle is the transient state before READY.
	SessionStateIdle
	// SessionStateReady means the application may begin the session.
	SessionStateReady
	// SessionStateSynchronized means frames are paced but not shown.
	SessionStateSynchronized
	// SessionStateVisible means frames are shown.
	SessionStateVisible
	// SessionStateFocused means frames are shown and input is routed.
	SessionStateFocused
	// SessionStateStopping means the application should end the session.
	SessionStateStopping
	// SessionStateLossPending is reserved; this runtime never enters it.
	SessionStateLossPending
	// SessionStateExiting is terminal; the application should destroy the session.
	SessionStateExiting
)

func (s SessionState) String() string {
	switch s {
	case SessionStateIdle:
		return "idle"
	case SessionStateReady:
		return "ready"
	case SessionStateSynchronized:
		return "synchronized"
	case SessionStateVisible:
		return "visible"
	case SessionStateFocused:
		return "focused"
	case SessionStateStopping:
		return "stopping"
	case SessionStateLossPending:
		return "loss_pending"
	case SessionStateExiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// IsRunning reports whether the session has been begun and not yet ended.
func (s SessionState) IsRunning() bool {
	switch s {
	case SessionStateSynchronized, SessionStateVisible, SessionStateFocused, SessionStateStopping:
		return true
	default:
		return false
	}
}

// ShouldRender reports whether frames submitted in this state are displayed.
func (s SessionState) ShouldRender() bool {
	switch s {
	case SessionStateVisible, SessionStateFocused, SessionStateStopping:
		return true
	default:
		return false
	}
}

// SessionStateEvent notifies that a session moved to a new state.
type SessionStateEvent struct {
	SessionID SessionID
	State     SessionState
	// Time is the runtime timestamp of the change, zero when unknown.
	Time int64
}
