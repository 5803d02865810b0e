package core

import "pkt.systems/xrsession/schema"

// EventSink receives session state changes from the core.
type EventSink interface {
	OnSessionStateChanged(event schema.SessionStateEvent)
	// ForgetSession drops anything still queued for a destroyed session.
	ForgetSession(id schema.SessionID)
}
