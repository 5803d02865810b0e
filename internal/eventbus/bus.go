package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/xrsession/schema"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventSessionState carries session lifecycle changes.
	EventSessionState EventType = "session_state"
)

// Event represents an application-facing event emitted by the core.
type Event struct {
	Type  EventType
	State schema.SessionStateEvent
}

// Bus fanouts events to per-session subscribers.
type Bus struct {
	mu    sync.Mutex
	subs  map[schema.SessionID]map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[schema.SessionID]map[chan Event]struct{}),
		log:   logger,
		depth: 64,
	}
}

// AllSessions subscribes to the events of every session.
const AllSessions schema.SessionID = ""

// Subscribe registers a subscriber for the session and returns a channel + cancel.
// Subscribers of AllSessions outlive ForgetSession.
func (b *Bus) Subscribe(sessionID schema.SessionID) (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	sessionSubs := b.subs[sessionID]
	if sessionSubs == nil {
		sessionSubs = make(map[chan Event]struct{})
		b.subs[sessionID] = sessionSubs
	}
	sessionSubs[ch] = struct{}{}
	count := len(sessionSubs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.With("session", sessionID).Debug("eventbus subscribe", "subs", count)
	}
	return ch, func() {
		b.mu.Lock()
		removed := false
		if subs := b.subs[sessionID]; subs != nil {
			if _, ok := subs[ch]; ok {
				delete(subs, ch)
				removed = true
			}
			if len(subs) == 0 {
				delete(b.subs, sessionID)
			}
		}
		b.mu.Unlock()
		if !removed {
			return
		}
		close(ch)
		if b.log != nil {
			b.log.With("session", sessionID).Debug("eventbus unsubscribe")
		}
	}
}

// OnSessionStateChanged publishes a session state event.
func (b *Bus) OnSessionStateChanged(event schema.SessionStateEvent) {
	b.publish(event.SessionID, Event{Type: EventSessionState, State: event})
}

// ForgetSession closes every subscriber of a destroyed session.
func (b *Bus) ForgetSession(sessionID schema.SessionID) {
	if b == nil || sessionID == AllSessions {
		return
	}
	b.mu.Lock()
	subs := b.subs[sessionID]
	delete(b.subs, sessionID)
	b.mu.Unlock()
	for ch := range subs {
		close(ch)
	}
	if len(subs) > 0 && b.log != nil {
		b.log.With("session", sessionID).Debug("eventbus session forgotten", "subs", len(subs))
	}
}

func (b *Bus) publish(sessionID schema.SessionID, event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	sessionSubs := b.subs[sessionID]
	allSubs := b.subs[AllSessions]
	subs := make([]chan Event, 0, len(sessionSubs)+len(allSubs))
	for sub := range sessionSubs {
		subs = append(subs, sub)
	}
	if sessionID != AllSessions {
		for sub := range allSubs {
			subs = append(subs, sub)
		}
	}
	dropped := 0
	for _, sub := range subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.With("session", sessionID).Trace("eventbus dropped", "count", dropped)
	}
}
