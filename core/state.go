package core

import (
	"fmt"

	"pkt.systems/xrsession/schema"
)

// sessionEvent drives the session state machine.
type sessionEvent int

const (
	eventBegin sessionEvent = iota + 1
	eventRequestExit
	eventEnd
	eventReady
	eventExit
)

func (e sessionEvent) String() string {
	switch e {
	case eventBegin:
		return "begin"
	case eventRequestExit:
		return "request_exit"
	case eventEnd:
		return "end"
	case eventReady:
		return "ready"
	case eventExit:
		return "exit"
	default:
		return "unknown"
	}
}

type transitionKey struct {
	from  schema.SessionState
	event sessionEvent
}

// transitions is the complete state graph. Any (state, event) pair missing
// here is illegal.
var transitions = map[transitionKey]schema.SessionState{
	{schema.SessionStateIdle, eventReady}:               schema.SessionStateReady,
	{schema.SessionStateIdle, eventExit}:                schema.SessionStateExiting,
	{schema.SessionStateReady, eventBegin}:              schema.SessionStateSynchronized,
	{schema.SessionStateSynchronized, eventBegin}:       schema.SessionStateVisible,
	{schema.SessionStateVisible, eventBegin}:            schema.SessionStateFocused,
	{schema.SessionStateFocused, eventRequestExit}:      schema.SessionStateVisible,
	{schema.SessionStateVisible, eventRequestExit}:      schema.SessionStateSynchronized,
	{schema.SessionStateSynchronized, eventRequestExit}: schema.SessionStateStopping,
	{schema.SessionStateStopping, eventRequestExit}:     schema.SessionStateStopping,
	{schema.SessionStateStopping, eventEnd}:             schema.SessionStateIdle,
}

// nextState looks up the transition for event from the current state.
func nextState(from schema.SessionState, event sessionEvent) (schema.SessionState, error) {
	to, ok := transitions[transitionKey{from: from, event: event}]
	if !ok {
		return from, fmt.Errorf("no transition from %s on %s", from, event)
	}
	return to, nil
}

// step applies one transition, notifying the sink before storing the new state.
func (s *Session) step(event sessionEvent) error {
	to, err := nextState(s.state, event)
	if err != nil {
		return err
	}
	s.changeState(to)
	return nil
}

// stepUntil applies event repeatedly until the session reaches target.
func (s *Session) stepUntil(event sessionEvent, target schema.SessionState) error {
	for s.state != target {
		if err := s.step(event); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) changeState(state schema.SessionState) {
	if s.sink != nil {
		s.sink.OnSessionStateChanged(schema.SessionStateEvent{
			SessionID: s.id,
			State:     state,
			Time:      s.sys.now(),
		})
	}
	s.logger.Debug("session state changed", "from", s.state, "to", state)
	s.state = state
}
