package core

import (
	"go.opentelemetry.io/otel/trace"
	"pkt.systems/pslog"
)

// SessionDeps captures the collaborators a session is created with.
type SessionDeps struct {
	// Compositor is owned by the session once created. Nil creates a headless session.
	Compositor Compositor
	EventSink  EventSink
	Logger     pslog.Logger
	Tracer     trace.Tracer
}
