package core

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/pslog"
	"pkt.systems/xrsession/internal/logx"
	"pkt.systems/xrsession/schema"
)

const tracerName = "pkt.systems/xrsession/core"

// Session is one application's rendering relationship with the runtime.
//
// A Session is not safe for concurrent use; callers serialize calls to it.
type Session struct {
	id         schema.SessionID
	sys        *System
	compositor Compositor
	sink       EventSink
	logger     pslog.Logger
	tracer     trace.Tracer

	state        schema.SessionState
	frameStarted bool
	exiting      bool
	destroyed    bool

	ipdMeters         float64
	staticPrediction  float64
	dynamicPrediction bool
	debugViews        bool
}

// NewSession creates a session against sys. The session takes ownership of
// deps.Compositor. Without a compositor the session is headless, which the
// system must permit.
func NewSession(ctx context.Context, sys *System, cfg schema.SessionConfig, deps SessionDeps) (*Session, error) {
	if ctx == nil {
		return nil, errors.New("missing context")
	}
	if err := sys.Validate(); err != nil {
		return nil, schema.WrapError(schema.ErrValidationFailure, "create session", err)
	}
	if deps.Compositor == nil && !sys.HeadlessEnabled {
		return nil, schema.Errorf(schema.ErrValidationFailure, "create session", "no compositor given and headless sessions are not enabled")
	}
	normalized, err := schema.NormalizeSessionConfig(cfg)
	if err != nil {
		return nil, schema.WrapError(schema.ErrValidationFailure, "create session", err)
	}
	cfg = normalized

	id := newSessionID()
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	logger = logx.WithSession(logger, id)
	tracer := deps.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	s := &Session{
		id:                id,
		sys:               sys,
		compositor:        deps.Compositor,
		sink:              deps.EventSink,
		logger:            logger,
		tracer:            tracer,
		state:             schema.SessionStateIdle,
		ipdMeters:         cfg.IPDMeters(),
		staticPrediction:  cfg.StaticPredictionSeconds(),
		dynamicPrediction: cfg.DynamicPrediction,
		debugViews:        cfg.DebugViews,
	}
	s.changeState(schema.SessionStateIdle)
	if err := s.step(eventReady); err != nil {
		return nil, err
	}
	logger.Info("session created", "headless", s.Headless(), "ipd_m", s.ipdMeters, "prediction_s", s.staticPrediction, "dynamic_prediction", s.dynamicPrediction)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() schema.SessionID {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() schema.SessionState {
	return s.state
}

// FrameStarted reports whether a frame is open.
func (s *Session) FrameStarted() bool {
	return s.frameStarted
}

// Exiting reports whether exit has been requested.
func (s *Session) Exiting() bool {
	return s.exiting
}

// Headless reports whether the session runs without a compositor.
func (s *Session) Headless() bool {
	return s.compositor == nil
}

// Begin starts rendering with the given primary view configuration.
func (s *Session) Begin(ctx context.Context, viewType schema.ViewConfigurationType) error {
	const op = "begin session"
	if err := s.checkAlive(op); err != nil {
		return s.fail(op, err)
	}
	if s.state.IsRunning() {
		return s.fail(op, schema.Errorf(schema.ErrSessionRunning, op, "session is already running"))
	}
	if s.state == schema.SessionStateExiting {
		return s.fail(op, schema.Errorf(schema.ErrCallOrderInvalid, op, "session is exiting and must be destroyed"))
	}
	if s.compositor != nil {
		if viewType != s.sys.ViewConfiguration {
			return s.fail(op, schema.Errorf(schema.ErrViewConfigurationUnsupported, op,
				"(primaryViewConfigurationType == %s) system only supports %s", viewType, s.sys.ViewConfiguration))
		}
		if err := s.compositor.BeginSession(viewType); err != nil {
			return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
		}
	}
	if err := s.stepUntil(eventBegin, schema.SessionStateFocused); err != nil {
		return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
	}
	s.logger.Info("session begun", "view_configuration", viewType)
	return nil
}

// End stops rendering. The session must be STOPPING.
func (s *Session) End(ctx context.Context) error {
	const op = "end session"
	if err := s.checkAlive(op); err != nil {
		return s.fail(op, err)
	}
	if !s.state.IsRunning() {
		return s.fail(op, schema.Errorf(schema.ErrSessionNotRunning, op, "session is not running"))
	}
	if s.state != schema.SessionStateStopping {
		return s.fail(op, schema.Errorf(schema.ErrSessionNotStopping, op, "session is %s, not stopping", s.state))
	}
	if s.compositor != nil {
		if s.frameStarted {
			if err := s.compositor.DiscardFrame(); err != nil {
				return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
			}
			s.frameStarted = false
		}
		if err := s.compositor.EndSession(); err != nil {
			return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
		}
	}
	s.frameStarted = false
	if err := s.step(eventEnd); err != nil {
		return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
	}
	next := eventReady
	if s.exiting {
		next = eventExit
	}
	if err := s.step(next); err != nil {
		return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
	}
	s.logger.Info("session ended", "state", s.state)
	return nil
}

// RequestExit walks a running session down to SYNCHRONIZED, then forces
// STOPPING and marks it exiting. A session already STOPPING is notified again.
func (s *Session) RequestExit(ctx context.Context) error {
	const op = "request exit"
	if err := s.checkAlive(op); err != nil {
		return s.fail(op, err)
	}
	if !s.state.IsRunning() {
		return s.fail(op, schema.Errorf(schema.ErrSessionNotRunning, op, "session is not running"))
	}
	if s.state != schema.SessionStateStopping {
		if err := s.stepUntil(eventRequestExit, schema.SessionStateSynchronized); err != nil {
			return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
		}
	}
	if err := s.step(eventRequestExit); err != nil {
		return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
	}
	s.exiting = true
	s.logger.Info("session exit requested")
	return nil
}

// Destroy releases everything the session owns. It is safe to call more than once.
func (s *Session) Destroy(ctx context.Context) error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	var errs []error
	if s.compositor != nil {
		if s.frameStarted {
			if err := s.compositor.DiscardFrame(); err != nil {
				errs = append(errs, fmt.Errorf("discard frame: %w", err))
			}
		}
		if err := s.compositor.Destroy(); err != nil {
			errs = append(errs, fmt.Errorf("destroy compositor: %w", err))
		}
		s.compositor = nil
	}
	s.frameStarted = false
	if s.sink != nil {
		s.sink.ForgetSession(s.id)
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("session destroy failed", "err", err)
		return err
	}
	s.logger.Info("session destroyed")
	return nil
}

// EnumerateFormats lists the compositor's swapchain formats using the two-call idiom.
func (s *Session) EnumerateFormats(ctx context.Context, capacity int) (EnumerateFormatsResponse, error) {
	const op = "enumerate swapchain formats"
	if err := s.checkAlive(op); err != nil {
		return EnumerateFormatsResponse{}, s.fail(op, err)
	}
	if s.compositor == nil {
		return EnumerateFormatsResponse{}, nil
	}
	count, formats, err := twoCall(op, "formatCapacityInput", capacity, s.compositor.Formats())
	if err != nil {
		return EnumerateFormatsResponse{FormatCount: count}, s.fail(op, err)
	}
	return EnumerateFormatsResponse{FormatCount: count, Formats: formats}, nil
}

// checkAlive rejects every call on a destroyed session. Destroy drops the
// compositor, so a destroyed session must never fall through to the headless paths.
func (s *Session) checkAlive(op string) *schema.Error {
	if s.destroyed {
		return schema.Errorf(schema.ErrCallOrderInvalid, op, "session destroyed")
	}
	return nil
}

// fail logs a classified error once and returns it.
func (s *Session) fail(op string, err *schema.Error) error {
	s.logger.Warn("session call failed", "op", op, "kind", err.Kind, "state", s.state, "err", err.Error())
	return err
}
