package core

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"pkt.systems/xrsession/internal/logx"
	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// WaitFrame blocks until the compositor admits the next frame and returns its
// predicted display time in the runtime timestamp domain.
func (s *Session) WaitFrame(ctx context.Context) (state schema.FrameState, err error) {
	const op = "wait frame"
	_, span := s.tracer.Start(ctx, "xrsession.WaitFrame")
	defer func() { endSpan(span, err) }()

	if aerr := s.checkAlive(op); aerr != nil {
		return schema.FrameState{}, s.fail(op, aerr)
	}
	if !s.state.IsRunning() {
		return schema.FrameState{}, s.fail(op, schema.Errorf(schema.ErrSessionNotRunning, op, "session is not running"))
	}

	// Cross-session synchronization of the clock is left to the caller.
	if _, err := s.sys.Clock.GetNowAndUpdate(); err != nil {
		return schema.FrameState{}, s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, err))
	}

	if s.compositor == nil {
		return schema.FrameState{ShouldRender: false}, nil
	}

	native, period, werr := s.compositor.WaitFrame()
	if werr != nil {
		return schema.FrameState{}, s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, werr))
	}
	if native <= 0 {
		return schema.FrameState{}, s.fail(op, schema.Errorf(schema.ErrRuntimeFailure, op, "got a negative display time '%d'", native))
	}
	displayTime := s.sys.Clock.MonotonicToTimestamp(native)
	if displayTime <= 0 {
		return schema.FrameState{}, s.fail(op, schema.Errorf(schema.ErrRuntimeFailure, op, "monotonic to timestamp conversion returned '%d'", displayTime))
	}

	state = schema.FrameState{
		ShouldRender:           s.state.ShouldRender(),
		PredictedDisplayTime:   displayTime,
		PredictedDisplayPeriod: period,
	}
	span.SetAttributes(
		attribute.Int64("xr.display_time", displayTime),
		attribute.Int64("xr.display_period", period),
		attribute.Bool("xr.should_render", state.ShouldRender),
	)
	logx.WithFrame(s.logger, displayTime).Trace("frame waited", "period", period, "should_render", state.ShouldRender)
	return state, nil
}

// BeginFrame opens a frame. Beginning while a frame is open discards the open
// frame and returns FrameDiscarded; the new frame stays open.
func (s *Session) BeginFrame(ctx context.Context) (result schema.FrameResult, err error) {
	const op = "begin frame"
	_, span := s.tracer.Start(ctx, "xrsession.BeginFrame")
	defer func() { endSpan(span, err) }()

	if aerr := s.checkAlive(op); aerr != nil {
		return schema.FrameSuccess, s.fail(op, aerr)
	}
	if !s.state.IsRunning() {
		return schema.FrameSuccess, s.fail(op, schema.Errorf(schema.ErrSessionNotRunning, op, "session is not running"))
	}

	result = schema.FrameSuccess
	if s.frameStarted {
		result = schema.FrameDiscarded
		if s.compositor != nil {
			if derr := s.compositor.DiscardFrame(); derr != nil {
				return result, s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, derr))
			}
		}
	}
	s.frameStarted = true
	if s.compositor != nil {
		if berr := s.compositor.BeginFrame(); berr != nil {
			return result, s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, berr))
		}
	}
	span.SetAttributes(attribute.String("xr.frame_result", result.String()))
	s.logger.Trace("frame begun", "result", result)
	return result, nil
}

// EndFrame validates every layer of the submission and, only if all pass,
// hands them to the compositor and commits.
func (s *Session) EndFrame(ctx context.Context, info FrameEndInfo) (err error) {
	const op = "end frame"
	_, span := s.tracer.Start(ctx, "xrsession.EndFrame", trace.WithAttributes(
		attribute.Int64("xr.display_time", info.DisplayTime),
		attribute.Int("xr.layer_count", len(info.Layers)),
	))
	defer func() { endSpan(span, err) }()

	if aerr := s.checkAlive(op); aerr != nil {
		return s.fail(op, aerr)
	}
	if !s.state.IsRunning() {
		return s.fail(op, schema.Errorf(schema.ErrSessionNotRunning, op, "session is not running"))
	}
	if !s.frameStarted {
		return s.fail(op, schema.Errorf(schema.ErrCallOrderInvalid, op, "frame not begun with BeginFrame"))
	}
	if info.DisplayTime <= 0 {
		return s.fail(op, schema.Errorf(schema.ErrTimeInvalid, op,
			"(frameEndInfo->displayTime == %d) zero or a negative value is not a valid time", info.DisplayTime))
	}

	if s.compositor == nil {
		s.frameStarted = false
		return nil
	}

	// Blend mode errors are reported even with zero layers.
	blend := schema.BlendModeFromEnvironment(info.EnvironmentBlendMode)
	if blend == 0 {
		return s.fail(op, schema.Errorf(schema.ErrValidationFailure, op,
			"(frameEndInfo->environmentBlendMode == 0x%08x) unknown environment blend mode", int(info.EnvironmentBlendMode)))
	}
	if !s.sys.Head.BlendModes().Has(blend) {
		return s.fail(op, schema.Errorf(schema.ErrEnvironmentBlendModeUnsupported, op,
			"(frameEndInfo->environmentBlendMode == %d) is not supported", int(info.EnvironmentBlendMode)))
	}

	if len(info.Layers) == 0 {
		if derr := s.compositor.DiscardFrame(); derr != nil {
			return s.fail(op, schema.WrapError(schema.ErrRuntimeFailure, op, derr))
		}
		s.frameStarted = false
		s.logger.Trace("frame discarded", "reason", "no layers")
		return nil
	}

	if verr := verifyLayers(op, info.Layers); verr != nil {
		return s.fail(op, verr)
	}

	invOffset := xrmath.Invert(s.sys.Head.TrackingOffset())
	if serr := s.submitLayers(op, blend, invOffset, info); serr != nil {
		// Drop the partially filled layer slot.
		s.frameStarted = false
		if derr := s.compositor.DiscardFrame(); derr != nil {
			serr = schema.WrapError(schema.ErrRuntimeFailure, op, errors.Join(serr, fmt.Errorf("discard frame: %w", derr)))
		}
		return s.fail(op, serr)
	}
	s.frameStarted = false
	logx.WithFrame(s.logger, info.DisplayTime).Trace("frame committed", "layers", len(info.Layers), "blend_mode", blend)
	return nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
