package core

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"pkt.systems/xrsession/schema"
)

func TestWaitFrameRequiresRunning(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.WaitFrame(context.Background())
	requireKind(t, err, schema.ErrSessionNotRunning)
}

func TestWaitFrameConvertsDisplayTime(t *testing.T) {
	f := newFixture(t).running(t)
	f.clock.native += 5_000_000
	state, err := f.session.WaitFrame(context.Background())
	if err != nil {
		t.Fatalf("wait frame: %v", err)
	}
	want := schema.FrameState{
		ShouldRender:           true,
		PredictedDisplayTime:   16_000_001,
		PredictedDisplayPeriod: 16_000_000,
	}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("frame state mismatch (-want +got):\n%s", diff)
	}
	if got := f.sys.Clock.Now(); got != 5_000_001 {
		t.Fatalf("expected clock updated to 5000001, got %d", got)
	}
}

func TestWaitFrameShouldRenderFollowsState(t *testing.T) {
	f := newFixture(t).running(t)
	f.session.state = schema.SessionStateSynchronized
	state, err := f.session.WaitFrame(context.Background())
	if err != nil {
		t.Fatalf("wait frame: %v", err)
	}
	if state.ShouldRender {
		t.Fatalf("expected should render false while synchronized")
	}
}

func TestWaitFrameRejectsBadDisplayTime(t *testing.T) {
	cases := []struct {
		name   string
		native int64
	}{
		{name: "negative native", native: -1},
		{name: "zero native", native: 0},
		{name: "before clock origin", native: 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t).running(t)
			f.compositor.displayTime = tc.native
			state, err := f.session.WaitFrame(context.Background())
			requireKind(t, err, schema.ErrRuntimeFailure)
			if state != (schema.FrameState{}) {
				t.Fatalf("expected zero frame state, got %+v", state)
			}
		})
	}
}

func TestWaitFrameHeadlessNeverRenders(t *testing.T) {
	f := newFixture(t, withHeadless()).running(t)
	f.clock.native += 1_000
	state, err := f.session.WaitFrame(context.Background())
	if err != nil {
		t.Fatalf("wait frame: %v", err)
	}
	if state.ShouldRender || state.PredictedDisplayTime != 0 {
		t.Fatalf("expected empty headless frame state, got %+v", state)
	}
	if got := f.sys.Clock.Now(); got != 1_001 {
		t.Fatalf("expected clock updated, got %d", got)
	}
}

func TestBeginFrameRequiresRunning(t *testing.T) {
	f := newFixture(t)
	_, err := f.session.BeginFrame(context.Background())
	requireKind(t, err, schema.ErrSessionNotRunning)
	if f.session.FrameStarted() {
		t.Fatalf("frame opened on failure")
	}
}

func TestBeginFrameTwiceDiscards(t *testing.T) {
	f := newFixture(t).running(t)
	ctx := context.Background()
	first, err := f.session.BeginFrame(ctx)
	if err != nil || first != schema.FrameSuccess {
		t.Fatalf("first begin frame: %s %v", first, err)
	}
	second, err := f.session.BeginFrame(ctx)
	if err != nil {
		t.Fatalf("second begin frame: %v", err)
	}
	if second != schema.FrameDiscarded {
		t.Fatalf("expected discarded, got %s", second)
	}
	if !f.session.FrameStarted() {
		t.Fatalf("expected frame open")
	}
	want := []string{"begin_frame", "discard_frame", "begin_frame"}
	if diff := cmp.Diff(want, f.compositor.calls); diff != "" {
		t.Fatalf("compositor calls mismatch (-want +got):\n%s", diff)
	}
}

func TestBeginFrameHeadlessTracksFrame(t *testing.T) {
	f := newFixture(t, withHeadless()).running(t)
	ctx := context.Background()
	if _, err := f.session.BeginFrame(ctx); err != nil {
		t.Fatalf("begin frame: %v", err)
	}
	result, err := f.session.BeginFrame(ctx)
	if err != nil || result != schema.FrameDiscarded {
		t.Fatalf("expected discarded, got %s %v", result, err)
	}
}

func TestEndFrameRequiresRunning(t *testing.T) {
	f := newFixture(t)
	err := f.session.EndFrame(context.Background(), FrameEndInfo{DisplayTime: 1, EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque})
	requireKind(t, err, schema.ErrSessionNotRunning)
}

func TestEndFrameRequiresBegunFrame(t *testing.T) {
	f := newFixture(t).running(t)
	err := f.session.EndFrame(context.Background(), FrameEndInfo{DisplayTime: 1, EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque})
	requireKind(t, err, schema.ErrCallOrderInvalid)
	if len(f.compositor.calls) != 0 {
		t.Fatalf("expected no compositor calls, got %v", f.compositor.calls)
	}
}

func TestEndFrameRejectsNonPositiveDisplayTime(t *testing.T) {
	for _, displayTime := range []int64{0, -5} {
		f := newFixture(t).frameOpen(t)
		// Invalid layers and blend mode must not mask the time error.
		err := f.session.EndFrame(context.Background(), FrameEndInfo{
			DisplayTime:          displayTime,
			EnvironmentBlendMode: 0,
			Layers:               []Layer{nil},
		})
		requireKind(t, err, schema.ErrTimeInvalid)
		if !f.session.FrameStarted() {
			t.Fatalf("frame closed on failure")
		}
		if len(f.compositor.calls) != 0 {
			t.Fatalf("expected no compositor calls, got %v", f.compositor.calls)
		}
	}
}

func TestEndFrameHeadlessClosesFrame(t *testing.T) {
	f := newFixture(t, withHeadless()).frameOpen(t)
	err := f.session.EndFrame(context.Background(), FrameEndInfo{DisplayTime: 10, Layers: []Layer{nil}})
	if err != nil {
		t.Fatalf("end frame: %v", err)
	}
	if f.session.FrameStarted() {
		t.Fatalf("expected frame closed")
	}
}

func TestEndFrameZeroLayersDiscards(t *testing.T) {
	f := newFixture(t).frameOpen(t)
	err := f.session.EndFrame(context.Background(), FrameEndInfo{DisplayTime: 10, EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque})
	if err != nil {
		t.Fatalf("end frame: %v", err)
	}
	if diff := cmp.Diff([]string{"discard_frame"}, f.compositor.calls); diff != "" {
		t.Fatalf("compositor calls mismatch (-want +got):\n%s", diff)
	}
	if f.session.FrameStarted() {
		t.Fatalf("expected frame closed")
	}
}

func TestEndFrameBlendModeCheckedBeforeLayerCount(t *testing.T) {
	cases := []struct {
		name  string
		blend schema.EnvironmentBlendMode
		kind  error
	}{
		{name: "unknown", blend: 42, kind: schema.ErrValidationFailure},
		{name: "unsupported", blend: schema.EnvironmentBlendModeAdditive, kind: schema.ErrEnvironmentBlendModeUnsupported},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t).frameOpen(t)
			err := f.session.EndFrame(context.Background(), FrameEndInfo{DisplayTime: 10, EnvironmentBlendMode: tc.blend})
			requireKind(t, err, tc.kind)
			if len(f.compositor.calls) != 0 {
				t.Fatalf("expected no compositor calls, got %v", f.compositor.calls)
			}
			if !f.session.FrameStarted() {
				t.Fatalf("frame closed on failure")
			}
		})
	}
}

func TestEndFrameSubmitsLayersInOrder(t *testing.T) {
	f := newFixture(t)
	f.device.blendModes = schema.BlendModeOpaque | schema.BlendModeAdditive
	f.frameOpen(t)

	quad := validQuad(t)
	quad.Flags = schema.LayerFlags(1)
	proj := validProjection(t)
	err := f.session.EndFrame(context.Background(), FrameEndInfo{
		DisplayTime:          99,
		EnvironmentBlendMode: schema.EnvironmentBlendModeAdditive,
		Layers:               []Layer{quad, proj},
	})
	if err != nil {
		t.Fatalf("end frame: %v", err)
	}
	want := []string{"layer_begin:2", "layer_quad", "layer_stereo_projection", "layer_commit"}
	if diff := cmp.Diff(want, f.compositor.calls); diff != "" {
		t.Fatalf("compositor calls mismatch (-want +got):\n%s", diff)
	}
	if f.session.FrameStarted() {
		t.Fatalf("expected frame closed")
	}

	got := f.compositor.quads[0]
	if got.DisplayTime != 99 || got.Flags != quad.Flags || got.Size != quad.Size {
		t.Fatalf("unexpected quad submission %+v", got)
	}
	if got.Image.Index != quad.SubImage.Swapchain.ReleasedIndex() {
		t.Fatalf("expected released image %d, got %d", quad.SubImage.Swapchain.ReleasedIndex(), got.Image.Index)
	}
	stereo := f.compositor.projections[0]
	if stereo.Left.Fov != proj.Views[0].Fov || stereo.Right.Pose != proj.Views[1].Pose {
		t.Fatalf("unexpected projection submission %+v", stereo)
	}
}

func TestEndFrameAppliesInverseTrackingOffset(t *testing.T) {
	f := newFixture(t)
	f.device.offset = schema.Pose{Orientation: schema.IdentityQuat, Position: schema.Vec3{Y: 1}}
	f.frameOpen(t)

	err := f.session.EndFrame(context.Background(), FrameEndInfo{
		DisplayTime:          10,
		EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
		Layers:               []Layer{validQuad(t)},
	})
	if err != nil {
		t.Fatalf("end frame: %v", err)
	}
	got := f.compositor.quads[0].Pose.Position
	want := schema.Vec3{X: 0, Y: -1, Z: -2}
	if math.Abs(got.X-want.X) > 1e-9 || math.Abs(got.Y-want.Y) > 1e-9 || math.Abs(got.Z-want.Z) > 1e-9 {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEndFrameInvalidLayerSubmitsNothing(t *testing.T) {
	badQuad := func(t *testing.T) Layer {
		q := validQuad(t)
		q.Pose.Orientation = schema.Quat{W: 2}
		return q
	}
	threeViews := func(t *testing.T) Layer {
		p := validProjection(t)
		p.Views = append(p.Views, p.Views[0])
		return p
	}
	cases := []struct {
		name   string
		layers func(t *testing.T) []Layer
		kind   error
	}{
		{
			name:   "non unit quad orientation",
			layers: func(t *testing.T) []Layer { return []Layer{badQuad(t)} },
			kind:   schema.ErrPoseInvalid,
		},
		{
			name:   "three projection views after a valid quad",
			layers: func(t *testing.T) []Layer { return []Layer{validQuad(t), threeViews(t)} },
			kind:   schema.ErrValidationFailure,
		},
		{
			name:   "valid projection then nil layer",
			layers: func(t *testing.T) []Layer { return []Layer{validProjection(t), nil} },
			kind:   schema.ErrLayerInvalid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t).frameOpen(t)
			err := f.session.EndFrame(context.Background(), FrameEndInfo{
				DisplayTime:          10,
				EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
				Layers:               tc.layers(t),
			})
			requireKind(t, err, tc.kind)
			if len(f.compositor.calls) != 0 {
				t.Fatalf("expected no compositor calls, got %v", f.compositor.calls)
			}
			if !f.session.FrameStarted() {
				t.Fatalf("frame closed on failure")
			}
		})
	}
}

func TestEndFrameBackendFailureIsRuntimeFailure(t *testing.T) {
	f := newFixture(t).frameOpen(t)
	f.compositor.failOn = "layer_commit"
	err := f.session.EndFrame(context.Background(), FrameEndInfo{
		DisplayTime:          10,
		EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
		Layers:               []Layer{validQuad(t)},
	})
	requireKind(t, err, schema.ErrRuntimeFailure)
}

func TestEndFrameBackendFailureDiscardsPartialFrame(t *testing.T) {
	tests := []struct {
		name   string
		failOn string
		want   []string
	}{
		{
			name:   "layer",
			failOn: "layer_stereo_projection",
			want:   []string{"layer_begin:1", "layer_quad", "layer_stereo_projection", "discard_frame"},
		},
		{
			name:   "commit",
			failOn: "layer_commit",
			want:   []string{"layer_begin:1", "layer_quad", "layer_stereo_projection", "layer_commit", "discard_frame"},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t).frameOpen(t)
			f.compositor.failOn = tc.failOn
			err := f.session.EndFrame(context.Background(), FrameEndInfo{
				DisplayTime:          10,
				EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
				Layers:               []Layer{validQuad(t), validProjection(t)},
			})
			requireKind(t, err, schema.ErrRuntimeFailure)
			if diff := cmp.Diff(tc.want, f.compositor.calls); diff != "" {
				t.Fatalf("compositor calls mismatch (-want +got):\n%s", diff)
			}
			if f.session.FrameStarted() {
				t.Fatalf("expected frame closed after failed submission")
			}
		})
	}
}

func TestEndFrameDiscardFailureAfterSubmitFailure(t *testing.T) {
	f := newFixture(t).frameOpen(t)
	f.compositor.failOn = "layer_commit"
	f.compositor.discardErr = errors.New("discard failed")
	err := f.session.EndFrame(context.Background(), FrameEndInfo{
		DisplayTime:          10,
		EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
		Layers:               []Layer{validQuad(t)},
	})
	requireKind(t, err, schema.ErrRuntimeFailure)
	if !strings.Contains(err.Error(), "layer_commit failed") || !strings.Contains(err.Error(), "discard failed") {
		t.Fatalf("expected both failures reported, got %v", err)
	}
	if f.session.FrameStarted() {
		t.Fatalf("expected frame closed")
	}
}

func TestFrameLoopAfterEnd(t *testing.T) {
	f := newFixture(t).running(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.session.WaitFrame(ctx); err != nil {
			t.Fatalf("wait frame %d: %v", i, err)
		}
		if _, err := f.session.BeginFrame(ctx); err != nil {
			t.Fatalf("begin frame %d: %v", i, err)
		}
		err := f.session.EndFrame(ctx, FrameEndInfo{
			DisplayTime:          int64(i + 1),
			EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
			Layers:               []Layer{validProjection(t)},
		})
		if err != nil {
			t.Fatalf("end frame %d: %v", i, err)
		}
	}
	if len(f.compositor.projections) != 3 {
		t.Fatalf("expected 3 projections, got %d", len(f.compositor.projections))
	}
}
