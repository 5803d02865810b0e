package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/schema"
)

type fakeClock struct {
	native int64
}

func (c *fakeClock) read() (int64, error) {
	return c.native, nil
}

type fakeDevice struct {
	relation   schema.SpaceRelation
	timestamp  int64
	offset     schema.Pose
	blendModes schema.BlendMode
	fov        [2]schema.Fov
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		relation: schema.SpaceRelation{
			Flags: schema.RelationOrientationValid | schema.RelationPositionValid,
			Pose:  schema.IdentityPose,
		},
		offset:     schema.IdentityPose,
		blendModes: schema.BlendModeOpaque,
		fov: [2]schema.Fov{
			{AngleLeft: -0.9, AngleRight: 0.7, AngleUp: 0.8, AngleDown: -0.8},
			{AngleLeft: -0.7, AngleRight: 0.9, AngleUp: 0.8, AngleDown: -0.8},
		},
	}
}

func (d *fakeDevice) RelationAt(at int64) (schema.SpaceRelation, int64) {
	return d.relation, d.timestamp
}

func (d *fakeDevice) ViewPose(eyeRelation schema.Vec3, view int) schema.Pose {
	x := eyeRelation.X / 2
	if view == 0 {
		x = -x
	}
	return schema.Pose{Orientation: schema.IdentityQuat, Position: schema.Vec3{X: x}}
}

func (d *fakeDevice) ViewFov(view int) schema.Fov {
	return d.fov[view]
}

func (d *fakeDevice) BlendModes() schema.BlendMode {
	return d.blendModes
}

func (d *fakeDevice) TrackingOffset() schema.Pose {
	return d.offset
}

type fakeImages struct {
	n int
}

func (f fakeImages) NumImages() int { return f.n }

type recordingCompositor struct {
	calls       []string
	quads       []QuadSubmission
	projections []StereoProjectionSubmission
	displayTime int64
	period      int64
	formats     []int64
	failOn      string
	discardErr  error
}

func (c *recordingCompositor) record(call string) error {
	c.calls = append(c.calls, call)
	if c.failOn == call {
		return fmt.Errorf("%s failed", call)
	}
	return nil
}

func (c *recordingCompositor) BeginSession(view schema.ViewConfigurationType) error {
	return c.record("begin_session")
}

func (c *recordingCompositor) EndSession() error { return c.record("end_session") }

func (c *recordingCompositor) WaitFrame() (int64, int64, error) {
	return c.displayTime, c.period, c.record("wait_frame")
}

func (c *recordingCompositor) BeginFrame() error { return c.record("begin_frame") }
func (c *recordingCompositor) DiscardFrame() error {
	if err := c.record("discard_frame"); err != nil {
		return err
	}
	return c.discardErr
}

func (c *recordingCompositor) LayerBegin(blend schema.BlendMode) error {
	return c.record(fmt.Sprintf("layer_begin:%d", blend))
}

func (c *recordingCompositor) LayerQuad(layer QuadSubmission) error {
	c.quads = append(c.quads, layer)
	return c.record("layer_quad")
}

func (c *recordingCompositor) LayerStereoProjection(layer StereoProjectionSubmission) error {
	c.projections = append(c.projections, layer)
	return c.record("layer_stereo_projection")
}

func (c *recordingCompositor) LayerCommit() error { return c.record("layer_commit") }
func (c *recordingCompositor) Formats() []int64   { return c.formats }
func (c *recordingCompositor) Destroy() error     { return c.record("destroy") }

type recordingSink struct {
	events    []schema.SessionStateEvent
	forgotten []schema.SessionID
}

func (r *recordingSink) OnSessionStateChanged(event schema.SessionStateEvent) {
	r.events = append(r.events, event)
}

func (r *recordingSink) ForgetSession(id schema.SessionID) {
	r.forgotten = append(r.forgotten, id)
}

func (r *recordingSink) states() []schema.SessionState {
	out := make([]schema.SessionState, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.State)
	}
	return out
}

func (r *recordingSink) reset() {
	r.events = nil
}

type fixture struct {
	sys        *System
	device     *fakeDevice
	clock      *fakeClock
	compositor *recordingCompositor
	sink       *recordingSink
	session    *Session
}

type fixtureOption func(*fixtureOptions)

type fixtureOptions struct {
	headless   bool
	noHeadless bool
	cfg        schema.SessionConfig
}

func withHeadless() fixtureOption {
	return func(o *fixtureOptions) { o.headless = true }
}

// withoutHeadlessPermission creates the system with headless sessions disabled.
func withoutHeadlessPermission() fixtureOption {
	return func(o *fixtureOptions) { o.noHeadless = true }
}

func withConfig(cfg schema.SessionConfig) fixtureOption {
	return func(o *fixtureOptions) { o.cfg = cfg }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()
	options := fixtureOptions{cfg: schema.SessionConfig{DynamicPrediction: true}}
	for _, opt := range opts {
		opt(&options)
	}
	clock := &fakeClock{native: 1_000_000_000}
	state, err := timekeeping.NewWithSource(clock.read)
	if err != nil {
		t.Fatalf("new clock: %v", err)
	}
	device := newFakeDevice()
	sys := &System{
		Head:              device,
		ViewConfiguration: schema.ViewConfigurationPrimaryStereo,
		HeadlessEnabled:   !options.noHeadless,
		Clock:             state,
	}
	f := &fixture{sys: sys, device: device, clock: clock, sink: &recordingSink{}}
	deps := SessionDeps{EventSink: f.sink}
	if !options.headless {
		f.compositor = &recordingCompositor{
			displayTime: clock.native + 16_000_000,
			period:      16_000_000,
			formats:     []int64{43, 29, 37},
		}
		deps.Compositor = f.compositor
	}
	session, err := NewSession(context.Background(), sys, options.cfg, deps)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	f.session = session
	return f
}

// running begins the session and clears recorded calls and events.
func (f *fixture) running(t *testing.T) *fixture {
	t.Helper()
	if err := f.session.Begin(context.Background(), schema.ViewConfigurationPrimaryStereo); err != nil {
		t.Fatalf("begin: %v", err)
	}
	f.sink.reset()
	if f.compositor != nil {
		f.compositor.calls = nil
	}
	return f
}

// frameOpen begins a frame on a running session and clears recorded calls.
func (f *fixture) frameOpen(t *testing.T) *fixture {
	t.Helper()
	f.running(t)
	if _, err := f.session.BeginFrame(context.Background()); err != nil {
		t.Fatalf("begin frame: %v", err)
	}
	if f.compositor != nil {
		f.compositor.calls = nil
	}
	return f
}

func releasedSwapchain(t *testing.T, images int) *Swapchain {
	t.Helper()
	sc, err := NewSwapchain(fakeImages{n: images})
	if err != nil {
		t.Fatalf("new swapchain: %v", err)
	}
	if _, err := sc.AcquireImage(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := sc.WaitImage(); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if err := sc.ReleaseImage(); err != nil {
		t.Fatalf("release: %v", err)
	}
	return sc
}

func validQuad(t *testing.T) *QuadLayer {
	t.Helper()
	return &QuadLayer{
		Space:    &schema.Space{Type: schema.ReferenceSpaceLocal, Pose: schema.IdentityPose, IsReference: true},
		SubImage: SwapchainSubImage{Swapchain: releasedSwapchain(t, 3), ImageRect: schema.Rect2Di{Extent: schema.Extent2Di{Width: 512, Height: 512}}},
		Pose:     schema.Pose{Orientation: schema.IdentityQuat, Position: schema.Vec3{Z: -2}},
		Size:     schema.Vec2{X: 1, Y: 0.5},
	}
}

func validProjection(t *testing.T) *ProjectionLayer {
	t.Helper()
	view := func(x float64) ProjectionView {
		return ProjectionView{
			Pose:     schema.Pose{Orientation: schema.IdentityQuat, Position: schema.Vec3{X: x}},
			Fov:      schema.Fov{AngleLeft: -0.8, AngleRight: 0.8, AngleUp: 0.8, AngleDown: -0.8},
			SubImage: SwapchainSubImage{Swapchain: releasedSwapchain(t, 3)},
		}
	}
	return &ProjectionLayer{
		Space: &schema.Space{Type: schema.ReferenceSpaceLocal, Pose: schema.IdentityPose, IsReference: true},
		Views: []ProjectionView{view(-0.0315), view(0.0315)},
	}
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
