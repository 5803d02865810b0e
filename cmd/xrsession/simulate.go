package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/xrsession/core"
	"pkt.systems/xrsession/internal/appconfig"
	"pkt.systems/xrsession/internal/eventbus"
	"pkt.systems/xrsession/internal/logx"
	"pkt.systems/xrsession/internal/telemetry"
	"pkt.systems/xrsession/schema"
)

const (
	eyeWidth  = 1440
	eyeHeight = 1600
	quadSize  = 512
)

func newSimulateCmd() *cobra.Command {
	var cfgPath string
	var frames int
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one session through its frame loop against the simulated head",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := pslog.Ctx(ctx)
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				cfg.Simulation.Frames = frames
			}
			opts, err := appconfig.LoadDebugOptions()
			if err != nil {
				return err
			}
			sessionCfg, err := opts.SessionConfig()
			if err != nil {
				return err
			}

			shutdown, err := telemetry.Setup(ctx, "xrsession")
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Warn("telemetry shutdown failed", "err", err)
				}
			}()

			r, err := buildRig(ctx, cfg, nil)
			if err != nil {
				return err
			}
			summary, err := simulate(ctx, r, cfg.Simulation, sessionCfg)
			if err != nil {
				return err
			}
			return summary.write(cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config path (default ~/.xrsession/config.yaml)")
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "number of frames to run (overrides simulation.frames)")
	return cmd
}

// simulation is what one simulated session went through.
type simulation struct {
	Session  schema.SessionID
	Frames   int
	Rendered int
	States   []schema.SessionState
	Final    schema.SessionState
	Stats    *simStats
}

type simStats struct {
	Committed int
	Discarded int
	Layers    int
}

func (s simulation) write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "session %s: %d frames, %d rendered, final state %s\n", s.Session, s.Frames, s.Rendered, s.Final); err != nil {
		return err
	}
	if s.Stats != nil {
		if _, err := fmt.Fprintf(w, "compositor: %d committed, %d discarded, %d layers\n", s.Stats.Committed, s.Stats.Discarded, s.Stats.Layers); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "states: %v\n", s.States)
	return err
}

// simulate drives a session from creation to destruction, recording every
// state event through the bus.
func simulate(ctx context.Context, r *rig, cfg appconfig.SimulationConfig, sessionCfg schema.SessionConfig) (result simulation, err error) {
	bus := eventbus.New(pslog.Ctx(ctx))
	events, cancel := bus.Subscribe(eventbus.AllSessions)
	recorder, err := newEventRecorder(ctx, cfg.EventLog)
	if err != nil {
		cancel()
		return simulation{}, err
	}
	var states []schema.SessionState
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range events {
			recorder.record(event)
			states = append(states, event.State.State)
		}
	}()
	defer func() {
		cancel()
		<-done
		result.States = states
		if cerr := recorder.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	session, err := r.newSession(ctx, sessionCfg, bus)
	if err != nil {
		return simulation{}, err
	}
	result.Session = session.ID()
	ctx = logx.ContextWithSessionLogger(ctx, logx.WithSessionCtx(ctx, session.ID()), session.ID())
	defer func() {
		if derr := session.Destroy(ctx); derr != nil {
			err = errors.Join(err, derr)
		}
	}()

	if err := session.Begin(ctx, r.view); err != nil {
		return result, err
	}
	layers, err := newLayerSet(r, cfg.QuadLayer)
	if err != nil {
		return result, err
	}
	for i := 0; i < cfg.Frames; i++ {
		rendered, err := runFrame(ctx, r, session, layers)
		if err != nil {
			return result, fmt.Errorf("frame %d: %w", i, err)
		}
		result.Frames++
		if rendered {
			result.Rendered++
		}
	}
	if err := session.RequestExit(ctx); err != nil {
		return result, err
	}
	if err := session.End(ctx); err != nil {
		return result, err
	}
	result.Final = session.State()
	if r.compositor != nil {
		stats := r.compositor.Stats()
		result.Stats = &simStats{
			Committed: stats.Committed,
			Discarded: stats.Discarded,
			Layers:    stats.Quads + stats.Projection,
		}
	}
	return result, nil
}

// layerSet holds the swapchains the simulated application renders into.
type layerSet struct {
	space *schema.Space
	eyes  [2]*core.Swapchain
	quad  *core.Swapchain
}

func newLayerSet(r *rig, withQuad bool) (*layerSet, error) {
	set := &layerSet{
		space: &schema.Space{Type: schema.ReferenceSpaceLocal, Pose: schema.IdentityPose, IsReference: true},
	}
	if r.compositor == nil {
		return set, nil
	}
	formats := r.compositor.Formats()
	if len(formats) == 0 {
		return nil, errors.New("compositor offers no swapchain formats")
	}
	for i := range set.eyes {
		images, err := r.compositor.CreateSwapchain(formats[0], eyeWidth, eyeHeight)
		if err != nil {
			return nil, err
		}
		if set.eyes[i], err = core.NewSwapchain(images); err != nil {
			return nil, err
		}
	}
	if withQuad {
		images, err := r.compositor.CreateSwapchain(formats[0], quadSize, quadSize)
		if err != nil {
			return nil, err
		}
		if set.quad, err = core.NewSwapchain(images); err != nil {
			return nil, err
		}
	}
	return set, nil
}

// runFrame performs one wait/begin/end cycle and reports whether layers were submitted.
func runFrame(ctx context.Context, r *rig, session *core.Session, layers *layerSet) (bool, error) {
	state, err := session.WaitFrame(ctx)
	if err != nil {
		return false, err
	}
	if _, err := session.BeginFrame(ctx); err != nil {
		return false, err
	}

	displayTime := state.PredictedDisplayTime
	if displayTime <= 0 {
		// Headless frames carry no prediction.
		displayTime = r.sys.Clock.Now()
	}
	info := core.FrameEndInfo{
		DisplayTime:          displayTime,
		EnvironmentBlendMode: schema.EnvironmentBlendModeOpaque,
	}
	if state.ShouldRender {
		frameLayers, err := layers.render(ctx, session, displayTime)
		if err != nil {
			return false, err
		}
		info.Layers = frameLayers
	}
	if err := session.EndFrame(ctx, info); err != nil {
		return false, err
	}
	return len(info.Layers) > 0, nil
}

func (l *layerSet) render(ctx context.Context, session *core.Session, displayTime int64) ([]core.Layer, error) {
	located, err := session.LocateViews(ctx, core.ViewLocateInfo{Space: l.space, DisplayTime: displayTime}, len(l.eyes))
	if err != nil {
		return nil, err
	}
	proj := &core.ProjectionLayer{Space: l.space}
	for i, sc := range l.eyes {
		if err := cycleImage(sc); err != nil {
			return nil, err
		}
		proj.Views = append(proj.Views, core.ProjectionView{
			Pose: located.Views[i].Pose,
			Fov:  located.Views[i].Fov,
			SubImage: core.SwapchainSubImage{
				Swapchain: sc,
				ImageRect: schema.Rect2Di{Extent: schema.Extent2Di{Width: eyeWidth, Height: eyeHeight}},
			},
		})
	}
	out := []core.Layer{proj}
	if l.quad != nil {
		if err := cycleImage(l.quad); err != nil {
			return nil, err
		}
		out = append(out, &core.QuadLayer{
			Space: l.space,
			SubImage: core.SwapchainSubImage{
				Swapchain: l.quad,
				ImageRect: schema.Rect2Di{Extent: schema.Extent2Di{Width: quadSize, Height: quadSize}},
			},
			Pose: schema.Pose{Orientation: schema.IdentityQuat, Position: schema.Vec3{Y: 1.5, Z: -2}},
			Size: schema.Vec2{X: 1, Y: 1},
		})
	}
	return out, nil
}

// cycleImage renders one image: acquire, wait, release.
func cycleImage(sc *core.Swapchain) error {
	if _, err := sc.AcquireImage(); err != nil {
		return err
	}
	if _, err := sc.WaitImage(); err != nil {
		return err
	}
	return sc.ReleaseImage()
}

// eventRecorder writes session state events to the process log and, when
// configured, to a JSON lines event log.
type eventRecorder struct {
	logger pslog.Logger
	file   *os.File
	sink   pslog.Logger
}

func newEventRecorder(ctx context.Context, path string) (*eventRecorder, error) {
	rec := &eventRecorder{logger: pslog.Ctx(ctx)}
	if path == "" {
		return rec, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	rec.file = f
	rec.sink = pslog.NewWithOptions(f, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.InfoLevel,
	})
	return rec, nil
}

func (r *eventRecorder) record(event eventbus.Event) {
	state := event.State
	r.logger.Info("session state", "session", state.SessionID, "state", state.State, "time", state.Time)
	if r.sink != nil {
		r.sink.Info(string(event.Type), "session", state.SessionID, "state", state.State.String(), "time", state.Time)
	}
}

func (r *eventRecorder) close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}
