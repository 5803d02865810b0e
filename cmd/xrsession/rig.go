package main

import (
	"context"
	"time"

	"pkt.systems/pslog"
	"pkt.systems/xrsession/core"
	"pkt.systems/xrsession/internal/appconfig"
	"pkt.systems/xrsession/internal/sim"
	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/schema"
)

// rig is the system and backends a config describes.
type rig struct {
	sys        *core.System
	view       schema.ViewConfigurationType
	compositor *sim.Compositor
}

func buildRig(ctx context.Context, cfg appconfig.Config, source timekeeping.Source) (*rig, error) {
	view, err := cfg.System.ViewConfigurationType()
	if err != nil {
		return nil, err
	}
	mask, err := cfg.Device.BlendMask()
	if err != nil {
		return nil, err
	}
	if source == nil {
		source = timekeeping.Monotonic
	}
	clock, err := timekeeping.NewWithSource(source)
	if err != nil {
		return nil, err
	}
	device := sim.NewHeadDevice(clock, sim.DeviceOptions{
		AngularVelocity: cfg.Device.AngularVelocity.Vec3(),
		EyeHeight:       cfg.Device.EyeHeight,
		SampleLag:       millis(cfg.Device.SampleLagMillis),
		Fov:             cfg.Device.Fov.EyeFov(),
		BlendModes:      mask,
		TrackingOffset:  cfg.Device.TrackingOffset.Offset(),
	})
	r := &rig{
		sys: &core.System{
			Head:              device,
			ViewConfiguration: view,
			HeadlessEnabled:   cfg.System.HeadlessEnabled,
			Clock:             clock,
		},
		view: view,
	}
	if cfg.Compositor.Enabled {
		r.compositor, err = sim.NewCompositor(sim.CompositorOptions{
			Period:          millis(cfg.Compositor.FramePeriodMillis),
			Formats:         cfg.Compositor.Formats,
			SwapchainImages: cfg.Compositor.SwapchainImages,
			Logger:          pslog.Ctx(ctx),
			Source:          source,
		})
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *rig) newSession(ctx context.Context, cfg schema.SessionConfig, sink core.EventSink) (*core.Session, error) {
	deps := core.SessionDeps{EventSink: sink, Logger: pslog.Ctx(ctx)}
	if r.compositor != nil {
		deps.Compositor = r.compositor
	}
	return core.NewSession(ctx, r.sys, cfg, deps)
}

func millis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
