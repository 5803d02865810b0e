// Package sim provides a simulated head device and a paced compositor so
// sessions can run without hardware.
package sim

import (
	"time"

	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// DeviceOptions configures a HeadDevice.
type DeviceOptions struct {
	// AngularVelocity is the constant head spin in radians per second.
	AngularVelocity schema.Vec3
	EyeHeight       float64
	// SampleLag is how far the latest pose sample trails the clock.
	SampleLag      time.Duration
	Fov            schema.Fov
	BlendModes     schema.BlendMode
	TrackingOffset schema.Pose
}

// HeadDevice is a head that spins at a constant rate from the identity pose.
type HeadDevice struct {
	clock *timekeeping.State
	opts  DeviceOptions
}

// NewHeadDevice creates a head device sampling the given clock.
func NewHeadDevice(clock *timekeeping.State, opts DeviceOptions) *HeadDevice {
	if opts.BlendModes == 0 {
		opts.BlendModes = schema.BlendModeOpaque
	}
	if opts.TrackingOffset == (schema.Pose{}) {
		opts.TrackingOffset = schema.IdentityPose
	}
	return &HeadDevice{clock: clock, opts: opts}
}

// RelationAt returns the latest sample, which trails the clock by the sample lag.
func (d *HeadDevice) RelationAt(at int64) (schema.SpaceRelation, int64) {
	timestamp := d.clock.Now() - d.opts.SampleLag.Nanoseconds()
	if timestamp < 1 {
		timestamp = 1
	}
	orientation := xrmath.QuatIntegrateVelocity(schema.IdentityQuat, d.opts.AngularVelocity,
		timekeeping.NanosecondsToSeconds(timestamp))
	return schema.SpaceRelation{
		Flags: schema.RelationOrientationValid | schema.RelationPositionValid |
			schema.RelationOrientationTracked | schema.RelationPositionTracked |
			schema.RelationAngularVelocityValid,
		Pose: schema.Pose{
			Orientation: orientation,
			Position:    schema.Vec3{Y: d.opts.EyeHeight},
		},
		AngularVelocity: d.opts.AngularVelocity,
	}, timestamp
}

// ViewPose places each eye half the eye relation to its side; view 0 is the left eye.
func (d *HeadDevice) ViewPose(eyeRelation schema.Vec3, view int) schema.Pose {
	sign := 0.5
	if view == 0 {
		sign = -0.5
	}
	return schema.Pose{
		Orientation: schema.IdentityQuat,
		Position:    schema.Vec3{X: eyeRelation.X * sign, Y: eyeRelation.Y * sign, Z: eyeRelation.Z * sign},
	}
}

// ViewFov returns the same field of view for both eyes.
func (d *HeadDevice) ViewFov(view int) schema.Fov {
	return d.opts.Fov
}

// BlendModes returns the supported blend mode mask.
func (d *HeadDevice) BlendModes() schema.BlendMode {
	return d.opts.BlendModes
}

// TrackingOffset returns the configured tracking origin offset.
func (d *HeadDevice) TrackingOffset() schema.Pose {
	return d.opts.TrackingOffset
}
