package core

import (
	"errors"

	"pkt.systems/xrsession/internal/timekeeping"
	"pkt.systems/xrsession/internal/xrmath"
	"pkt.systems/xrsession/schema"
)

// Device is the tracked head device a system renders for.
type Device interface {
	// RelationAt returns the most recent pose sample usable for at, in the
	// device's tracking frame, together with the runtime timestamp of the sample.
	RelationAt(at int64) (relation schema.SpaceRelation, timestamp int64)
	// ViewPose returns the pose of one eye inside the head for the given eye relation.
	ViewPose(eyeRelation schema.Vec3, view int) schema.Pose
	// ViewFov returns the field of view of one eye.
	ViewFov(view int) schema.Fov
	// BlendModes returns the mask of blend modes the display supports.
	BlendModes() schema.BlendMode
	// TrackingOffset returns the offset of the tracking origin from the runtime's logical origin.
	TrackingOffset() schema.Pose
}

// System is the device set and clock that sessions are created against.
// A System must outlive every session created from it.
type System struct {
	Head              Device
	ViewConfiguration schema.ViewConfigurationType
	// HeadlessEnabled permits sessions without a compositor.
	HeadlessEnabled bool
	Clock           *timekeeping.State
}

// Validate checks that the system can back a session.
func (sys *System) Validate() error {
	if sys == nil {
		return errors.New("system is required")
	}
	if sys.Head == nil {
		return errors.New("system head device is required")
	}
	if sys.Clock == nil {
		return errors.New("system clock is required")
	}
	if sys.ViewConfiguration == 0 {
		return errors.New("system view configuration is required")
	}
	return nil
}

func (sys *System) now() int64 {
	if sys == nil || sys.Clock == nil {
		return 0
	}
	return sys.Clock.Now()
}

// relationAt samples the head and moves the sample from the tracking frame
// into the runtime's logical frame.
func (sys *System) relationAt(at int64) (schema.SpaceRelation, int64) {
	relation, timestamp := sys.Head.RelationAt(at)
	relation.Pose = xrmath.Transform(sys.Head.TrackingOffset(), relation.Pose)
	return relation, timestamp
}
