package xrmath

import "pkt.systems/xrsession/schema"

// Transform applies transform to pose: the result expresses pose, given in the
// frame described by transform, in transform's parent frame.
func Transform(transform, pose schema.Pose) schema.Pose {
	return schema.Pose{
		Orientation: QuatNormalize(QuatMul(transform.Orientation, pose.Orientation)),
		Position:    add(QuatRotate(transform.Orientation, pose.Position), transform.Position),
	}
}

// Invert returns the pose that undoes p.
func Invert(p schema.Pose) schema.Pose {
	inv := QuatConjugate(p.Orientation)
	return schema.Pose{
		Orientation: inv,
		Position:    scale(QuatRotate(inv, p.Position), -1),
	}
}

// Locate expresses a pose given in a tracked frame relative to a base space.
//
// space is the pose inside the tracked frame (for example an eye inside the
// head), relative is the tracked frame inside the base space's origin, and
// base is the base space's offset from that origin.
func Locate(space, relative, base schema.Pose) schema.Pose {
	located := Transform(relative, space)
	return Transform(Invert(base), located)
}
