package schema

// Quat is an orientation quaternion.
type Quat struct {
	X, Y, Z, W float64
}

// Vec3 is a 3D vector in meters or radians per second.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a 2D size in meters.
type Vec2 struct {
	X, Y float64
}

// Pose is an orientation and position pair. It is the single pose
// representation used by devices, compositors and applications alike.
type Pose struct {
	Orientation Quat
	Position    Vec3
}

// IdentityQuat is the zero rotation.
var IdentityQuat = Quat{W: 1}

// IdentityPose is the zero rotation at the origin.
var IdentityPose = Pose{Orientation: IdentityQuat}

// Fov holds the four half-angles of a view frustum in radians.
type Fov struct {
	AngleLeft  float64
	AngleRight float64
	AngleUp    float64
	AngleDown  float64
}

// RelationFlags reports which parts of a SpaceRelation are valid.
type RelationFlags uint32

const (
	// RelationOrientationValid marks the orientation as valid.
	RelationOrientationValid RelationFlags = 1 << 0
	// RelationPositionValid marks the position as valid.
	RelationPositionValid RelationFlags = 1 << 1
	// RelationLinearVelocityValid marks the linear velocity as valid.
	RelationLinearVelocityValid RelationFlags = 1 << 2
	// RelationAngularVelocityValid marks the angular velocity as valid.
	RelationAngularVelocityValid RelationFlags = 1 << 3
	// RelationOrientationTracked marks the orientation as actively tracked.
	RelationOrientationTracked RelationFlags = 1 << 4
	// RelationPositionTracked marks the position as actively tracked.
	RelationPositionTracked RelationFlags = 1 << 5
)

// SpaceRelation is a tracked pose sample with optional derivatives.
type SpaceRelation struct {
	Flags           RelationFlags
	Pose            Pose
	LinearVelocity  Vec3
	AngularVelocity Vec3
}

// Has reports whether every flag in other is set.
func (r SpaceRelation) Has(other RelationFlags) bool {
	return r.Flags&other == other
}

// ViewStateFlags reports the validity of located views.
type ViewStateFlags uint32

const (
	// ViewStateOrientationValid marks view orientations as valid.
	ViewStateOrientationValid ViewStateFlags = 1 << 0
	// ViewStatePositionValid marks view positions as valid.
	ViewStatePositionValid ViewStateFlags = 1 << 1
	// ViewStateOrientationTracked marks view orientations as tracked.
	ViewStateOrientationTracked ViewStateFlags = 1 << 2
	// ViewStatePositionTracked marks view positions as tracked.
	ViewStatePositionTracked ViewStateFlags = 1 << 3
)

// ViewState is returned alongside located views.
type ViewState struct {
	Flags ViewStateFlags
}

// View is one located eye view.
type View struct {
	Pose Pose
	Fov  Fov
}
