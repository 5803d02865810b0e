package xrmath

import (
	"math"

	"pkt.systems/xrsession/schema"
)

// quatNormTolerance accepts quaternions normalized in single precision.
const quatNormTolerance = 5 * 1.1920929e-07

// ValidateQuat reports whether q is finite and of unit length.
func ValidateQuat(q schema.Quat) bool {
	if !finite(q.X) || !finite(q.Y) || !finite(q.Z) || !finite(q.W) {
		return false
	}
	norm := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	return norm <= 1+quatNormTolerance && norm >= 1-quatNormTolerance
}

// ValidateVec3 reports whether every component of v is finite.
func ValidateVec3(v schema.Vec3) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// QuatMul returns the Hamilton product a*b.
func QuatMul(a, b schema.Quat) schema.Quat {
	return schema.Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// QuatConjugate returns the inverse rotation of a unit quaternion.
func QuatConjugate(q schema.Quat) schema.Quat {
	return schema.Quat{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// QuatNormalize scales q to unit length. A zero quaternion becomes identity.
func QuatNormalize(q schema.Quat) schema.Quat {
	norm := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if norm == 0 {
		return schema.IdentityQuat
	}
	return schema.Quat{X: q.X / norm, Y: q.Y / norm, Z: q.Z / norm, W: q.W / norm}
}

// QuatRotate rotates v by the unit quaternion q.
func QuatRotate(q schema.Quat, v schema.Vec3) schema.Vec3 {
	// v' = v + 2w(u x v) + 2(u x (u x v)), u = (x, y, z)
	u := schema.Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := scale(cross(u, v), 2)
	return add(add(v, scale(t, q.W)), cross(u, t))
}

// QuatFromAxisAngle builds a rotation of angle radians around a unit axis.
func QuatFromAxisAngle(axis schema.Vec3, angle float64) schema.Quat {
	s, c := math.Sincos(angle / 2)
	return schema.Quat{X: axis.X * s, Y: axis.Y * s, Z: axis.Z * s, W: c}
}

// QuatIntegrateVelocity advances q by the angular velocity omega (rad/s,
// expressed in the local frame of q) over dt seconds. When the rotation
// increment is zero q is returned unchanged.
func QuatIntegrateVelocity(q schema.Quat, omega schema.Vec3, dt float64) schema.Quat {
	half := scale(omega, dt*0.5)
	angle := length(half)
	if angle == 0 {
		return q
	}
	s, c := math.Sincos(angle)
	k := s / angle
	delta := schema.Quat{X: half.X * k, Y: half.Y * k, Z: half.Z * k, W: c}
	return QuatNormalize(QuatMul(q, delta))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func add(a, b schema.Vec3) schema.Vec3 {
	return schema.Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func scale(v schema.Vec3, s float64) schema.Vec3 {
	return schema.Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func cross(a, b schema.Vec3) schema.Vec3 {
	return schema.Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func length(v schema.Vec3) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}
