// Package geom holds the horizontal-plane geometry used by the road editor:
// yaw algebra, ray intersection and the circular arc solver.
//
// Up is +Y and a transform looks down its local -Z axis. Yaw is the
// right-handed angle about +Y, with yaw 0 facing -Z. Positive yaw turns
// counter-clockwise when seen from above, which is a left turn.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

type Quat = mgl64.Quat

const (
	TwoPi = 2 * math.Pi

	// DirectionEpsilon is the shortest vector that still has a usable direction.
	DirectionEpsilon = 1e-6
)

func Up() Vec3 { return Vec3{0, 1, 0} }

func Forward() Vec3 { return Vec3{0, 0, -1} }

// Horizontal drops the vertical component of v.
func Horizontal(v Vec3) Vec3 { return Vec3{v.X(), 0, v.Z()} }

// HorizontalDistance is the distance between a and b measured in the XZ plane.
func HorizontalDistance(a, b Vec3) float64 { return Horizontal(b.Sub(a)).Len() }

// WrapAngle normalises a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	if a >= TwoPi {
		a = 0
	}
	return a
}

// SignedAngle normalises a into (-π, π].
func SignedAngle(a float64) float64 {
	a = WrapAngle(a)
	if a > math.Pi {
		a -= TwoPi
	}
	return a
}

// YawOfDirection returns the yaw of d projected on the horizontal plane.
func YawOfDirection(d Vec3) float64 {
	return math.Atan2(-d.X(), -d.Z())
}

// DirectionFromYaw is the unit horizontal direction with the given yaw.
func DirectionFromYaw(yaw float64) Vec3 {
	s, c := math.Sincos(yaw)
	return Vec3{-s, 0, -c}
}

// RotationFromYaw is the rotation about +Y that faces the given yaw.
func RotationFromYaw(yaw float64) Quat {
	return mgl64.QuatRotate(yaw, Up())
}

// YawOf decomposes a rotation into its angle about the vertical axis.
func YawOf(q Quat) float64 {
	return YawOfDirection(q.Rotate(Forward()))
}

// YawDelta is the signed yaw that rotates from into to, in (-π, π].
func YawDelta(from, to Quat) float64 {
	return YawOf(to.Mul(from.Inverse()))
}

// HorizontalDirection returns the unit horizontal direction of v, or false
// when v has no horizontal extent.
func HorizontalDirection(v Vec3) (Vec3, bool) {
	h := Horizontal(v)
	if h.Len() < DirectionEpsilon {
		return Vec3{}, false
	}
	return h.Normalize(), true
}

// LeftOf rotates a horizontal direction a quarter turn to the left.
func LeftOf(d Vec3) Vec3 { return Vec3{d.Z(), 0, -d.X()} }

// RightOf rotates a horizontal direction a quarter turn to the right.
func RightOf(d Vec3) Vec3 { return Vec3{-d.Z(), 0, d.X()} }
