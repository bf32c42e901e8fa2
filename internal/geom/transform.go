package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a position plus an orientation.
type Transform struct {
	Translation Vec3
	Rotation    Quat
}

// NewTransform places a transform at pos facing the horizontal part of dir.
// A zero direction leaves the rotation at identity.
func NewTransform(pos, dir Vec3) Transform {
	t := Transform{Translation: pos, Rotation: mgl64.QuatIdent()}
	if d, ok := HorizontalDirection(dir); ok {
		t.Rotation = RotationFromYaw(YawOfDirection(d))
	}
	return t
}

func (t Transform) Forward() Vec3 { return t.Rotation.Rotate(Forward()) }

func (t Transform) Yaw() float64 { return YawOf(t.Rotation) }

// LookingAt returns the rotation that would make t face target, keeping Y up.
func (t Transform) LookingAt(target Vec3) (Quat, bool) {
	d, ok := HorizontalDirection(target.Sub(t.Translation))
	if !ok {
		return Quat{}, false
	}
	return RotationFromYaw(YawOfDirection(d)), true
}

// Reversed turns the transform around in place.
func (t Transform) Reversed() Transform {
	return Transform{Translation: t.Translation, Rotation: RotationFromYaw(t.Yaw() + math.Pi)}
}
