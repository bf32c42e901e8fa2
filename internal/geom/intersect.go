package geom

import "math"

// IntersectEpsilon bounds the perp-dot of two directions below which they
// are treated as parallel.
const IntersectEpsilon = 1e-9

// Ray is an origin plus a direction; only the XZ components take part in
// horizontal intersection.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

func perpDot(ax, az, bx, bz float64) float64 { return ax*bz - az*bx }

// IntersectHorizontal intersects the lines through a and b in the XZ plane.
// The returned point sits at a's origin height. Parallel or coincident lines
// report false.
func IntersectHorizontal(a, b Ray) (Vec3, bool) {
	denom := perpDot(a.Direction.X(), a.Direction.Z(), b.Direction.X(), b.Direction.Z())
	if math.Abs(denom) < IntersectEpsilon {
		return Vec3{}, false
	}
	dx := b.Origin.X() - a.Origin.X()
	dz := b.Origin.Z() - a.Origin.Z()
	t := perpDot(dx, dz, b.Direction.X(), b.Direction.Z()) / denom
	return Vec3{
		a.Origin.X() + a.Direction.X()*t,
		a.Origin.Y(),
		a.Origin.Z() + a.Direction.Z()*t,
	}, true
}
