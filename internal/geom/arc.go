package geom

import (
	"iter"
	"math"
)

// CurveDirection tells which way an arc bends as seen from above.
type CurveDirection int

const (
	CurveLeft CurveDirection = iota
	CurveRight
)

func (d CurveDirection) String() string {
	if d == CurveRight {
		return "right"
	}
	return "left"
}

// ArcFacing selects the forward axis of transforms sampled along an arc.
type ArcFacing int

const (
	// FacingTravel points forward along the direction of travel, start to end.
	FacingTravel ArcFacing = iota
	// FacingRadial points from the center outward through the sample.
	FacingRadial
)

const halfTurnTolerance = 1e-6

// CircularArc is the resolved shape of a curved road section.
//
// StartAngle is wrapped into [0, 2π). DeltaAngle is signed, positive for a
// left curve, and may exceed π in magnitude. Both endpoints lie exactly
// Radius away from Center.
type CircularArc struct {
	Center     Vec3
	StartAngle float64
	DeltaAngle float64
	Radius     float64
}

// NewArcFromTransforms solves the arc leaving inwardStart along its forward
// axis and arriving at outwardEnd facing along its forward axis. It reports
// false when no arc exists, which callers treat as a straight connection.
func NewArcFromTransforms(inwardStart, outwardEnd Transform) (CircularArc, bool) {
	return solveArc(inwardStart, outwardEnd, YawDelta(inwardStart.Rotation, outwardEnd.Rotation))
}

// NewArcFromStart solves the arc leaving inwardStart that ends at target.
// The end orientation is the start orientation turned by twice the yaw
// needed to look at target, which keeps both tangents symmetric about the
// chord.
func NewArcFromStart(inwardStart Transform, target Vec3) (CircularArc, bool) {
	lookAt, ok := inwardStart.LookingAt(target)
	if !ok {
		return CircularArc{}, false
	}
	delta := 2 * YawDelta(inwardStart.Rotation, lookAt)
	end := Transform{
		Translation: target,
		Rotation:    RotationFromYaw(delta).Mul(inwardStart.Rotation),
	}
	return solveArc(inwardStart, end, delta)
}

func solveArc(start, end Transform, delta float64) (CircularArc, bool) {
	startDir, ok := HorizontalDirection(start.Forward())
	if !ok {
		return CircularArc{}, false
	}
	endDir, ok := HorizontalDirection(end.Forward())
	if !ok {
		return CircularArc{}, false
	}

	lateral := LeftOf
	if delta < 0 {
		lateral = RightOf
	}
	startRay := Ray{Origin: start.Translation, Direction: lateral(startDir)}
	endRay := Ray{
		Origin:    Vec3{end.Translation.X(), start.Translation.Y(), end.Translation.Z()},
		Direction: lateral(endDir),
	}

	center, ok := IntersectHorizontal(startRay, endRay)
	if !ok {
		// A half turn has antiparallel lateral rays on one line; the center
		// is then the middle of the chord.
		if math.Abs(math.Abs(delta)-math.Pi) > halfTurnTolerance {
			return CircularArc{}, false
		}
		chord := Horizontal(endRay.Origin.Sub(start.Translation))
		if math.Abs(perpDot(chord.X(), chord.Z(), startRay.Direction.X(), startRay.Direction.Z())) > halfTurnTolerance*math.Max(1, chord.Len()) {
			return CircularArc{}, false
		}
		center = start.Translation.Add(chord.Mul(0.5))
		// At ±π the yaw difference carries no reliable sign; the side the
		// end lies on decides the turn.
		if chord.Dot(LeftOf(startDir)) > 0 {
			delta = math.Pi
		} else {
			delta = -math.Pi
		}
	}

	radius := HorizontalDistance(center, start.Translation)
	if radius < DirectionEpsilon {
		return CircularArc{}, false
	}
	return CircularArc{
		Center:     center,
		StartAngle: WrapAngle(YawOfDirection(start.Translation.Sub(center))),
		DeltaAngle: delta,
		Radius:     radius,
	}, true
}

func (a CircularArc) EndAngle() float64 { return WrapAngle(a.StartAngle + a.DeltaAngle) }

func (a CircularArc) CurveDirection() CurveDirection {
	if a.DeltaAngle < 0 {
		return CurveRight
	}
	return CurveLeft
}

// Length is the distance travelled along the arc.
func (a CircularArc) Length() float64 { return a.Radius * math.Abs(a.DeltaAngle) }

// PositionAt returns the point on the circle at the given angle.
func (a CircularArc) PositionAt(angle float64) Vec3 {
	return a.Center.Add(DirectionFromYaw(angle).Mul(a.Radius))
}

func (a CircularArc) StartPosition() Vec3 { return a.PositionAt(a.StartAngle) }

func (a CircularArc) EndPosition() Vec3 { return a.PositionAt(a.EndAngle()) }

// RotationTowardsStart faces from the center toward the start point.
func (a CircularArc) RotationTowardsStart() Quat { return RotationFromYaw(a.StartAngle) }

// RotationTowardsEnd faces from the center toward the end point.
func (a CircularArc) RotationTowardsEnd() Quat { return RotationFromYaw(a.EndAngle()) }

// travelYaw is the yaw of the direction of travel at the given angle.
func (a CircularArc) travelYaw(angle float64) float64 {
	if a.CurveDirection() == CurveRight {
		return angle - math.Pi/2
	}
	return angle + math.Pi/2
}

// OutwardsStartTransform sits on the start point facing away from the arc,
// opposite to the direction of travel.
func (a CircularArc) OutwardsStartTransform() Transform {
	return Transform{
		Translation: a.StartPosition(),
		Rotation:    RotationFromYaw(a.travelYaw(a.StartAngle) + math.Pi),
	}
}

// OutwardsEndTransform sits on the end point facing along the direction of
// travel, so it can seed the next section.
func (a CircularArc) OutwardsEndTransform() Transform {
	return Transform{
		Translation: a.EndPosition(),
		Rotation:    RotationFromYaw(a.travelYaw(a.EndAngle())),
	}
}

// TransformsAlongArc yields n transforms evenly spaced by angle from the
// start to the end of the arc, both included. The sequence can be ranged
// over any number of times.
func (a CircularArc) TransformsAlongArc(n int, facing ArcFacing) iter.Seq2[int, Transform] {
	return func(yield func(int, Transform) bool) {
		for i := 0; i < n; i++ {
			frac := 0.0
			if n > 1 {
				frac = float64(i) / float64(n-1)
			}
			angle := a.StartAngle + a.DeltaAngle*frac
			yaw := angle
			if facing == FacingTravel {
				yaw = a.travelYaw(angle)
			}
			t := Transform{Translation: a.PositionAt(angle), Rotation: RotationFromYaw(yaw)}
			if !yield(i, t) {
				return
			}
		}
	}
}
