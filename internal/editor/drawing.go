package editor

import (
	"fmt"
	"strings"

	"RoadEditor/internal/geom"
)

// Variant selects how a section bends between its ends.
type Variant int

const (
	Curved Variant = iota
	Straight
)

func (v Variant) String() string {
	switch v {
	case Straight:
		return "straight"
	case Curved:
		return "curved"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight":
		return Straight, true
	case "curved", "curve":
		return Curved, true
	}
	return Curved, false
}

// Shape is a section's geometry. Arc is nil for straight sections and for
// curved ones that have not been solved yet.
type Shape struct {
	Variant Variant
	Arc     *geom.CircularArc
}

func (s Shape) resolved() bool {
	return s.Variant == Straight || s.Arc != nil
}

// NodeRef names a committed node together with its position.
type NodeRef struct {
	ID       EntityID
	Position geom.Vec3
}

// NodeFinder answers nearest-node queries over the committed network.
type NodeFinder interface {
	FindNearest(point geom.Vec3, maxDistance float64) (NodeRef, bool)
}

// SectionEndBeingDrawn is one end of the section under construction.
// Direction is outward and nil until known.
type SectionEndBeingDrawn struct {
	Position  geom.Vec3
	Direction *geom.Vec3
	Node      *NodeRef
}

func (e *SectionEndBeingDrawn) SnappedPosition() geom.Vec3 {
	if e.Node != nil {
		return e.Node.Position
	}
	return e.Position
}

func (e *SectionEndBeingDrawn) OutwardTransform() (geom.Transform, bool) {
	if e.Direction == nil {
		return geom.Transform{}, false
	}
	return geom.NewTransform(e.SnappedPosition(), *e.Direction), true
}

func (e *SectionEndBeingDrawn) InwardTransform() (geom.Transform, bool) {
	if e.Direction == nil {
		return geom.Transform{}, false
	}
	return geom.NewTransform(e.SnappedPosition(), e.Direction.Mul(-1)), true
}

func (e *SectionEndBeingDrawn) setDirection(d geom.Vec3) {
	e.Direction = &d
}

// SectionBeingDrawn is the in-progress section of a drawing session.
type SectionBeingDrawn struct {
	Start SectionEndBeingDrawn
	End   SectionEndBeingDrawn
	Shape Shape
}

// RequestEnd is one end of a committed section: where it sits, the node to
// reuse if any, and its outward direction.
type RequestEnd struct {
	Position  geom.Vec3
	Node      *NodeRef
	Direction geom.Vec3
}

// BuildSectionRequest asks the network to materialise a section.
type BuildSectionRequest struct {
	Start RequestEnd
	End   RequestEnd
	Shape Shape
}

func (s *SectionBeingDrawn) ready() bool {
	return s.Start.Direction != nil && s.End.Direction != nil && s.Shape.resolved()
}

// Request converts the drawing into a build request. It panics when either
// direction or the curved arc is still unresolved.
func (s *SectionBeingDrawn) Request() BuildSectionRequest {
	if s.Start.Direction == nil {
		panic("editor: section start direction unresolved")
	}
	if s.End.Direction == nil {
		panic("editor: section end direction unresolved")
	}
	if !s.Shape.resolved() {
		panic("editor: curved section has no arc")
	}
	shape := s.Shape
	if shape.Arc != nil {
		arc := *shape.Arc
		shape.Arc = &arc
	}
	return BuildSectionRequest{
		Start: requestEnd(s.Start),
		End:   requestEnd(s.End),
		Shape: shape,
	}
}

func requestEnd(e SectionEndBeingDrawn) RequestEnd {
	out := RequestEnd{Position: e.SnappedPosition(), Direction: *e.Direction}
	if e.Node != nil {
		n := *e.Node
		out.Node = &n
	}
	return out
}
