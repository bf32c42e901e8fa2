package editor

import (
	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseAwaitingShape
	PhaseDirectionSet
	PhaseReadyToCommit
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingShape:
		return "awaiting_shape"
	case PhaseDirectionSet:
		return "direction_set"
	case PhaseReadyToCommit:
		return "ready_to_commit"
	default:
		return "idle"
	}
}

// DrawingSession is one editor's section-drawing state. Drawing is nil
// while idle and at most one section is drawn at a time.
type DrawingSession struct {
	Drawing      *SectionBeingDrawn
	Road         *road.RoadData
	Variant      Variant
	ToolActive   bool
	Target       *geom.Vec3
	SnapDistance float64
}

func NewDrawingSession(snapDistance float64) *DrawingSession {
	return &DrawingSession{
		Variant:      Curved,
		ToolActive:   true,
		SnapDistance: snapDistance,
	}
}

func (s *DrawingSession) Phase() Phase {
	d := s.Drawing
	switch {
	case d == nil:
		return PhaseIdle
	case d.Start.Direction == nil:
		return PhaseAwaitingShape
	case d.ready():
		return PhaseReadyToCommit
	default:
		return PhaseDirectionSet
	}
}

// Reset discards any section in progress.
func (s *DrawingSession) Reset() {
	s.Drawing = nil
}

// Update applies events in order and returns the sections committed by
// them.
func (s *DrawingSession) Update(events []Event, nodes NodeFinder) []BuildSectionRequest {
	var out []BuildSectionRequest
	for _, ev := range events {
		switch e := ev.(type) {
		case InteractionEvent:
			if req, ok := s.interact(e, nodes); ok {
				out = append(out, req)
			}
		case TargetEvent:
			s.Target = nil
			if e.Point != nil {
				p := *e.Point
				s.Target = &p
			}
			if s.Drawing != nil && s.Drawing.Start.Direction != nil {
				s.refreshEnd(nodes)
			}
		case ToolEvent:
			s.ToolActive = e.Active
			if !e.Active {
				s.Reset()
			}
		case VariantEvent:
			s.setVariant(e.Variant, nodes)
		case RoadSelectedEvent:
			s.Road = e.Road
			if e.Road == nil {
				s.Reset()
			}
		}
	}
	return out
}

func (s *DrawingSession) interact(e InteractionEvent, nodes NodeFinder) (BuildSectionRequest, bool) {
	if e.OverUI || !s.ToolActive || e.Phase != PhaseStarted {
		return BuildSectionRequest{}, false
	}
	switch e.Button {
	case ButtonSecondary:
		s.Reset()
		return BuildSectionRequest{}, false
	case ButtonPrimary:
	default:
		return BuildSectionRequest{}, false
	}

	switch s.Phase() {
	case PhaseIdle:
		s.begin(nodes)
	case PhaseAwaitingShape:
		s.setStartDirection(nodes)
	case PhaseReadyToCommit:
		req := s.Drawing.Request()
		s.Reset()
		return req, true
	}
	return BuildSectionRequest{}, false
}

func (s *DrawingSession) begin(nodes NodeFinder) {
	if s.Road == nil || s.Target == nil {
		return
	}
	end := SectionEndBeingDrawn{Position: *s.Target, Node: s.snap(nodes, *s.Target, nil)}
	s.Drawing = &SectionBeingDrawn{
		Start: end,
		End:   end,
		Shape: Shape{Variant: s.Variant},
	}
	if end.Node != nil {
		n := *end.Node
		s.Drawing.End.Node = &n
	}
}

// setStartDirection points the start away from the pointer. A click on the
// start point itself gives no direction and is ignored.
func (s *DrawingSession) setStartDirection(nodes NodeFinder) {
	if s.Target == nil {
		return
	}
	d, ok := geom.HorizontalDirection(s.Drawing.Start.SnappedPosition().Sub(*s.Target))
	if !ok {
		return
	}
	s.Drawing.Start.setDirection(d)
	s.refreshEnd(nodes)
}

func (s *DrawingSession) setVariant(v Variant, nodes NodeFinder) {
	s.Variant = v
	if s.Drawing == nil {
		return
	}
	s.Drawing.Shape = Shape{Variant: v}
	s.Drawing.End.Direction = nil
	if s.Drawing.Start.Direction != nil {
		s.refreshEnd(nodes)
	}
}

// refreshEnd moves the end onto the pointer target and re-solves the shape.
func (s *DrawingSession) refreshEnd(nodes NodeFinder) {
	if s.Target == nil {
		return
	}
	d := s.Drawing
	d.End.Position = *s.Target
	d.End.Node = s.snap(nodes, *s.Target, d.Start.Node)

	start := d.Start.SnappedPosition()
	end := d.End.SnappedPosition()
	chord, ok := geom.HorizontalDirection(end.Sub(start))
	if !ok {
		d.End.Direction = nil
		return
	}

	if d.Shape.Variant == Straight {
		d.Shape.Arc = nil
		d.End.setDirection(chord)
		d.Start.setDirection(chord.Mul(-1))
		return
	}

	inward, _ := d.Start.InwardTransform()
	arc, ok := geom.NewArcFromStart(inward, end)
	if !ok {
		d.End.Direction = nil
		return
	}
	d.Shape.Arc = &arc
	d.End.setDirection(arc.OutwardsEndTransform().Forward())
}

// snap returns the nearest node strictly within the snap distance. The
// excluded node is never returned.
func (s *DrawingSession) snap(nodes NodeFinder, p geom.Vec3, exclude *NodeRef) *NodeRef {
	if nodes == nil || s.SnapDistance <= 0 {
		return nil
	}
	ref, ok := nodes.FindNearest(p, s.SnapDistance)
	if !ok {
		return nil
	}
	if exclude != nil && ref.ID == exclude.ID {
		return nil
	}
	return &ref
}
