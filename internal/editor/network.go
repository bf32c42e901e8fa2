package editor

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"

	"gonum.org/v1/gonum/spatial/kdtree"
)

var (
	// ErrDegenerateSection is returned when both ends of a section resolve
	// to the same node or position.
	ErrDegenerateSection = errors.New("editor: section start and end coincide")
	ErrSectionNotFound   = errors.New("editor: section not found")
)

// nodePoint is a node as stored in the kd-tree.
type nodePoint struct {
	id  EntityID
	pos geom.Vec3
}

func (p nodePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(nodePoint)
	return p.pos[d] - q.pos[d]
}

func (p nodePoint) Dims() int { return 3 }

// Distance is squared Euclidean distance, as kdtree expects.
func (p nodePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(nodePoint)
	d := p.pos.Sub(q.pos)
	return d.Dot(d)
}

// Network is the committed road network: nodes and sections stored in a
// World plus a spatial index over node positions.
type Network struct {
	World *World
	index kdtree.Tree
}

func NewNetwork(w *World) *Network {
	if w == nil {
		w = newWorld()
	}
	n := &Network{World: w}
	n.reindex()
	return n
}

func (n *Network) reindex() {
	n.index = kdtree.Tree{}
	for _, ref := range n.Nodes() {
		n.index.Insert(nodePoint{id: ref.ID, pos: ref.Position}, false)
	}
}

// FindNearest returns the node closest to point if it lies strictly closer
// than maxDistance.
func (n *Network) FindNearest(point geom.Vec3, maxDistance float64) (NodeRef, bool) {
	if n.index.Count == 0 || n.index.Root == nil {
		return NodeRef{}, false
	}
	got, dist2 := n.index.Nearest(nodePoint{pos: point})
	if got == nil || math.Sqrt(dist2) >= maxDistance {
		return NodeRef{}, false
	}
	p := got.(nodePoint)
	return NodeRef{ID: p.id, Position: p.pos}, true
}

// Nodes lists committed nodes ordered by id.
func (n *Network) Nodes() []NodeRef {
	var out []NodeRef
	n.World.ForEach([]ComponentKey{CompNode}, func(id EntityID) {
		out = append(out, NodeRef{ID: id, Position: n.World.Node(id).Position})
	})
	slices.SortFunc(out, func(a, b NodeRef) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Sections lists committed section ids in creation order.
func (n *Network) Sections() []EntityID {
	var out []EntityID
	n.World.ForEach([]ComponentKey{CompSection}, func(id EntityID) {
		out = append(out, id)
	})
	slices.Sort(out)
	return out
}

// SectionsAt lists the sections starting or ending at node.
func (n *Network) SectionsAt(node EntityID) []EntityID {
	var out []EntityID
	for _, id := range n.Sections() {
		s := n.World.Section(id)
		if s.Start == node || s.End == node {
			out = append(out, id)
		}
	}
	return out
}

// BuildSection materialises req with the given cross-section, reusing the
// referenced nodes that still exist and creating the others. It panics on a
// curved request without an arc.
func (n *Network) BuildSection(req BuildSectionRequest, r *road.RoadData) (EntityID, error) {
	if req.Shape.Variant == Curved && req.Shape.Arc == nil {
		panic("editor: curved section requested without an arc")
	}
	startPos, startNode := n.resolveEnd(req.Start)
	endPos, endNode := n.resolveEnd(req.End)
	if startNode != 0 && startNode == endNode {
		return 0, fmt.Errorf("%w: node %d", ErrDegenerateSection, startNode)
	}
	if startPos.ApproxEqualThreshold(endPos, geom.DirectionEpsilon) {
		return 0, fmt.Errorf("%w: (%.2f, %.2f, %.2f)", ErrDegenerateSection, startPos.X(), startPos.Y(), startPos.Z())
	}

	if startNode == 0 {
		startNode = n.addNode(startPos)
	}
	if endNode == 0 {
		endNode = n.addNode(endPos)
	}
	if r != nil {
		r = r.Clone()
	}
	id := n.World.NewEntity()
	n.World.SetComponent(id, CompSection, &RoadSection{
		Start:          startNode,
		End:            endNode,
		Shape:          req.Shape,
		StartDirection: req.Start.Direction,
		EndDirection:   req.End.Direction,
		Road:           r,
	})
	return id, nil
}

func (n *Network) resolveEnd(e RequestEnd) (geom.Vec3, EntityID) {
	if e.Node != nil {
		if node := n.World.Node(e.Node.ID); node != nil {
			return node.Position, e.Node.ID
		}
	}
	return e.Position, 0
}

func (n *Network) addNode(pos geom.Vec3) EntityID {
	id := n.World.NewEntity()
	n.World.SetComponent(id, CompNode, &RoadNode{Position: pos})
	n.index.Insert(nodePoint{id: id, pos: pos}, false)
	return id
}

// DeleteSection removes a section and any node it leaves unconnected.
func (n *Network) DeleteSection(id EntityID) error {
	s := n.World.Section(id)
	if s == nil {
		return fmt.Errorf("%w: %d", ErrSectionNotFound, id)
	}
	n.World.RemoveEntity(id)
	removed := false
	for _, node := range []EntityID{s.Start, s.End} {
		if n.World.Node(node) != nil && len(n.SectionsAt(node)) == 0 {
			n.World.RemoveEntity(node)
			removed = true
		}
	}
	if removed {
		n.reindex()
	}
	return nil
}
