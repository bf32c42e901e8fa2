package editor

import (
	"errors"
	"testing"

	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"
)

func straightRequest(a, b geom.Vec3) BuildSectionRequest {
	d, _ := geom.HorizontalDirection(b.Sub(a))
	return BuildSectionRequest{
		Start: RequestEnd{Position: a, Direction: d.Mul(-1)},
		End:   RequestEnd{Position: b, Direction: d},
		Shape: Shape{Variant: Straight},
	}
}

func TestFindNearest(t *testing.T) {
	net := NewNetwork(nil)
	if _, ok := net.FindNearest(vec(0, 0, 0), 100); ok {
		t.Fatal("expected no node in an empty network")
	}
	if _, err := net.BuildSection(straightRequest(vec(0, 0, 0), vec(20, 0, 0)), nil); err != nil {
		t.Fatalf("build: %v", err)
	}

	cases := []struct {
		point geom.Vec3
		max   float64
		want  geom.Vec3
		ok    bool
	}{
		{vec(2.4, 0, 0), 2.5, vec(0, 0, 0), true},
		{vec(2.5, 0, 0), 2.5, geom.Vec3{}, false},
		{vec(18, 0, 1), 2.5, vec(20, 0, 0), true},
		{vec(10, 0, 0), 2.5, geom.Vec3{}, false},
		{vec(0, 2, 0), 2.5, vec(0, 0, 0), true},
	}
	for _, tc := range cases {
		ref, ok := net.FindNearest(tc.point, tc.max)
		if ok != tc.ok {
			t.Errorf("FindNearest(%v, %v): expected ok=%v, got %v", tc.point, tc.max, tc.ok, ok)
			continue
		}
		if ok && !approxVec(ref.Position, tc.want, tol) {
			t.Errorf("FindNearest(%v): expected %v, got %v", tc.point, tc.want, ref.Position)
		}
	}
}

func TestFindNearestStable(t *testing.T) {
	net := NewNetwork(nil)
	for _, pts := range [][2]geom.Vec3{
		{vec(0, 0, 0), vec(10, 0, 0)},
		{vec(0, 0, 5), vec(10, 0, 5)},
		{vec(-3, 0, -3), vec(-3, 0, -12)},
	} {
		if _, err := net.BuildSection(straightRequest(pts[0], pts[1]), nil); err != nil {
			t.Fatalf("build: %v", err)
		}
	}
	q := vec(9, 0, 4.2)
	first, ok := net.FindNearest(q, SnapDistance)
	if !ok {
		t.Fatal("expected a node")
	}
	for i := 0; i < 20; i++ {
		got, ok := net.FindNearest(q, SnapDistance)
		if !ok || got.ID != first.ID {
			t.Fatalf("query %d: expected node %d, got %d (ok=%v)", i, first.ID, got.ID, ok)
		}
	}
}

func TestBuildSectionReusesNodes(t *testing.T) {
	net := NewNetwork(nil)
	rd := road.Default()
	a, err := net.BuildSection(straightRequest(vec(0, 0, 0), vec(0, 0, -10)), rd)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sa := net.World.Section(a)
	if sa.Road == rd || sa.Road.Name != rd.Name {
		t.Errorf("expected section to hold a copy of the road")
	}

	end := net.World.Node(sa.End)
	req := straightRequest(end.Position, vec(10, 0, -10))
	req.Start.Node = &NodeRef{ID: sa.End, Position: end.Position}
	b, err := net.BuildSection(req, rd)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	sb := net.World.Section(b)
	if sb.Start != sa.End {
		t.Errorf("expected shared node %d, got %d", sa.End, sb.Start)
	}
	if n := len(net.Nodes()); n != 3 {
		t.Errorf("expected 3 nodes, got %d", n)
	}
	if got := net.SectionsAt(sa.End); len(got) != 2 {
		t.Errorf("expected 2 sections at the shared node, got %v", got)
	}
	if got := net.Sections(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("expected sections [%d %d], got %v", a, b, got)
	}
}

func TestBuildSectionDegenerate(t *testing.T) {
	net := NewNetwork(nil)
	if _, err := net.BuildSection(straightRequest(vec(1, 0, 1), vec(1, 0, 1)), nil); !errors.Is(err, ErrDegenerateSection) {
		t.Errorf("expected ErrDegenerateSection for equal positions, got %v", err)
	}

	id, err := net.BuildSection(straightRequest(vec(0, 0, 0), vec(5, 0, 0)), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	s := net.World.Section(id)
	req := straightRequest(vec(0, 0, 0), vec(5, 0, 0))
	req.Start.Node = &NodeRef{ID: s.Start}
	req.End.Node = &NodeRef{ID: s.Start}
	if _, err := net.BuildSection(req, nil); !errors.Is(err, ErrDegenerateSection) {
		t.Errorf("expected ErrDegenerateSection for equal nodes, got %v", err)
	}
	if n := len(net.Nodes()); n != 2 {
		t.Errorf("expected failed builds to add no nodes, got %d", n)
	}
}

func TestBuildSectionCurvedWithoutArcPanics(t *testing.T) {
	net := NewNetwork(nil)
	req := straightRequest(vec(0, 0, 0), vec(5, 0, 0))
	req.Shape = Shape{Variant: Curved}
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	_, _ = net.BuildSection(req, nil)
}

func TestDeleteSection(t *testing.T) {
	net := NewNetwork(nil)
	a, _ := net.BuildSection(straightRequest(vec(0, 0, 0), vec(10, 0, 0)), nil)
	sa := net.World.Section(a)
	req := straightRequest(vec(10, 0, 0), vec(20, 0, 0))
	req.Start.Node = &NodeRef{ID: sa.End}
	b, _ := net.BuildSection(req, nil)

	if err := net.DeleteSection(b); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n := len(net.Nodes()); n != 2 {
		t.Fatalf("expected the orphaned node to go, got %d nodes", n)
	}
	if _, ok := net.FindNearest(vec(20, 0, 0), SnapDistance); ok {
		t.Error("expected removed node to be gone from the index")
	}
	if _, ok := net.FindNearest(vec(10, 0, 0), SnapDistance); !ok {
		t.Error("expected shared node to remain")
	}
	if err := net.DeleteSection(b); !errors.Is(err, ErrSectionNotFound) {
		t.Errorf("expected ErrSectionNotFound, got %v", err)
	}

	// A reference to a node that no longer exists falls back to its position.
	stale := straightRequest(vec(20, 0, 0), vec(30, 0, 0))
	stale.Start.Node = &NodeRef{ID: net.World.Section(a).End + 100}
	c, err := net.BuildSection(stale, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if net.World.Node(net.World.Section(c).Start) == nil {
		t.Error("expected a fresh start node")
	}
}
