package geom

import (
	"math"
	"testing"
)

func approxVec(a, b Vec3, tol float64) bool {
	return math.Abs(a.X()-b.X()) <= tol && math.Abs(a.Y()-b.Y()) <= tol && math.Abs(a.Z()-b.Z()) <= tol
}

func TestIntersectHorizontalParallel(t *testing.T) {
	cases := []struct {
		name string
		a, b Ray
	}{
		{"identical", Ray{Vec3{0, 0, 0}, Vec3{1, 0, 0}}, Ray{Vec3{0, 0, 0}, Vec3{1, 0, 0}}},
		{"offset", Ray{Vec3{0, 0, 0}, Vec3{1, 0, 0}}, Ray{Vec3{0, 0, 5}, Vec3{1, 0, 0}}},
		{"opposite", Ray{Vec3{0, 0, 0}, Vec3{0, 0, -1}}, Ray{Vec3{3, 0, 0}, Vec3{0, 0, 1}}},
		{"scaled", Ray{Vec3{1, 2, 3}, Vec3{2, 0, 2}}, Ray{Vec3{-4, 0, 1}, Vec3{0.5, 7, 0.5}}},
	}
	for _, tc := range cases {
		if p, ok := IntersectHorizontal(tc.a, tc.b); ok {
			t.Errorf("%s: expected no intersection, got %v", tc.name, p)
		}
	}
}

func TestIntersectHorizontalKnownPoint(t *testing.T) {
	target := Vec3{4, 0, -7}
	dirs := []Vec3{{1, 0, 0}, {0, 0, 1}, {1, 0, 1}, {-3, 0, 2}, {0.2, 0, -1}}
	for i, da := range dirs {
		for j, db := range dirs {
			if i == j {
				continue
			}
			a := Ray{Origin: target.Sub(da.Mul(3)), Direction: da}
			b := Ray{Origin: target.Add(db.Mul(2.5)), Direction: db}
			p, ok := IntersectHorizontal(a, b)
			if !ok {
				t.Fatalf("dirs %d/%d: expected intersection", i, j)
			}
			if !approxVec(p, target, 1e-9) {
				t.Errorf("dirs %d/%d: expected %v, got %v", i, j, target, p)
			}
		}
	}
}

func TestIntersectHorizontalUsesFirstRayHeight(t *testing.T) {
	a := Ray{Origin: Vec3{0, 2, 0}, Direction: Vec3{1, 0, 0}}
	b := Ray{Origin: Vec3{5, 9, 5}, Direction: Vec3{0, -3, -1}}
	p, ok := IntersectHorizontal(a, b)
	if !ok {
		t.Fatal("expected intersection")
	}
	if !approxVec(p, Vec3{5, 2, 0}, 1e-12) {
		t.Errorf("expected (5, 2, 0), got %v", p)
	}
}
