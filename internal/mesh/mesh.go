// Package mesh turns road sections into solids and triangle meshes using the
// sdfx signed-distance modelling library.
//
// Solids share the editor's world frame: Y is up and a road's profile sits
// on its section's base height.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"RoadEditor/internal/geom"
	"RoadEditor/internal/road"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

var (
	// ErrEmptyRoad is returned when a road has nothing to extrude.
	ErrEmptyRoad = errors.New("mesh: road has no components")
	// ErrDegenerateSection is returned for sections without length.
	ErrDegenerateSection = errors.New("mesh: section has no length")
	// ErrRadiusTooSmall is returned when a curve is tighter than half the road width.
	ErrRadiusTooSmall = errors.New("mesh: curve radius smaller than half the road width")
	// ErrEmptyMesh is returned when tessellation yields no triangles.
	ErrEmptyMesh = errors.New("mesh: tessellation produced no triangles")
)

// DefaultCells is the marching cubes resolution along the longest axis.
const DefaultCells = 160

// Mesh is a flat triangle mesh: three floats per vertex and normal, three
// indices per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
}

func (m *Mesh) VertexCount() int { return len(m.Vertices) / 3 }

func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

func (m *Mesh) IsEmpty() bool { return len(m.Vertices) == 0 }

// Profile builds the cross-section of r: X runs across the road, positive to
// the right of travel, and Y is height above the road base. Mirrored flips
// left and right.
func Profile(r *road.RoadData, mirrored bool) (sdf.SDF2, error) {
	if r == nil || len(r.Components) == 0 {
		return nil, ErrEmptyRoad
	}
	offsets := r.ComponentOffsets()
	parts := make([]sdf.SDF2, 0, len(r.Components))
	for i, c := range r.Components {
		if c.Width <= 0 || c.Height <= 0 {
			return nil, fmt.Errorf("%w: component %d", road.ErrInvalidRoad, i)
		}
		x := offsets[i]
		if mirrored {
			x = -x
		}
		box := sdf.Box2D(v2.Vec{X: c.Width, Y: c.Height}, 0)
		parts = append(parts, sdf.Transform2D(box, sdf.Translate2d(v2.Vec{X: x, Y: c.Height / 2})))
	}
	return sdf.Union2D(parts...), nil
}

func toV3(v geom.Vec3) v3.Vec { return v3.Vec{X: v.X(), Y: v.Y(), Z: v.Z()} }

// Straight extrudes r from start to end.
func Straight(r *road.RoadData, start, end geom.Vec3) (sdf.SDF3, error) {
	dir := geom.Horizontal(end.Sub(start))
	length := dir.Len()
	if length < geom.DirectionEpsilon {
		return nil, ErrDegenerateSection
	}
	profile, err := Profile(r, false)
	if err != nil {
		return nil, err
	}
	solid := sdf.Extrude3D(profile, length)
	mid := start.Add(end.Sub(start).Mul(0.5))
	mid = geom.Vec3{mid.X(), start.Y(), mid.Z()}
	m := sdf.Translate3d(toV3(mid)).Mul(sdf.RotateY(geom.YawOfDirection(dir)))
	return sdf.Transform3D(solid, m), nil
}

// Curved sweeps r around the arc's center. The road's right-hand side faces
// away from the center on left curves and toward it on right curves.
func Curved(r *road.RoadData, arc geom.CircularArc) (sdf.SDF3, error) {
	sweep := math.Abs(arc.DeltaAngle)
	if sweep < geom.DirectionEpsilon {
		return nil, ErrDegenerateSection
	}
	if r == nil || len(r.Components) == 0 {
		return nil, ErrEmptyRoad
	}
	if arc.Radius-r.TotalWidth()/2 <= 0 {
		return nil, fmt.Errorf("%w: radius %.2f, width %.2f", ErrRadiusTooSmall, arc.Radius, r.TotalWidth())
	}
	profile, err := Profile(r, arc.CurveDirection() == geom.CurveRight)
	if err != nil {
		return nil, err
	}
	profile = sdf.Transform2D(profile, sdf.Translate2d(v2.Vec{X: arc.Radius}))
	revolved, err := sdf.RevolveTheta3D(profile, math.Min(sweep, geom.TwoPi))
	if err != nil {
		return nil, fmt.Errorf("revolve profile: %w", err)
	}

	// The revolve covers angles [0, sweep] about +Z. Turning Z up onto Y
	// puts revolve angle α at arc angle α - π/2, and the yaw rotation then
	// shifts it onto the low end of the arc.
	low := arc.StartAngle + math.Min(0, arc.DeltaAngle)
	m := sdf.Translate3d(toV3(arc.Center)).
		Mul(sdf.RotateY(low + math.Pi/2)).
		Mul(sdf.RotateX(-math.Pi / 2))
	return sdf.Transform3D(revolved, m), nil
}

// ToMesh tessellates s with marching cubes.
func ToMesh(s sdf.SDF3, cells int) (*Mesh, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	m := &Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}
	for i, tri := range triangles {
		n := tri.Normal()
		for j := 0; j < 3; j++ {
			v := tri[j]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
			m.Indices = append(m.Indices, uint32(i*3+j))
		}
	}
	return m, nil
}

// WriteSTL tessellates s and writes it to path as binary STL.
func WriteSTL(s sdf.SDF3, path string, cells int) error {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(s, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return ErrEmptyMesh
	}
	if err := render.SaveSTL(path, triangles); err != nil {
		return fmt.Errorf("mesh: write %s: %w", path, err)
	}
	return nil
}

// Union merges several section solids into one.
func Union(solids ...sdf.SDF3) sdf.SDF3 {
	if len(solids) == 1 {
		return solids[0]
	}
	return sdf.Union3D(solids...)
}
