package mesh

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/trimesh/pkg/math"
)

// degenerateArea is the triangle area below which a triangle counts as degenerate.
const degenerateArea = 1e-12

// Summary describes the shape of a finalized mesh.
type Summary struct {
	Vertices   uint32
	Indices    uint32
	Triangles  uint32
	Degenerate uint32

	// Bounds is the axis-aligned box around all positions.
	Bounds r3.Box
	// Centroid is the mean of the unique positions.
	Centroid r3.Vec
	Radius   float32

	// Reuse is indices per unique vertex; 1 means nothing was welded.
	Reuse float64
}

// Summarize computes statistics for m. Calculations run in float64.
func Summarize(m *Mesh) Summary {
	s := Summary{
		Vertices:  m.VertexCount(),
		Indices:   m.IndexCount(),
		Triangles: m.TriangleCount(),
		Radius:    m.Radius,
	}
	if len(m.Positions) == 0 {
		return s
	}

	first := toR3(m.Positions[0])
	s.Bounds = r3.Box{Min: first, Max: first}
	var sum r3.Vec
	for _, p := range m.Positions {
		v := toR3(p)
		sum = r3.Add(sum, v)
		s.Bounds.Min = r3.Vec{X: min(s.Bounds.Min.X, v.X), Y: min(s.Bounds.Min.Y, v.Y), Z: min(s.Bounds.Min.Z, v.Z)}
		s.Bounds.Max = r3.Vec{X: max(s.Bounds.Max.X, v.X), Y: max(s.Bounds.Max.Y, v.Y), Z: max(s.Bounds.Max.Z, v.Z)}
	}
	s.Centroid = r3.Scale(1/float64(len(m.Positions)), sum)
	s.Reuse = float64(s.Indices) / float64(s.Vertices)

	for i := 0; i < int(s.Triangles); i++ {
		tri := m.Triangle(i)
		a, b, c := toR3(tri[0]), toR3(tri[1]), toR3(tri[2])
		area := 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
		if area < degenerateArea {
			s.Degenerate++
		}
	}

	return s
}

func toR3(v math.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}
