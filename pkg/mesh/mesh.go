package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/trimesh/pkg/math"
)

// ErrInvalidMesh is returned by Validate for internally inconsistent meshes.
var ErrInvalidMesh = errors.New("invalid mesh")

// Mesh is a finalized indexed mesh. Consecutive triples of Indices form
// triangles. Normals and TexCoords are nil when the mesh carries none, and
// otherwise have one entry per position.
type Mesh struct {
	Indices   []uint32
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec2

	// Radius is the distance from the origin to the farthest position.
	Radius float32
}

// IndexCount returns the number of indices.
func (m *Mesh) IndexCount() uint32 { return uint32(len(m.Indices)) }

// VertexCount returns the number of unique vertices.
func (m *Mesh) VertexCount() uint32 { return uint32(len(m.Positions)) }

// TriangleCount returns the number of complete triangles in the index array.
func (m *Mesh) TriangleCount() uint32 { return uint32(len(m.Indices) / 3) }

// HasNormals reports whether the mesh carries vertex normals.
func (m *Mesh) HasNormals() bool { return m.Normals != nil }

// HasTexCoords reports whether the mesh carries texture coordinates.
func (m *Mesh) HasTexCoords() bool { return m.TexCoords != nil }

// Triangle returns the positions of triangle i.
func (m *Mesh) Triangle(i int) [3]math.Vec3 {
	return [3]math.Vec3{
		m.Positions[m.Indices[i*3]],
		m.Positions[m.Indices[i*3+1]],
		m.Positions[m.Indices[i*3+2]],
	}
}

// Validate checks that every index refers to a stored vertex and that the
// optional attribute arrays match the position count.
//
// A partial trailing triangle is not an error: a builder that ran out of
// capacity can legitimately emit one.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if m.Normals != nil && len(m.Normals) != n {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidMesh, len(m.Normals), n)
	}
	if m.TexCoords != nil && len(m.TexCoords) != n {
		return fmt.Errorf("%w: %d texcoords for %d vertices", ErrInvalidMesh, len(m.TexCoords), n)
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at position %d out of range (vertices=%d)", ErrInvalidMesh, idx, i, n)
		}
	}
	return nil
}
