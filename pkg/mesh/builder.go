// Package mesh welds streams of independent triangles into an indexed mesh.
//
// A Builder is filled between Begin and End. Every submitted corner is compared
// against the unique vertices seen so far; corners whose position, normal and
// texture coordinate all lie within epsilon of an existing vertex reuse its
// index, others are appended. Storage is reserved once by Begin and never grows.
package mesh

import (
	"errors"
	"slices"

	"github.com/chewxy/math32"

	"github.com/Faultbox/trimesh/pkg/math"
)

// DefaultEpsilon is the welding tolerance used when callers have no better value.
const DefaultEpsilon float32 = 1e-7

// Builder errors.
var (
	ErrZeroCapacity = errors.New("mesh capacity must be at least 1")
	ErrNotBegun     = errors.New("mesh builder used before Begin")
	ErrFinalized    = errors.New("mesh builder already finalized, call Begin to start over")
)

// Triangle is one unindexed triangle. Normals and TexCoords are optional.
type Triangle struct {
	Positions [3]math.Vec3
	Normals   *[3]math.Vec3
	TexCoords *[3]math.Vec2
}

// Builder accumulates triangles into deduplicated vertex arrays and an index array.
// It is not safe for concurrent use.
type Builder struct {
	positions []math.Vec3
	normals   []math.Vec3
	texCoords []math.Vec2
	indices   []uint32

	capacity    uint32
	vertexCount uint32
	indexCount  uint32
	dropped     uint32

	// Attribute layout, fixed by the first triangle after Begin.
	layoutSet    bool
	hasNormals   bool
	hasTexCoords bool

	begun     bool
	finalized bool
	radius    float32
}

// NewBuilder returns an empty builder. Call Begin before adding triangles.
func NewBuilder() *Builder {
	return &Builder{}
}

// Begin discards any previous content and reserves room for capacity vertices
// and capacity indices. For n triangles a capacity of 3n always suffices.
func (b *Builder) Begin(capacity uint32) error {
	if capacity == 0 {
		return ErrZeroCapacity
	}

	*b = Builder{
		positions: make([]math.Vec3, capacity),
		normals:   make([]math.Vec3, capacity),
		texCoords: make([]math.Vec2, capacity),
		indices:   make([]uint32, capacity),
		capacity:  capacity,
		begun:     true,
	}
	return nil
}

// AddTriangle welds the three corners of tri into the mesh.
//
// Normals are normalized before matching; the caller's arrays are not modified.
// Corners that match no existing vertex once capacity is exhausted are dropped
// without error and counted by Dropped. The only errors are lifecycle misuse.
func (b *Builder) AddTriangle(tri Triangle, epsilon float32) error {
	if !b.begun {
		return ErrNotBegun
	}
	if b.finalized {
		return ErrFinalized
	}
	if epsilon < 0 {
		epsilon = 0
	}

	if !b.layoutSet {
		b.hasNormals = tri.Normals != nil
		b.hasTexCoords = tri.TexCoords != nil
		b.layoutSet = true
	}

	var norms [3]math.Vec3
	if tri.Normals != nil {
		for i, n := range tri.Normals {
			norms[i] = n.Normalize()
		}
	}
	var uvs [3]math.Vec2
	if tri.TexCoords != nil {
		uvs = *tri.TexCoords
	}

	matchNormals := b.hasNormals && tri.Normals != nil
	matchTexCoords := b.hasTexCoords && tri.TexCoords != nil

	for corner := 0; corner < 3; corner++ {
		pos := tri.Positions[corner]

		match, found := b.find(pos, norms[corner], uvs[corner], matchNormals, matchTexCoords, epsilon)
		if found {
			if b.indexCount < b.capacity {
				b.indices[b.indexCount] = match
				b.indexCount++
			} else {
				b.dropped++
			}
			continue
		}

		if b.vertexCount >= b.capacity || b.indexCount >= b.capacity {
			b.dropped++
			continue
		}

		b.positions[b.vertexCount] = pos
		if b.hasNormals {
			b.normals[b.vertexCount] = norms[corner]
		}
		if b.hasTexCoords {
			b.texCoords[b.vertexCount] = uvs[corner]
		}
		b.indices[b.indexCount] = b.vertexCount
		b.indexCount++
		b.vertexCount++
	}

	return nil
}

// find returns the first stored vertex within epsilon of the candidate corner.
func (b *Builder) find(pos, norm math.Vec3, uv math.Vec2, withNormal, withTexCoord bool, epsilon float32) (uint32, bool) {
	for i := uint32(0); i < b.vertexCount; i++ {
		if !b.positions[i].CloseTo(pos, epsilon) {
			continue
		}
		if withNormal && !b.normals[i].CloseTo(norm, epsilon) {
			continue
		}
		if withTexCoord && !b.texCoords[i].CloseTo(uv, epsilon) {
			continue
		}
		return i, true
	}
	return 0, false
}

// End finalizes the mesh: it computes the bounding sphere radius around the
// origin, trims the reserved workspace down to what was used, and rejects any
// further AddTriangle calls. Calling End again returns the same mesh.
func (b *Builder) End() *Mesh {
	if !b.begun {
		return &Mesh{}
	}
	if b.finalized {
		return b.Mesh()
	}

	var maxSq float32
	for _, p := range b.positions[:b.vertexCount] {
		if r := p.LengthSquared(); r > maxSq {
			maxSq = r
		}
	}
	b.radius = math32.Sqrt(maxSq)

	b.positions = slices.Clone(b.positions[:b.vertexCount])
	b.normals = slices.Clone(b.normals[:b.vertexCount])
	b.texCoords = slices.Clone(b.texCoords[:b.vertexCount])
	b.indices = slices.Clone(b.indices[:b.indexCount])
	b.finalized = true

	return b.Mesh()
}

// Capacity returns the bound passed to Begin.
func (b *Builder) Capacity() uint32 { return b.capacity }

// VertexCount returns the number of unique vertices.
func (b *Builder) VertexCount() uint32 { return b.vertexCount }

// IndexCount returns the number of indices emitted.
func (b *Builder) IndexCount() uint32 { return b.indexCount }

// Dropped returns how many corners were discarded because capacity ran out.
func (b *Builder) Dropped() uint32 { return b.dropped }

// BoundingSphere returns the radius computed by End, or 0 before End.
func (b *Builder) BoundingSphere() float32 { return b.radius }

// Finalized reports whether End has been called since the last Begin.
func (b *Builder) Finalized() bool { return b.finalized }

// Positions returns a read-only view of the unique vertex positions.
func (b *Builder) Positions() []math.Vec3 {
	return view(b.positions, b.vertexCount)
}

// Normals returns a read-only view of the vertex normals, or nil when the mesh
// carries none.
func (b *Builder) Normals() []math.Vec3 {
	if !b.hasNormals {
		return nil
	}
	return view(b.normals, b.vertexCount)
}

// TexCoords returns a read-only view of the texture coordinates, or nil when the
// mesh carries none.
func (b *Builder) TexCoords() []math.Vec2 {
	if !b.hasTexCoords {
		return nil
	}
	return view(b.texCoords, b.vertexCount)
}

// Indices returns a read-only view of the index array.
func (b *Builder) Indices() []uint32 {
	return view(b.indices, b.indexCount)
}

// Mesh packages the builder's current arrays as a Mesh. The slices are shared
// with the builder, not copied.
func (b *Builder) Mesh() *Mesh {
	return &Mesh{
		Indices:   b.Indices(),
		Positions: b.Positions(),
		Normals:   b.Normals(),
		TexCoords: b.TexCoords(),
		Radius:    b.radius,
	}
}

// view returns s[:n] with its capacity clipped so appends never write into
// builder storage.
func view[T any](s []T, n uint32) []T {
	if s == nil {
		return nil
	}
	return s[:n:n]
}
