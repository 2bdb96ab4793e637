// Package formats reads and writes the binary indexed mesh format.
//
// The layout is a flat little-endian record with no magic, version or
// checksum:
//
//	u32 indexCount
//	u32 vertexCount
//	f32 boundingSphereRadius
//	u32 indices[indexCount]
//	f32 positions[vertexCount][3]
//	f32 normals[vertexCount][3]    (optional)
//	f32 texcoords[vertexCount][2]  (optional)
//
// Nothing in the file says which optional blocks are present. Readers either
// know it up front (Layout) or infer it from the file size (DetectLayout).
package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// Mesh format errors.
var (
	ErrTruncatedMesh = errors.New("truncated mesh data")
	ErrInvalidIndex  = errors.New("mesh index out of range")
	ErrMeshTooLarge  = errors.New("mesh element count exceeds limit")
	ErrUnknownLayout = errors.New("file size matches no mesh layout")
)

// MaxElements bounds the index and vertex counts accepted from a header.
const MaxElements = 1 << 26

// HeaderSize is the size of the fixed header in bytes.
const HeaderSize = 12

const (
	indexSize    = 4
	positionSize = 12
	normalSize   = 12
	texCoordSize = 8
)

var byteOrder = binary.LittleEndian

// Header is the fixed 12-byte record at the start of a mesh file.
// Radius occupies the same 4-byte slot width as the two counts.
type Header struct {
	IndexCount  uint32
	VertexCount uint32
	Radius      float32
}

// Layout says which optional blocks follow the positions.
type Layout struct {
	Normals   bool
	TexCoords bool
}

// String returns a short description such as "positions+normals".
func (l Layout) String() string {
	s := "positions"
	if l.Normals {
		s += "+normals"
	}
	if l.TexCoords {
		s += "+texcoords"
	}
	return s
}

// Size returns the file size in bytes of a mesh with this layout.
func (l Layout) Size(indexCount, vertexCount uint32) int64 {
	ic, vc := int64(indexCount), int64(vertexCount)
	size := HeaderSize + ic*indexSize + vc*positionSize
	if l.Normals {
		size += vc * normalSize
	}
	if l.TexCoords {
		size += vc * texCoordSize
	}
	return size
}

// LayoutOf returns the layout a mesh would be written with.
func LayoutOf(m *mesh.Mesh) Layout {
	return Layout{Normals: m.HasNormals(), TexCoords: m.HasTexCoords()}
}

// DetectLayout infers the optional blocks of a single-mesh file from its size.
// A mesh with no vertices always reports the positions-only layout.
func DetectLayout(size int64, indexCount, vertexCount uint32) (Layout, error) {
	candidates := []Layout{
		{},
		{Normals: true},
		{TexCoords: true},
		{Normals: true, TexCoords: true},
	}
	for _, l := range candidates {
		if l.Size(indexCount, vertexCount) == size {
			return l, nil
		}
	}
	return Layout{}, fmt.Errorf("%w: %d bytes for %d indices, %d vertices", ErrUnknownLayout, size, indexCount, vertexCount)
}

// WriteMesh writes m to w. Only the optional blocks m carries are written.
func WriteMesh(w io.Writer, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	header := Header{
		IndexCount:  m.IndexCount(),
		VertexCount: m.VertexCount(),
		Radius:      m.Radius,
	}
	if err := binary.Write(bw, byteOrder, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := binary.Write(bw, byteOrder, m.Indices); err != nil {
		return fmt.Errorf("writing indices: %w", err)
	}
	if err := binary.Write(bw, byteOrder, m.Positions); err != nil {
		return fmt.Errorf("writing positions: %w", err)
	}
	if m.HasNormals() {
		if err := binary.Write(bw, byteOrder, m.Normals); err != nil {
			return fmt.Errorf("writing normals: %w", err)
		}
	}
	if m.HasTexCoords() {
		if err := binary.Write(bw, byteOrder, m.TexCoords); err != nil {
			return fmt.Errorf("writing texcoords: %w", err)
		}
	}

	return bw.Flush()
}

// ReadHeader reads the fixed header and checks the counts against MaxElements.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, byteOrder, &h); err != nil {
		return Header{}, fmt.Errorf("%w: reading header: %v", ErrTruncatedMesh, err)
	}
	if h.IndexCount > MaxElements || h.VertexCount > MaxElements {
		return Header{}, fmt.Errorf("%w: %d indices, %d vertices", ErrMeshTooLarge, h.IndexCount, h.VertexCount)
	}
	return h, nil
}

// ReadMesh reads one mesh from r. Indices and positions must be complete.
// Optional blocks are read only when requested by layout; a short optional
// block leaves that attribute nil instead of failing. r is not buffered here,
// so several meshes can be read back to back from one stream.
func ReadMesh(r io.Reader, layout Layout) (*mesh.Mesh, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	// Readers that know their remaining length let us refuse bad counts
	// before allocating. Others are read in bounded chunks so memory only
	// grows with the bytes actually present.
	sized := false
	if lr, ok := r.(interface{ Len() int }); ok {
		need := Layout{}.Size(h.IndexCount, h.VertexCount) - HeaderSize
		if int64(lr.Len()) < need {
			return nil, fmt.Errorf("%w: need %d bytes for indices and positions, have %d", ErrTruncatedMesh, need, lr.Len())
		}
		sized = true
	}

	m := &mesh.Mesh{Radius: h.Radius}
	if m.Indices, err = readBlock[uint32](r, h.IndexCount, sized); err != nil {
		return nil, fmt.Errorf("%w: reading %d indices: %v", ErrTruncatedMesh, h.IndexCount, err)
	}
	if m.Positions, err = readBlock[math.Vec3](r, h.VertexCount, sized); err != nil {
		return nil, fmt.Errorf("%w: reading %d positions: %v", ErrTruncatedMesh, h.VertexCount, err)
	}
	for i, idx := range m.Indices {
		if idx >= h.VertexCount {
			return nil, fmt.Errorf("%w: index %d at %d (vertices=%d)", ErrInvalidIndex, idx, i, h.VertexCount)
		}
	}

	exhausted := false
	if layout.Normals {
		normals := make([]math.Vec3, h.VertexCount)
		ok, err := readOptional(r, normals)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		if ok {
			m.Normals = normals
		} else {
			exhausted = true
		}
	}
	if layout.TexCoords && !exhausted {
		texCoords := make([]math.Vec2, h.VertexCount)
		ok, err := readOptional(r, texCoords)
		if err != nil {
			return nil, fmt.Errorf("reading texcoords: %w", err)
		}
		if ok {
			m.TexCoords = texCoords
		}
	}

	return m, nil
}

// readChunk is the number of elements readBlock reads at a time from readers
// of unknown length.
const readChunk = 1 << 14

// readBlock reads n elements of T. With sized set the caller has already
// checked the data is present and the block is read in one go.
func readBlock[T uint32 | math.Vec3](r io.Reader, n uint32, sized bool) ([]T, error) {
	if sized {
		out := make([]T, n)
		if err := binary.Read(r, byteOrder, out); err != nil {
			return nil, err
		}
		return out, nil
	}

	out := make([]T, 0, min(n, readChunk))
	buf := make([]T, min(n, readChunk))
	for remaining := n; remaining > 0; {
		chunk := buf[:min(remaining, readChunk)]
		if err := binary.Read(r, byteOrder, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk...)
		remaining -= uint32(len(chunk))
	}
	return out, nil
}

// readOptional fills data from r. It reports false without error when the
// stream ends before the block is complete.
func readOptional(r io.Reader, data any) (bool, error) {
	err := binary.Read(r, byteOrder, data)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return false, nil
	default:
		return false, err
	}
}

// ParseMesh parses a mesh from raw bytes.
func ParseMesh(data []byte, layout Layout) (*mesh.Mesh, error) {
	return ReadMesh(bytes.NewReader(data), layout)
}

// LoadMeshFile reads a mesh file from disk using the given layout.
func LoadMeshFile(path string, layout Layout) (*mesh.Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mesh file: %w", err)
	}
	return ParseMesh(data, layout)
}

// LoadMeshFileAuto reads a single-mesh file, inferring its layout from the size.
// Files whose size matches no layout are read like LoadMeshFile with every
// block requested, so a short optional block is dropped rather than failing.
// The returned layout describes the blocks actually read.
func LoadMeshFileAuto(path string) (*mesh.Mesh, Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Layout{}, fmt.Errorf("reading mesh file: %w", err)
	}

	h, err := ReadHeader(bytes.NewReader(data))
	if err != nil {
		return nil, Layout{}, err
	}
	layout, err := DetectLayout(int64(len(data)), h.IndexCount, h.VertexCount)
	if err != nil {
		// No exact match: the file carries a short optional block. Ask for
		// every block and let ReadMesh drop what is incomplete, as it does
		// for an explicit layout.
		layout = Layout{Normals: true, TexCoords: true}
	}

	m, err := ParseMesh(data, layout)
	if err != nil {
		return nil, Layout{}, err
	}
	return m, LayoutOf(m), nil
}

// SaveMeshFile writes m to path. The data goes to a temporary file in the
// same directory first, which is renamed over path once fully written.
func SaveMeshFile(path string, m *mesh.Mesh) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".trimesh-*")
	if err != nil {
		return fmt.Errorf("creating mesh file: %w", err)
	}
	tmp := f.Name()

	if err := WriteMesh(f, m); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing mesh file: %w", err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("setting mesh file mode: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming mesh file: %w", err)
	}
	return nil
}
