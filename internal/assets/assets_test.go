package assets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fogleman/fauxgl"

	"github.com/Faultbox/trimesh/pkg/math"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
f 1/1/1 3/3/1 4/4/1
`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// buildSTL creates a binary STL with the given triangles.
func buildSTL(tris [][3][3]float32) []byte {
	buf := new(bytes.Buffer)
	buf.Write(make([]byte, 80))
	binary.Write(buf, binary.LittleEndian, uint32(len(tris)))
	for _, tri := range tris {
		binary.Write(buf, binary.LittleEndian, [3]float32{0, 0, 1})
		binary.Write(buf, binary.LittleEndian, tri)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

func TestConvert(t *testing.T) {
	src := &fauxgl.Mesh{Triangles: []*fauxgl.Triangle{
		{
			V1: fauxgl.Vertex{Position: fauxgl.V(0, 0, 0), Normal: fauxgl.V(0, 0, 1), Texture: fauxgl.V(0, 0, 0)},
			V2: fauxgl.Vertex{Position: fauxgl.V(1, 0, 0), Normal: fauxgl.V(0, 0, 1), Texture: fauxgl.V(1, 0, 0)},
			V3: fauxgl.Vertex{Position: fauxgl.V(0, 1, 0), Normal: fauxgl.V(0, 0, 1), Texture: fauxgl.V(0, 1, 0)},
		},
	}}

	tris := Convert(src, true)
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	tri := tris[0]
	if tri.Positions[1] != (math.Vec3{X: 1}) {
		t.Errorf("expected corner 1 at (1,0,0), got %v", tri.Positions[1])
	}
	if tri.Normals == nil || tri.Normals[2] != (math.Vec3{Z: 1}) {
		t.Errorf("expected +Z normals, got %v", tri.Normals)
	}
	if tri.TexCoords == nil || tri.TexCoords[2] != (math.Vec2{Y: 1}) {
		t.Errorf("expected texcoord (0,1), got %v", tri.TexCoords)
	}
}

func TestConvert_DropsAbsentAttributes(t *testing.T) {
	src := &fauxgl.Mesh{Triangles: []*fauxgl.Triangle{
		{
			V1: fauxgl.Vertex{Position: fauxgl.V(0, 0, 0)},
			V2: fauxgl.Vertex{Position: fauxgl.V(1, 0, 0)},
			V3: fauxgl.Vertex{Position: fauxgl.V(0, 1, 0)},
		},
	}}

	tris := Convert(src, false)
	if tris[0].Normals != nil {
		t.Error("expected no normals when every normal is zero")
	}
	if tris[0].TexCoords != nil {
		t.Error("expected no texcoords when not requested")
	}
}

func TestManager_LoadOBJ(t *testing.T) {
	path := writeFile(t, "quad.obj", []byte(quadOBJ))

	m := NewManager()
	defer m.Close()

	tris, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(tris))
	}
	if tris[0].Positions[2] != (math.Vec3{X: 1, Y: 1}) {
		t.Errorf("expected (1,1,0), got %v", tris[0].Positions[2])
	}
	if tris[1].Positions[2] != (math.Vec3{Y: 1}) {
		t.Errorf("expected (0,1,0), got %v", tris[1].Positions[2])
	}
	if tris[0].TexCoords == nil {
		t.Error("expected OBJ texcoords")
	}
	if tris[0].Normals == nil {
		t.Error("expected OBJ normals")
	}
}

func TestManager_LoadSTL(t *testing.T) {
	path := writeFile(t, "tri.stl", buildSTL([][3][3]float32{
		{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}},
	}))

	m := NewManager()
	tris, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	if tris[0].Positions[1] != (math.Vec3{X: 2}) {
		t.Errorf("expected (2,0,0), got %v", tris[0].Positions[1])
	}
	if tris[0].TexCoords != nil {
		t.Error("STL should not carry texcoords")
	}
}

func TestManager_Unsupported(t *testing.T) {
	path := writeFile(t, "model.fbx", []byte("nope"))

	_, err := NewManager().Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestManager_Missing(t *testing.T) {
	_, err := NewManager().Load(filepath.Join(t.TempDir(), "missing.obj"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

func TestManager_Cache(t *testing.T) {
	path := writeFile(t, "quad.obj", []byte(quadOBJ))
	m := NewManager()

	if _, err := m.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if hits, misses := m.Stats(); hits != 1 || misses != 1 {
		t.Errorf("expected 1 hit 1 miss, got %d hits %d misses", hits, misses)
	}

	// A newer modification time forces a reload.
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}
	if _, err := m.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if hits, misses := m.Stats(); hits != 1 || misses != 2 {
		t.Errorf("expected 1 hit 2 misses, got %d hits %d misses", hits, misses)
	}

	// Invalidate drops the entry even though the file is unchanged.
	m.Invalidate(path)
	if _, err := m.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if hits, misses := m.Stats(); hits != 1 || misses != 3 {
		t.Errorf("expected 1 hit 3 misses after Invalidate, got %d hits %d misses", hits, misses)
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.obj", true},
		{"b.STL", true},
		{"c.ply", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q): expected %v, got %v", tt.path, tt.want, got)
		}
	}
}
