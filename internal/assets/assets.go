// Package assets imports source models and turns them into builder triangles.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fogleman/fauxgl"

	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

// ErrUnsupportedFormat is returned for source files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// loader reads a source file. texCoords reports whether the format carries
// texture coordinates at all.
type loader struct {
	load      func(path string) (*fauxgl.Mesh, error)
	texCoords bool
}

var loaders = map[string]loader{
	".obj": {load: fauxgl.LoadOBJ, texCoords: true},
	".stl": {load: fauxgl.LoadSTL},
}

// Supported reports whether path has an extension the Manager can import.
func Supported(path string) bool {
	_, ok := loaders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Manager loads source models, caching results until the file changes.
type Manager struct {
	cache *Cache
	mu    sync.Mutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// Load imports the model at path as independent triangles.
func (m *Manager) Load(path string) ([]mesh.Triangle, error) {
	ld, ok := loaders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening source %s: %w", path, err)
	}

	// Check cache first
	if tris, ok := m.cache.Get(path, info.ModTime()); ok {
		return tris, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	src, err := ld.load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	tris := Convert(src, ld.texCoords)
	m.cache.Set(path, info.ModTime(), tris)
	return tris, nil
}

// Invalidate drops any cached import of path.
func (m *Manager) Invalidate(path string) {
	m.cache.Delete(path)
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close releases cached models.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Convert turns a fauxgl mesh into builder triangles. Normals are kept when any
// corner carries a non-zero normal. Texture coordinates are kept only when
// withTexCoords is set.
func Convert(src *fauxgl.Mesh, withTexCoords bool) []mesh.Triangle {
	hasNormals := false
	for _, t := range src.Triangles {
		if !isZero(t.V1.Normal) || !isZero(t.V2.Normal) || !isZero(t.V3.Normal) {
			hasNormals = true
			break
		}
	}

	tris := make([]mesh.Triangle, 0, len(src.Triangles))
	for _, t := range src.Triangles {
		corners := [3]fauxgl.Vertex{t.V1, t.V2, t.V3}

		var tri mesh.Triangle
		var normals [3]math.Vec3
		var uvs [3]math.Vec2
		for i, v := range corners {
			tri.Positions[i] = vec3(v.Position)
			normals[i] = vec3(v.Normal)
			uvs[i] = math.Vec2{X: float32(v.Texture.X), Y: float32(v.Texture.Y)}
		}
		if hasNormals {
			tri.Normals = &normals
		}
		if withTexCoords {
			tri.TexCoords = &uvs
		}
		tris = append(tris, tri)
	}
	return tris
}

func vec3(v fauxgl.Vector) math.Vec3 {
	return math.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}

func isZero(v fauxgl.Vector) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

type cacheEntry struct {
	modTime   time.Time
	triangles []mesh.Triangle
}

// Cache is a simple in-memory cache for imported models, keyed by path and
// invalidated when the file's modification time changes.
type Cache struct {
	data map[string]cacheEntry
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]cacheEntry),
	}
}

// Get retrieves an item from cache. Entries stored for a different
// modification time count as misses.
func (c *Cache) Get(key string, modTime time.Time) ([]mesh.Triangle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok && e.modTime.Equal(modTime) {
		c.hits++
		return e.triangles, true
	}
	c.misses++
	return nil, false
}

// Set stores an item in cache.
func (c *Cache) Set(key string, modTime time.Time, tris []mesh.Triangle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{modTime: modTime, triangles: tris}
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
