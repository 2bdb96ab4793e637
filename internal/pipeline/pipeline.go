// Package pipeline turns a source model into a welded binary mesh file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/trimesh/internal/assets"
	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
	"github.com/Faultbox/trimesh/pkg/transform"
)

// ErrEmptySource is returned when the source model has no triangles.
var ErrEmptySource = errors.New("source model has no triangles")

// Options control one build.
type Options struct {
	Epsilon   float32
	Normals   bool
	TexCoords bool

	// Import transform, applied as scale, then X, Y and Z rotations, then
	// translation.
	Scale     float32
	RotateX   float32 // degrees
	RotateY   float32 // degrees
	RotateZ   float32 // degrees
	Translate math.Vec3

	// CapacityFactor scales the builder capacity relative to 3 * triangles.
	// Values <= 0 mean 1.
	CapacityFactor float32
}

// DefaultOptions returns options that keep every attribute and weld with
// mesh.DefaultEpsilon.
func DefaultOptions() Options {
	return Options{
		Epsilon:        mesh.DefaultEpsilon,
		Normals:        true,
		TexCoords:      true,
		Scale:          1,
		CapacityFactor: 1,
	}
}

// Result summarizes a finished build.
type Result struct {
	Source    string
	Output    string
	Triangles int
	Capacity  uint32
	Vertices  uint32
	Indices   uint32
	Dropped   uint32
	Radius    float32
	Layout    formats.Layout
	Duration  time.Duration
}

// Runner builds meshes. A Runner reuses its asset cache across builds.
type Runner struct {
	assets *assets.Manager
	log    *zap.Logger
}

// NewRunner creates a runner with its own asset cache.
func NewRunner() *Runner {
	return &Runner{
		assets: assets.NewManager(),
		log:    logger.Named("pipeline"),
	}
}

// Invalidate forgets the cached import of src.
func (r *Runner) Invalidate(src string) {
	r.assets.Invalidate(src)
}

// Run builds src into dst using a fresh Runner.
func Run(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	return NewRunner().Run(ctx, src, dst, opts)
}

// Run imports src, applies the import transform, welds the triangles and
// writes the result to dst. ctx is checked between triangles.
func (r *Runner) Run(ctx context.Context, src, dst string, opts Options) (*Result, error) {
	start := time.Now()

	tris, err := r.assets.Load(src)
	if err != nil {
		return nil, err
	}
	if len(tris) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, src)
	}
	r.log.Debug("source loaded", zap.String("source", src), zap.Int("triangles", len(tris)))

	xf := newImportTransform(opts)

	capacity := Capacity(len(tris), opts.CapacityFactor)
	b := mesh.NewBuilder()
	if err := b.Begin(capacity); err != nil {
		return nil, err
	}

	for i, tri := range tris {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if err := b.AddTriangle(xf.apply(tri, opts), opts.Epsilon); err != nil {
			return nil, fmt.Errorf("welding triangle %d: %w", i, err)
		}
	}

	m := b.End()
	if err := formats.SaveMeshFile(dst, m); err != nil {
		return nil, fmt.Errorf("saving %s: %w", dst, err)
	}

	res := &Result{
		Source:    src,
		Output:    dst,
		Triangles: len(tris),
		Capacity:  capacity,
		Vertices:  b.VertexCount(),
		Indices:   b.IndexCount(),
		Dropped:   b.Dropped(),
		Radius:    b.BoundingSphere(),
		Layout:    formats.LayoutOf(m),
		Duration:  time.Since(start),
	}

	if res.Dropped > 0 {
		r.log.Warn("capacity exhausted, corners dropped",
			zap.Uint32("dropped", res.Dropped),
			zap.Uint32("capacity", capacity))
	}
	r.log.Info("mesh built",
		zap.String("output", dst),
		zap.Int("triangles", res.Triangles),
		zap.Uint32("vertices", res.Vertices),
		zap.Uint32("indices", res.Indices),
		zap.Float32("radius", res.Radius),
		zap.Stringer("layout", res.Layout),
		zap.Duration("took", res.Duration))

	return res, nil
}

// Capacity returns the builder capacity for n triangles: ceil(3n * factor),
// at least 1. Factors <= 0 mean 1.
func Capacity(n int, factor float32) uint32 {
	if factor <= 0 {
		factor = 1
	}
	c := math32.Ceil(float32(3*n) * factor)
	if c < 1 {
		return 1
	}
	return uint32(c)
}

// importTransform applies the model-view part of the import transform to
// source geometry.
type importTransform struct {
	modelView *transform.MatrixStack
	geometry  transform.GeometryTransform
	identity  bool
}

func newImportTransform(opts Options) *importTransform {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}

	mv := transform.NewMatrixStack()
	mv.Mul(math.Translate(opts.Translate.X, opts.Translate.Y, opts.Translate.Z))
	mv.Mul(math.RotateZ(radians(opts.RotateZ)))
	mv.Mul(math.RotateY(radians(opts.RotateY)))
	mv.Mul(math.RotateX(radians(opts.RotateX)))
	mv.Mul(math.Scale(scale, scale, scale))

	xf := &importTransform{modelView: mv}
	xf.geometry.SetModelViewStack(mv)
	xf.identity = mv.Top() == math.Identity()
	return xf
}

// apply returns tri with positions moved by the model-view matrix and normals
// by the normalized normal matrix. Attributes disabled in opts are removed.
func (x *importTransform) apply(tri mesh.Triangle, opts Options) mesh.Triangle {
	if !opts.Normals {
		tri.Normals = nil
	}
	if !opts.TexCoords {
		tri.TexCoords = nil
	}
	if x.identity {
		return tri
	}

	mv := x.geometry.ModelView()
	for i := range tri.Positions {
		tri.Positions[i] = mv.TransformVec3(tri.Positions[i])
	}
	if tri.Normals != nil {
		nm := x.geometry.NormalMatrix(true)
		var normals [3]math.Vec3
		for i, n := range tri.Normals {
			normals[i] = nm.MulVec3(n)
		}
		tri.Normals = &normals
	}
	return tri
}

func radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
