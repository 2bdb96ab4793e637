// meshtool builds and inspects binary indexed triangle meshes.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Faultbox/trimesh/internal/config"
	"github.com/Faultbox/trimesh/internal/logger"
	"github.com/Faultbox/trimesh/internal/pipeline"
	"github.com/Faultbox/trimesh/internal/watch"
	"github.com/Faultbox/trimesh/pkg/formats"
	"github.com/Faultbox/trimesh/pkg/math"
	"github.com/Faultbox/trimesh/pkg/mesh"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build", "b":
		cmdBuild(args)
	case "info", "i":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "watch", "w":
		cmdWatch(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - indexed triangle mesh builder

Usage:
  meshtool <command> [options]

Commands:
  build [flags] <input> <output.mesh>   Weld an OBJ or STL model into a mesh file
  info [-normals] [-texcoords] <file>   Show mesh statistics (layout auto-detected
                                        unless a block flag is given)
  dump [-n N] <file>                    Print indices and vertices
  watch [flags] <input> <output.mesh>   Rebuild whenever the input changes

Build flags:
  -config <file>    Config file (.yaml or .toml)
  -eps <value>      Vertex welding tolerance
  -scale <value>    Uniform import scale
  -translate x,y,z  Import translation, applied after scale and rotation
  -no-normals       Drop source normals
  -no-texcoords     Drop source texture coordinates
  -debug            Enable debug logging
  -log-file <file>  Also write logs to this file

Examples:
  meshtool build -eps 0.0001 model.obj model.mesh
  meshtool info model.mesh
  meshtool dump -n 20 model.mesh
  meshtool watch -scale 0.01 model.stl model.mesh`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	logger.Sync()
	os.Exit(1)
}

// setup parses the shared build flags, loads config and starts logging.
func setup(name string, args []string) (*config.Config, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	fs.Parse(args)

	cfg, err := config.Load(flags)
	if err != nil {
		fatal(err)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fatal(err)
	}
	return cfg, fs
}

// buildOptions maps the build config onto pipeline options.
func buildOptions(b config.BuildConfig) pipeline.Options {
	return pipeline.Options{
		Epsilon:        b.Epsilon,
		Normals:        b.Normals,
		TexCoords:      b.TexCoords,
		Scale:          b.Scale,
		RotateX:        b.RotateX,
		RotateY:        b.RotateY,
		RotateZ:        b.RotateZ,
		Translate:      math.Vec3{X: b.Translate[0], Y: b.Translate[1], Z: b.Translate[2]},
		CapacityFactor: b.Capacity,
	}
}

func cmdBuild(args []string) {
	cfg, fs := setup("build", args)
	defer logger.Sync()

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool build [flags] <input.obj|input.stl> <output.mesh>")
		os.Exit(1)
	}

	res, err := pipeline.Run(context.Background(), fs.Arg(0), fs.Arg(1), buildOptions(cfg.Build))
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Built:     %s\n", res.Output)
	fmt.Printf("Layout:    %s\n", res.Layout)
	fmt.Printf("Triangles: %d in, %d out\n", res.Triangles, res.Indices/3)
	fmt.Printf("Vertices:  %d (capacity %d)\n", res.Vertices, res.Capacity)
	fmt.Printf("Radius:    %g\n", res.Radius)
	if res.Dropped > 0 {
		fmt.Fprintf(os.Stderr, "\n(%d corners dropped, raise build.capacity)\n", res.Dropped)
	}
}

func loadMesh(path string, normals, texCoords bool) (*mesh.Mesh, formats.Layout, error) {
	if !normals && !texCoords {
		return formats.LoadMeshFileAuto(path)
	}
	layout := formats.Layout{Normals: normals, TexCoords: texCoords}
	m, err := formats.LoadMeshFile(path, layout)
	if err != nil {
		return nil, layout, err
	}
	return m, formats.LayoutOf(m), nil
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	normals := fs.Bool("normals", false, "Read a normals block")
	texCoords := fs.Bool("texcoords", false, "Read a texcoords block")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info [-normals] [-texcoords] <file.mesh>")
		os.Exit(1)
	}

	m, layout, err := loadMesh(fs.Arg(0), *normals, *texCoords)
	if err != nil {
		fatal(err)
	}

	s := mesh.Summarize(m)
	fmt.Printf("Mesh:       %s\n", fs.Arg(0))
	fmt.Printf("Layout:     %s\n", layout)
	fmt.Printf("Vertices:   %d\n", s.Vertices)
	fmt.Printf("Indices:    %d\n", s.Indices)
	fmt.Printf("Triangles:  %d (%d degenerate)\n", s.Triangles, s.Degenerate)
	fmt.Printf("Reuse:      %.2f indices/vertex\n", s.Reuse)
	fmt.Printf("Radius:     %g\n", s.Radius)
	fmt.Printf("Bounds:     (%g, %g, %g) - (%g, %g, %g)\n",
		s.Bounds.Min.X, s.Bounds.Min.Y, s.Bounds.Min.Z,
		s.Bounds.Max.X, s.Bounds.Max.Y, s.Bounds.Max.Z)
	fmt.Printf("Centroid:   (%g, %g, %g)\n", s.Centroid.X, s.Centroid.Y, s.Centroid.Z)
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N entries per block (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool dump [-n N] <file.mesh>")
		os.Exit(1)
	}

	m, layout, err := formats.LoadMeshFileAuto(fs.Arg(0))
	if err != nil {
		fatal(err)
	}

	n := func(total int) int {
		if *limit > 0 && *limit < total {
			return *limit
		}
		return total
	}

	fmt.Printf("# %s, radius %g\n", layout, m.Radius)
	fmt.Printf("\ntriangles (%d)\n", m.TriangleCount())
	for i := 0; i < n(int(m.TriangleCount())); i++ {
		idx := m.Indices[i*3 : i*3+3]
		fmt.Printf("  %6d: %d %d %d\n", i, idx[0], idx[1], idx[2])
	}

	fmt.Printf("\nvertices (%d)\n", m.VertexCount())
	for i := 0; i < n(len(m.Positions)); i++ {
		p := m.Positions[i]
		fmt.Printf("  %6d: p(%g, %g, %g)", i, p.X, p.Y, p.Z)
		if m.HasNormals() {
			nv := m.Normals[i]
			fmt.Printf(" n(%g, %g, %g)", nv.X, nv.Y, nv.Z)
		}
		if m.HasTexCoords() {
			uv := m.TexCoords[i]
			fmt.Printf(" uv(%g, %g)", uv.X, uv.Y)
		}
		fmt.Println()
	}
}

func cmdWatch(args []string) {
	cfg, fs := setup("watch", args)
	defer logger.Sync()

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool watch [flags] <input.obj|input.stl> <output.mesh>")
		os.Exit(1)
	}
	src, dst := fs.Arg(0), fs.Arg(1)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := pipeline.NewRunner()
	opts := buildOptions(cfg.Build)
	w, err := watch.New(src, time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, func(ctx context.Context) error {
		res, err := runner.Run(ctx, src, dst, opts)
		if err != nil {
			return err
		}
		fmt.Printf("Rebuilt %s: %d vertices, %d indices\n", res.Output, res.Vertices, res.Indices)
		return nil
	})
	if err != nil {
		fatal(err)
	}
	if err := w.Run(ctx); err != nil {
		fatal(err)
	}
}
