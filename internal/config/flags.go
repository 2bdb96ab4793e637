package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags are the command-line overrides shared by meshtool subcommands.
type Flags struct {
	fs *flag.FlagSet

	config      string
	debug       bool
	epsilon     float64
	noNormals   bool
	noTexCoords bool
	scale       float64
	translate   [3]float32
	logFile     string
}

// RegisterFlags binds the shared flags to fs. Parse fs before calling Load.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging")
	fs.Float64Var(&f.epsilon, "eps", 0, "Vertex welding tolerance")
	fs.BoolVar(&f.noNormals, "no-normals", false, "Drop source normals")
	fs.BoolVar(&f.noTexCoords, "no-texcoords", false, "Drop source texture coordinates")
	fs.Float64Var(&f.scale, "scale", 0, "Uniform import scale")
	fs.Func("translate", "Import translation as `x,y,z`", func(s string) error {
		v, err := parseVec3(s)
		if err != nil {
			return err
		}
		f.translate = v
		return nil
	})
	fs.StringVar(&f.logFile, "log-file", "", "Also write logs to this file")
	return f
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return f.config
}

// apply applies CLI flag overrides to the config. Only flags given on the
// command line override; -eps 0 therefore selects exact welding.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "debug":
			if f.debug {
				cfg.Logging.Level = "debug"
			}
		case "eps":
			cfg.Build.Epsilon = float32(f.epsilon)
		case "no-normals":
			cfg.Build.Normals = !f.noNormals
		case "no-texcoords":
			cfg.Build.TexCoords = !f.noTexCoords
		case "scale":
			cfg.Build.Scale = float32(f.scale)
		case "translate":
			cfg.Build.Translate = f.translate
		case "log-file":
			cfg.Logging.LogFile = f.logFile
		}
	})
}

func parseVec3(s string) ([3]float32, error) {
	var v [3]float32
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return v, fmt.Errorf("expected x,y,z, got %q", s)
	}
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return v, fmt.Errorf("component %d: %w", i, err)
		}
		v[i] = float32(n)
	}
	return v, nil
}
