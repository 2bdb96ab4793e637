// Package config handles meshtool configuration loading and management.
package config

import "github.com/Faultbox/trimesh/pkg/mesh"

// Config holds all tool settings.
type Config struct {
	Build   BuildConfig   `yaml:"build" toml:"build"`
	Watch   WatchConfig   `yaml:"watch" toml:"watch"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// BuildConfig holds mesh build settings.
type BuildConfig struct {
	Epsilon   float32    `yaml:"epsilon" toml:"epsilon"`     // Welding tolerance
	Normals   bool       `yaml:"normals" toml:"normals"`     // Keep source normals
	TexCoords bool       `yaml:"texcoords" toml:"texcoords"` // Keep source texture coordinates
	Scale     float32    `yaml:"scale" toml:"scale"`         // Uniform import scale
	RotateX   float32    `yaml:"rotate_x" toml:"rotate_x"`   // Degrees
	RotateY   float32    `yaml:"rotate_y" toml:"rotate_y"`   // Degrees
	RotateZ   float32    `yaml:"rotate_z" toml:"rotate_z"`   // Degrees
	Translate [3]float32 `yaml:"translate" toml:"translate"` // Applied after scale and rotation
	Capacity  float32    `yaml:"capacity" toml:"capacity"`   // Builder capacity as a fraction of 3 * triangles
}

// WatchConfig holds rebuild-on-change settings.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" toml:"debounce_ms"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			Epsilon:   mesh.DefaultEpsilon,
			Normals:   true,
			TexCoords: true,
			Scale:     1,
			Capacity:  1,
		},
		Watch: WatchConfig{
			DebounceMS: 200,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
