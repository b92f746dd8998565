// Package config loads render settings from JSON or YAML files and merges
// them with command-line flags.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"soft-rasterizer/internal/mesh"
	"soft-rasterizer/internal/pool"
	"soft-rasterizer/internal/present"
	"soft-rasterizer/internal/raster"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid value")

// Config holds all render settings.
type Config struct {
	// Output
	OutputDir   string `json:"output_dir" yaml:"output_dir"`
	Format      string `json:"format" yaml:"format"`
	Frames      int    `json:"frames" yaml:"frames"`
	Supersample int    `json:"supersample" yaml:"supersample"`

	// Frame
	Width      int      `json:"width" yaml:"width"`
	Height     int      `json:"height" yaml:"height"`
	Workers    int      `json:"workers" yaml:"workers"`
	BandHeight int      `json:"band_height" yaml:"band_height"`
	Shutdown   string   `json:"shutdown" yaml:"shutdown"`
	Cull       string   `json:"cull" yaml:"cull"`
	ClearColor [3]uint8 `json:"clear_color" yaml:"clear_color"`

	// Scene
	Mesh   string      `json:"mesh" yaml:"mesh"`
	Shader string      `json:"shader" yaml:"shader"`
	FOV    float32     `json:"fov" yaml:"fov"`
	Near   float32     `json:"near" yaml:"near"`
	Far    float32     `json:"far" yaml:"far"`
	Camera *[3]float32 `json:"camera,omitempty" yaml:"camera,omitempty"`
}

// Load reads a config file. Files ending in .yaml or .yml are parsed as YAML,
// anything else as JSON. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
// Zero values leave the file setting alone.
type Flags struct {
	OutputDir   string
	Format      string
	Frames      int
	Supersample int
	Width       int
	Height      int
	Workers     int
	BandHeight  int
	Cull        string
	Mesh        string
	Shader      string
	FOV         float64
}

// Resolve applies flags, then fills every unset field with its default.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	setString(&c.OutputDir, flags.OutputDir)
	setString(&c.Format, flags.Format)
	setString(&c.Cull, flags.Cull)
	setString(&c.Mesh, flags.Mesh)
	setString(&c.Shader, flags.Shader)
	setInt(&c.Frames, flags.Frames)
	setInt(&c.Supersample, flags.Supersample)
	setInt(&c.Width, flags.Width)
	setInt(&c.Height, flags.Height)
	setInt(&c.Workers, flags.Workers)
	setInt(&c.BandHeight, flags.BandHeight)
	if flags.FOV > 0 {
		c.FOV = float32(flags.FOV)
	}

	if c.OutputDir == "" {
		c.OutputDir = "renders"
	}
	if c.Format == "" {
		c.Format = present.PNG.String()
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.Width <= 0 {
		c.Width = 1280
	}
	if c.Height <= 0 {
		c.Height = 720
	}
	if c.Workers <= 0 {
		c.Workers = pool.DefaultWorkers()
	}
	if c.BandHeight <= 0 {
		c.BandHeight = raster.DefaultBandHeight
	}
	if c.Shutdown == "" {
		c.Shutdown = pool.Drain.String()
	}
	if c.Cull == "" {
		c.Cull = raster.CullNone.String()
	}
	if c.Mesh == "" {
		c.Mesh = "cube"
	}
	if c.Shader == "" {
		c.Shader = "normal"
	}
	if c.FOV <= 0 {
		c.FOV = 60
	}
	if c.Near <= 0 {
		c.Near = 0.1
	}
	if c.Far <= 0 {
		c.Far = 100
	}
	if c.Camera == nil {
		c.Camera = &[3]float32{0, 0, -4}
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

// Validate checks a resolved config.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Supersample > 8 {
		return fmt.Errorf("%w: supersample %d exceeds 8", ErrInvalid, c.Supersample)
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		return fmt.Errorf("%w: fov %v", ErrInvalid, c.FOV)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("%w: near %v, far %v", ErrInvalid, c.Near, c.Far)
	}
	if _, err := present.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := raster.ParseShader(c.Shader); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := raster.ParseCullMode(c.Cull); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := pool.ParseShutdownMode(c.Shutdown); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := mesh.ByName(c.Mesh); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// CameraPosition returns the configured camera position.
func (c *Config) CameraPosition() mgl32.Vec3 {
	if c.Camera == nil {
		return mgl32.Vec3{}
	}
	return mgl32.Vec3(*c.Camera)
}
