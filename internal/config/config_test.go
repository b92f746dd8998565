package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"soft-rasterizer/internal/pool"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, "render.json", `{
		"width": 640,
		"height": 360,
		"mesh": "sphere",
		"fov": 45,
		"camera": [1, 2, 3],
		"clear_color": [10, 20, 30]
	}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Width != 640 || cfg.Height != 360 || cfg.Mesh != "sphere" || cfg.FOV != 45 {
		t.Errorf("Load() = %+v", cfg)
	}
	if got := cfg.CameraPosition(); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("CameraPosition() = %v", got)
	}
	if cfg.ClearColor != [3]uint8{10, 20, 30} {
		t.Errorf("ClearColor = %v", cfg.ClearColor)
	}
}

func TestLoadYAML(t *testing.T) {
	for _, ext := range []string{".yaml", ".yml"} {
		path := writeFile(t, "render"+ext, `
width: 320
height: 240
band_height: 4
shader: lambert
shutdown: drop
camera: [0, 1, -5]
`)
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", ext, err)
		}
		if cfg.Width != 320 || cfg.Height != 240 || cfg.BandHeight != 4 || cfg.Shader != "lambert" || cfg.Shutdown != "drop" {
			t.Errorf("Load(%s) = %+v", ext, cfg)
		}
		if got := cfg.CameraPosition(); got != (mgl32.Vec3{0, 1, -5}) {
			t.Errorf("CameraPosition() = %v", got)
		}
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want ErrNotExist", err)
	}
	if _, err := Load(writeFile(t, "bad.json", "{width")); err == nil {
		t.Error("Load(bad json) succeeded")
	}
	if _, err := Load(writeFile(t, "bad.yaml", "width: [")); err == nil {
		t.Error("Load(bad yaml) succeeded")
	}
}

func TestResolveDefaults(t *testing.T) {
	var cfg Config
	cfg.Resolve(Flags{})
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.FOV != 60 || cfg.Near != 0.1 || cfg.Far != 100 {
		t.Errorf("projection = %v, %v, %v", cfg.FOV, cfg.Near, cfg.Far)
	}
	if cfg.Workers != pool.DefaultWorkers() {
		t.Errorf("Workers = %d, want %d", cfg.Workers, pool.DefaultWorkers())
	}
	if cfg.BandHeight != 8 || cfg.Frames != 1 || cfg.Supersample != 1 {
		t.Errorf("BandHeight, Frames, Supersample = %d, %d, %d", cfg.BandHeight, cfg.Frames, cfg.Supersample)
	}
	if cfg.Format != "png" || cfg.Shader != "normal" || cfg.Mesh != "cube" || cfg.Shutdown != "drain" || cfg.Cull != "none" {
		t.Errorf("names = %q %q %q %q %q", cfg.Format, cfg.Shader, cfg.Mesh, cfg.Shutdown, cfg.Cull)
	}
	if got := cfg.CameraPosition(); got != (mgl32.Vec3{0, 0, -4}) {
		t.Errorf("CameraPosition() = %v", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestResolveFlagsOverrideFile(t *testing.T) {
	cfg := Config{Width: 640, Height: 480, Mesh: "quad", FOV: 45}
	cfg.Resolve(Flags{Width: 100, Mesh: "sphere", FOV: 90, Format: "webp"})
	if cfg.Width != 100 || cfg.Height != 480 {
		t.Errorf("size = %dx%d, want 100x480", cfg.Width, cfg.Height)
	}
	if cfg.Mesh != "sphere" || cfg.FOV != 90 || cfg.Format != "webp" {
		t.Errorf("Resolve() = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"format", func(c *Config) { c.Format = "gif" }},
		{"shader", func(c *Config) { c.Shader = "phong" }},
		{"mesh", func(c *Config) { c.Mesh = "teapot" }},
		{"cull", func(c *Config) { c.Cull = "sideways" }},
		{"shutdown", func(c *Config) { c.Shutdown = "never" }},
		{"fov", func(c *Config) { c.FOV = 180 }},
		{"planes", func(c *Config) { c.Far = c.Near }},
		{"supersample", func(c *Config) { c.Supersample = 16 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var cfg Config
			cfg.Resolve(Flags{})
			tc.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalid)
			}
		})
	}
}
