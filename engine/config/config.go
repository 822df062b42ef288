// Package config loads and saves the user settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/tm3d-go/common"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the settings file version written by Save and accepted by Load.
const CurrentVersion = 1

// DefaultPath is the settings file name used when none is given on the command line.
const DefaultPath = "settings.yaml"

// ErrUnsupportedVersion is returned by Load when the file declares a version this build does not understand.
var ErrUnsupportedVersion = errors.New("unsupported settings version")

// Config is the persisted user configuration.
type Config struct {
	Version     int       `yaml:"version"`
	RenderScale float32   `yaml:"render_scale"`
	Window      Window    `yaml:"window"`
	Graphics    Graphics  `yaml:"graphics"`
	Log         Log       `yaml:"log"`
	Profiler    Profiler  `yaml:"profiler"`
	Cache       Cache     `yaml:"cache"`
	DataDir     string    `yaml:"data_dir"`
	Terrains    []Terrain `yaml:"terrains"`
}

// Window holds the initial window settings.
type Window struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
}

// Graphics holds presentation and anti-aliasing settings.
type Graphics struct {
	VSync       bool `yaml:"vsync"`
	Multisample bool `yaml:"multisample"`
	SampleCount int  `yaml:"sample_count"`
}

// Log holds logger settings. An empty Dir selects the user config directory.
type Log struct {
	Dir        string `yaml:"dir,omitempty"`
	Level      string `yaml:"level"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	Stderr     bool   `yaml:"stderr"`
}

// Profiler controls the frame statistics logger and the on-screen debug overlay.
type Profiler struct {
	Enabled         bool    `yaml:"enabled"`
	IntervalSeconds float64 `yaml:"interval_seconds"`
}

// Cache controls the on-disk terrain grid cache.
type Cache struct {
	Enabled bool `yaml:"enabled"`
}

// Terrain is a terrain tile created at startup. Texture names are looked up in the texture catalog.
type Terrain struct {
	GridX      int    `yaml:"grid_x"`
	GridZ      int    `yaml:"grid_z"`
	Heightmap  string `yaml:"heightmap"`
	BlendMap   string `yaml:"blend_map"`
	Background string `yaml:"background"`
	Red        string `yaml:"red"`
	Green      string `yaml:"green"`
	Blue       string `yaml:"blue"`
}

// Default returns the configuration used when no settings file exists.
func Default() *Config {
	return &Config{
		Version:     CurrentVersion,
		RenderScale: 1,
		Window: Window{
			Title:  "TM3D-DX11",
			Width:  1280,
			Height: 720,
		},
		Graphics: Graphics{
			VSync:       true,
			Multisample: true,
			SampleCount: 4,
		},
		Log: Log{
			Level:      "info",
			MaxSizeMB:  32,
			MaxBackups: 1,
		},
		Profiler: Profiler{
			IntervalSeconds: 1,
		},
		Cache: Cache{
			Enabled: true,
		},
		DataDir: "data",
		Terrains: []Terrain{{
			Heightmap:  "heightmap",
			BlendMap:   "blendMap",
			Background: "grassy",
			Red:        "mud",
			Green:      "grassFlowers",
			Blue:       "path",
		}},
	}
}

// Load reads the settings file at path. A missing file yields Default() without error.
// Fields absent from the file keep their default values.
//
// Parameters:
//   - path: the settings file to read
//
// Returns:
//   - *Config: the loaded and normalized configuration
//   - error: an error if the file cannot be read or parsed, or declares an unsupported version
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("%s: version %d: %w", path, cfg.Version, ErrUnsupportedVersion)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	c.Version = CurrentVersion
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}

// Normalize clamps out-of-range values into the ranges the renderer accepts.
func (c *Config) Normalize() {
	if c.RenderScale <= 0 {
		c.RenderScale = 1
	}
	c.RenderScale = common.Clamp(c.RenderScale, 0.25, 2)
	switch c.Graphics.SampleCount {
	case 1, 2, 4, 8:
	default:
		c.Graphics.SampleCount = 4
	}
	c.Window.Width = max(c.Window.Width, 320)
	c.Window.Height = max(c.Window.Height, 200)
	if c.Profiler.IntervalSeconds <= 0 {
		c.Profiler.IntervalSeconds = 1
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
}

// OffscreenSize returns the size of the offscreen render target for a window of the given size.
//
// Parameters:
//   - width, height: the window client size in pixels
//
// Returns:
//   - int, int: the scaled size, never below 1x1
func (c *Config) OffscreenSize(width, height int) (int, int) {
	w := int(float32(width) * c.RenderScale)
	h := int(float32(height) * c.RenderScale)
	return max(w, 1), max(h, 1)
}
