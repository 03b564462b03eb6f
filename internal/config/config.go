// Package config loads viewer settings from defaults, a YAML file and
// command-line flags, in that order of priority.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/Faultbox/smolview/pkg/molecule"
)

// Bond styles.
const (
	BondLine     = "line"
	BondCylinder = "cylinder"
)

// Atom radius modes.
const (
	RadiusFixed   = "fixed"
	RadiusElement = "element"
)

// Config holds all settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Render  RenderConfig  `yaml:"render"`
	Input   InputConfig   `yaml:"input"`
	Web     WebConfig     `yaml:"web"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds native window settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
}

// RenderConfig controls how the scene is built and drawn.
// ScreenshotScale multiplies the drawable size of F12 captures.
type RenderConfig struct {
	Offset          float64        `yaml:"offset"`
	BondStyle       string         `yaml:"bond_style"`
	AtomRadius      string         `yaml:"atom_radius"`
	FixedRadius     float64        `yaml:"fixed_radius"`
	SphereSegments  int            `yaml:"sphere_segments"`
	TexturesDir     string         `yaml:"textures_dir"`
	Background      molecule.Color `yaml:"background"`
	ScreenshotDir   string         `yaml:"screenshot_dir"`
	ScreenshotScale int            `yaml:"screenshot_scale"`
	Light           LightConfig    `yaml:"light"`
}

// LightConfig places the directional light by azimuth around Y and
// elevation above the XZ plane, both in degrees.
type LightConfig struct {
	Ambient   float32 `yaml:"ambient"`
	Intensity float32 `yaml:"intensity"`
	Azimuth   float32 `yaml:"azimuth"`
	Elevation float32 `yaml:"elevation"`
}

// InputConfig names the structure to load. Format overrides detection by
// file extension.
type InputConfig struct {
	Path    string        `yaml:"path"`
	URL     string        `yaml:"url"`
	Format  string        `yaml:"format"`
	Timeout time.Duration `yaml:"timeout"`
}

// WebConfig holds the browser server settings.
type WebConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "smolview",
			Width:  1024,
			Height: 1024,
			VSync:  true,
		},
		Render: RenderConfig{
			Offset:          0.5,
			BondStyle:       BondLine,
			AtomRadius:      RadiusFixed,
			FixedRadius:     0.07,
			SphereSegments:  16,
			TexturesDir:     "textures",
			Background:      0x000000,
			ScreenshotDir:   ".",
			ScreenshotScale: 2,
			Light: LightConfig{
				Ambient:   0.35,
				Intensity: 1,
				Elevation: 90,
			},
		},
		Input: InputConfig{
			Timeout: 30 * time.Second,
		},
		Web: WebConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if math.IsNaN(c.Render.Offset) || math.IsInf(c.Render.Offset, 0) {
		return fmt.Errorf("render offset %v must be finite", c.Render.Offset)
	}
	switch c.Render.BondStyle {
	case BondLine, BondCylinder:
	default:
		return fmt.Errorf("unknown bond_style %q (want %s or %s)", c.Render.BondStyle, BondLine, BondCylinder)
	}
	switch c.Render.AtomRadius {
	case RadiusFixed, RadiusElement:
	default:
		return fmt.Errorf("unknown atom_radius %q (want %s or %s)", c.Render.AtomRadius, RadiusFixed, RadiusElement)
	}
	if c.Render.FixedRadius <= 0 {
		return fmt.Errorf("fixed_radius %v must be positive", c.Render.FixedRadius)
	}
	if c.Render.SphereSegments < 3 {
		return fmt.Errorf("sphere_segments %d must be at least 3", c.Render.SphereSegments)
	}
	if c.Render.ScreenshotScale < 1 || c.Render.ScreenshotScale > 8 {
		return fmt.Errorf("screenshot_scale %d must be between 1 and 8", c.Render.ScreenshotScale)
	}
	if c.Render.Light.Ambient < 0 || c.Render.Light.Intensity < 0 {
		return fmt.Errorf("light intensities must not be negative")
	}
	if c.Input.Timeout < 0 {
		return fmt.Errorf("input timeout %v must not be negative", c.Input.Timeout)
	}
	return nil
}
