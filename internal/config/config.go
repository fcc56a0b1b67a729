// Package config handles viewer configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/objscene/internal/engine/texture"
	"github.com/Faultbox/objscene/internal/logger"
)

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Fullscreen bool    `yaml:"fullscreen"`
	VSync      bool    `yaml:"vsync"`
	FOV        float32 `yaml:"fov"` // vertical, degrees
}

// ViewerConfig holds model loading and drawing settings.
type ViewerConfig struct {
	Models       []string             `yaml:"models"`
	Mipmap       bool                 `yaml:"mipmap"`
	DrawMode     string               `yaml:"draw_mode"`
	DisplayLists bool                 `yaml:"display_lists"`
	MinFilter    string               `yaml:"min_filter"` // empty keeps the per-texture default
	MagFilter    string               `yaml:"mag_filter"`
	RotateSpeed  float32              `yaml:"rotate_speed"` // degrees per second, 0 disables
	Watch        bool                 `yaml:"watch"`
	Emission     map[string][]float32 `yaml:"emission"` // material name -> r, g, b
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FOV:        45,
		},
		Viewer: ViewerConfig{
			Mipmap:       true,
			DrawMode:     "textured",
			DisplayLists: true,
			RotateSpeed:  0,
			Watch:        true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// drawModes are the names renderer.ParseDrawMode accepts after trimming
// and lowercasing. The renderer package links OpenGL, so it is not imported
// here.
var drawModes = map[string]bool{
	"w": true, "wireframe": true,
	"s": true, "solid": true,
	"t": true, "textured": true,
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("graphics: invalid size %dx%d", c.Graphics.Width, c.Graphics.Height))
	}
	if c.Graphics.FOV <= 0 || c.Graphics.FOV >= 180 {
		err = multierr.Append(err, fmt.Errorf("graphics: fov %g out of range (0, 180)", c.Graphics.FOV))
	}
	if !drawModes[strings.ToLower(strings.TrimSpace(c.Viewer.DrawMode))] {
		err = multierr.Append(err, fmt.Errorf("viewer: unknown draw mode %q", c.Viewer.DrawMode))
	}
	for _, name := range []string{c.Viewer.MinFilter, c.Viewer.MagFilter} {
		if name == "" {
			continue
		}
		if _, ferr := texture.ParseFilter(name); ferr != nil {
			err = multierr.Append(err, fmt.Errorf("viewer: %w", ferr))
		}
	}
	for name, rgb := range c.Viewer.Emission {
		if len(rgb) != 3 {
			err = multierr.Append(err, fmt.Errorf("viewer: emission for %q needs 3 components, got %d", name, len(rgb)))
		}
	}
	if lerr := logger.CheckLevel(c.Logging.Level); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging: %w", lerr))
	}
	return err
}
