// Package config holds render settings loaded from YAML files and command line flags.
package config

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/renderer"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid render configuration")

// RenderConfig holds every setting for a render. Zero sampling and camera fields leave the
// scene's own values in place.
type RenderConfig struct {
	Scene      string `yaml:"scene"`      // Built-in scene name or path to a YAML scene file
	ScenesDir  string `yaml:"scenes_dir"` // Directory searched for scene files
	Output     string `yaml:"output"`     // Output file; empty means output/<scene>/render_<timestamp>.png
	Integrator string `yaml:"integrator"` // "path" or "normals"

	Width           int      `yaml:"width"`
	SamplesPerPixel int      `yaml:"samples_per_pixel"`
	MaxDepth        int      `yaml:"max_depth"`
	AspectRatio     float64  `yaml:"aspect_ratio"`
	VFov            float64  `yaml:"vfov"`
	Aperture        *float64 `yaml:"aperture"` // nil keeps the scene's lens, 0 forces a pinhole

	Passes   int   `yaml:"passes"`
	TileSize int   `yaml:"tile_size"`
	Workers  int   `yaml:"workers"` // 0 = one per CPU
	Seed     int64 `yaml:"seed"`
}

// Default returns the settings used when neither a file nor flags say otherwise
func Default() RenderConfig {
	progressive := renderer.DefaultProgressiveConfig()
	return RenderConfig{
		Scene:      "default",
		ScenesDir:  "scenes",
		Integrator: integrator.PathTracing,
		Passes:     progressive.MaxPasses,
		TileSize:   progressive.TileSize,
		Seed:       progressive.Seed,
	}
}

// Load reads a YAML config file on top of the defaults.
// Fields not set in the file keep their default values.
func Load(path string) (RenderConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return RenderConfig{}, errors.Wrapf(err, "config: read %s", path)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// An empty file decodes to io.EOF and leaves the defaults untouched
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return RenderConfig{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings
type Flags struct {
	Scene           string
	Output          string
	Integrator      string
	Width           int
	SamplesPerPixel int
	MaxDepth        int
	VFov            float64
	Aperture        *float64 // nil when the flag was not given
	Passes          int
	TileSize        int
	Workers         int
	Seed            int64
}

// Resolve applies CLI flags, which take priority when non-zero/non-empty.
// Aperture is applied whenever it is set, so 0 can turn a scene's lens into a pinhole.
func (c *RenderConfig) Resolve(flags Flags) {
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Output != "" {
		c.Output = flags.Output
	}
	if flags.Integrator != "" {
		c.Integrator = flags.Integrator
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.SamplesPerPixel > 0 {
		c.SamplesPerPixel = flags.SamplesPerPixel
	}
	if flags.MaxDepth > 0 {
		c.MaxDepth = flags.MaxDepth
	}
	if flags.VFov != 0 {
		c.VFov = flags.VFov
	}
	if flags.Aperture != nil {
		c.Aperture = flags.Aperture
	}
	if flags.Passes > 0 {
		c.Passes = flags.Passes
	}
	if flags.TileSize > 0 {
		c.TileSize = flags.TileSize
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
}

// Validate rejects settings that can never render. The field of view is checked again,
// with its own error, when the camera is built.
func (c RenderConfig) Validate() error {
	switch {
	case c.Scene == "":
		return errors.Wrap(ErrInvalidConfig, "scene must be set")
	case c.Width < 0:
		return errors.Wrapf(ErrInvalidConfig, "width must not be negative, got %d", c.Width)
	case c.SamplesPerPixel < 0:
		return errors.Wrapf(ErrInvalidConfig, "samples per pixel must not be negative, got %d", c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return errors.Wrapf(ErrInvalidConfig, "max depth must not be negative, got %d", c.MaxDepth)
	case c.AspectRatio < 0:
		return errors.Wrapf(ErrInvalidConfig, "aspect ratio must not be negative, got %g", c.AspectRatio)
	case c.Aperture != nil && !(*c.Aperture >= 0 && !math.IsInf(*c.Aperture, 1)):
		return errors.Wrapf(ErrInvalidConfig, "aperture must be finite and not negative, got %g", *c.Aperture)
	case c.Passes <= 0:
		return errors.Wrapf(ErrInvalidConfig, "passes must be positive, got %d", c.Passes)
	case c.TileSize <= 0:
		return errors.Wrapf(ErrInvalidConfig, "tile size must be positive, got %d", c.TileSize)
	case c.Workers < 0:
		return errors.Wrapf(ErrInvalidConfig, "workers must not be negative, got %d", c.Workers)
	}
	if _, err := integrator.New(c.Integrator, integrator.DefaultBackground()); err != nil {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	return nil
}

// CameraOverride returns the camera fields this configuration replaces
func (c RenderConfig) CameraOverride() geometry.CameraConfig {
	override := geometry.CameraConfig{
		VFov:        c.VFov,
		AspectRatio: c.AspectRatio,
	}
	if c.Aperture != nil {
		override.Aperture = *c.Aperture
		override.Pinhole = *c.Aperture == 0
	}
	return override
}

// SamplingOverride returns the sampling fields this configuration replaces
func (c RenderConfig) SamplingOverride() scene.SamplingConfig {
	return scene.SamplingConfig{
		Width:           c.Width,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
	}
}

// ProgressiveConfig returns the progressive renderer settings.
// Samples per pixel come from the scene once overrides are applied.
func (c RenderConfig) ProgressiveConfig() renderer.ProgressiveConfig {
	progressive := renderer.DefaultProgressiveConfig()
	progressive.TileSize = c.TileSize
	progressive.MaxPasses = c.Passes
	progressive.NumWorkers = c.Workers
	progressive.Seed = c.Seed
	progressive.MaxSamplesPerPixel = 0
	return progressive
}

// OutputPath returns the configured output file, or output/<scene>/render_<timestamp>.png
func (c RenderConfig) OutputPath(now time.Time) string {
	if c.Output != "" {
		return c.Output
	}
	sceneName := strings.TrimSuffix(filepath.Base(c.Scene), filepath.Ext(c.Scene))
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

// BuildScene creates the configured scene with camera and sampling overrides applied
func (c RenderConfig) BuildScene() (*scene.Scene, error) {
	s, err := scene.Create(c.Scene, c.CameraOverride())
	if err != nil {
		return nil, err
	}
	if err := s.Resample(c.SamplingOverride()); err != nil {
		return nil, err
	}
	return s, nil
}
