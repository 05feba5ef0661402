package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "render.yaml")
	test.That(t, os.WriteFile(path, []byte(content), 0o600), test.ShouldBeNil)
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scene: random
width: 300
samples_per_pixel: 20
max_depth: 8
workers: 2
seed: 99
integrator: normals
`)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Scene, test.ShouldEqual, "random")
	test.That(t, cfg.Width, test.ShouldEqual, 300)
	test.That(t, cfg.SamplesPerPixel, test.ShouldEqual, 20)
	test.That(t, cfg.MaxDepth, test.ShouldEqual, 8)
	test.That(t, cfg.Workers, test.ShouldEqual, 2)
	test.That(t, cfg.Seed, test.ShouldEqual, int64(99))
	test.That(t, cfg.Integrator, test.ShouldEqual, "normals")

	// Unset fields keep their defaults
	test.That(t, cfg.Passes, test.ShouldEqual, Default().Passes)
	test.That(t, cfg.TileSize, test.ShouldEqual, Default().TileSize)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Load(writeConfig(t, "widht: 10\n"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "parse")

	cfg, err := Load(writeConfig(t, ""))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Default())
}

func TestResolve(t *testing.T) {
	cfg := Default()
	cfg.Width = 300
	cfg.Workers = 2

	cfg.Resolve(Flags{Scene: "hollow-glass", Width: 640, SamplesPerPixel: 32})

	test.That(t, cfg.Scene, test.ShouldEqual, "hollow-glass")
	test.That(t, cfg.Width, test.ShouldEqual, 640)
	test.That(t, cfg.SamplesPerPixel, test.ShouldEqual, 32)
	// Zero flags leave file values alone
	test.That(t, cfg.Workers, test.ShouldEqual, 2)
	test.That(t, cfg.Seed, test.ShouldEqual, Default().Seed)
}

func TestResolve_Aperture(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{})
	test.That(t, cfg.Aperture, test.ShouldBeNil)
	test.That(t, cfg.CameraOverride().Pinhole, test.ShouldBeFalse)

	pinhole := 0.0
	cfg.Resolve(Flags{Aperture: &pinhole})
	test.That(t, *cfg.Aperture, test.ShouldEqual, 0.0)
	test.That(t, cfg.CameraOverride().Pinhole, test.ShouldBeTrue)

	// The default scene has a lens; an explicit 0 turns it into a pinhole
	cfg.Width = 16
	cfg.SamplesPerPixel = 1
	s, err := cfg.BuildScene()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Camera.LensRadius(), test.ShouldEqual, 0.0)

	wide := 0.4
	cfg.Resolve(Flags{Aperture: &wide})
	test.That(t, cfg.CameraOverride().Aperture, test.ShouldEqual, 0.4)
	test.That(t, cfg.CameraOverride().Pinhole, test.ShouldBeFalse)
}

func TestLoad_ZeroAperture(t *testing.T) {
	cfg, err := Load(writeConfig(t, "aperture: 0\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Aperture, test.ShouldNotBeNil)
	test.That(t, cfg.CameraOverride().Pinhole, test.ShouldBeTrue)
}

func TestValidate(t *testing.T) {
	test.That(t, Default().Validate(), test.ShouldBeNil)

	tests := []struct {
		name   string
		modify func(*RenderConfig)
	}{
		{"empty scene", func(c *RenderConfig) { c.Scene = "" }},
		{"negative width", func(c *RenderConfig) { c.Width = -1 }},
		{"negative samples", func(c *RenderConfig) { c.SamplesPerPixel = -4 }},
		{"negative depth", func(c *RenderConfig) { c.MaxDepth = -1 }},
		{"zero passes", func(c *RenderConfig) { c.Passes = 0 }},
		{"zero tile size", func(c *RenderConfig) { c.TileSize = 0 }},
		{"negative workers", func(c *RenderConfig) { c.Workers = -2 }},
		{"negative aperture", func(c *RenderConfig) { a := -1.0; c.Aperture = &a }},
		{"NaN aperture", func(c *RenderConfig) { a := math.NaN(); c.Aperture = &a }},
		{"infinite aperture", func(c *RenderConfig) { a := math.Inf(1); c.Aperture = &a }},
		{"unknown integrator", func(c *RenderConfig) { c.Integrator = "bdpt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)
		})
	}
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	cfg := Default()
	test.That(t, cfg.OutputPath(now), test.ShouldEqual, filepath.Join("output", "default", "render_20240305_140709.png"))

	cfg.Scene = "scenes/three-spheres.yaml"
	test.That(t, cfg.OutputPath(now), test.ShouldEqual, filepath.Join("output", "three-spheres", "render_20240305_140709.png"))

	cfg.Output = "out.ppm"
	test.That(t, cfg.OutputPath(now), test.ShouldEqual, "out.ppm")
}

func TestBuildScene(t *testing.T) {
	cfg := Default()
	cfg.Scene = "single-sphere"
	cfg.Width = 80
	cfg.SamplesPerPixel = 3
	cfg.VFov = 60

	s, err := cfg.BuildScene()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.SamplingConfig, test.ShouldResemble, scene.SamplingConfig{
		Width:           80,
		Height:          45,
		SamplesPerPixel: 3,
		MaxDepth:        1,
	})
	test.That(t, s.CameraConfig.VFov, test.ShouldEqual, 60.0)

	cfg.VFov = 180
	_, err = cfg.BuildScene()
	test.That(t, errors.Is(err, geometry.ErrInvalidFieldOfView), test.ShouldBeTrue)

	cfg.VFov = 0
	cfg.Scene = "missing"
	_, err = cfg.BuildScene()
	test.That(t, errors.Is(err, scene.ErrUnknownScene), test.ShouldBeTrue)
}

func TestProgressiveConfig(t *testing.T) {
	cfg := Default()
	cfg.Passes = 3
	cfg.Workers = 5

	progressive := cfg.ProgressiveConfig()
	test.That(t, progressive.MaxPasses, test.ShouldEqual, 3)
	test.That(t, progressive.NumWorkers, test.ShouldEqual, 5)
	test.That(t, progressive.MaxSamplesPerPixel, test.ShouldEqual, 0)
	test.That(t, progressive.Seed, test.ShouldEqual, cfg.Seed)
}
