package scene

import (
	"github.com/pkg/errors"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/material"
)

// ErrInvalidSampling is returned for sampling settings that cannot produce an image
var ErrInvalidSampling = errors.New("invalid sampling configuration")

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.ShapeList // Objects in the scene, owned by the scene
	SamplingConfig SamplingConfig
	Background     integrator.Background
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int // Image width
	Height          int // Image height
	SamplesPerPixel int // Number of rays per pixel
	MaxDepth        int // Maximum ray bounce depth
}

// Validate checks that the sampling settings can produce an image
func (c SamplingConfig) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidSampling, "image size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.SamplesPerPixel <= 0 {
		return errors.Wrapf(ErrInvalidSampling, "samples per pixel must be positive, got %d", c.SamplesPerPixel)
	}
	if c.MaxDepth <= 0 {
		return errors.Wrapf(ErrInvalidSampling, "max depth must be positive, got %d", c.MaxDepth)
	}
	return nil
}

// MergeSamplingConfig overlays the non-zero fields of override on top of base
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.Height != 0 {
		result.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	return result
}

// HeightForAspect returns the image height for a width and aspect ratio, at least 1
func HeightForAspect(width int, aspectRatio float64) int {
	return max(1, int(float64(width)/aspectRatio))
}

// NewScene creates an empty scene, building the camera from its configuration.
// A zero Height in sampling is derived from Width and the camera aspect ratio.
func NewScene(cameraConfig geometry.CameraConfig, sampling SamplingConfig) (*Scene, error) {
	if sampling.Height == 0 && cameraConfig.AspectRatio > 0 {
		sampling.Height = HeightForAspect(sampling.Width, cameraConfig.AspectRatio)
	}
	if err := sampling.Validate(); err != nil {
		return nil, err
	}

	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return nil, errors.Wrap(err, "building camera")
	}

	return &Scene{
		Camera:         camera,
		CameraConfig:   cameraConfig,
		World:          geometry.NewShapeList(),
		SamplingConfig: sampling,
		Background:     integrator.DefaultBackground(),
	}, nil
}

// Add appends a shape to the scene
func (s *Scene) Add(shape geometry.Shape) {
	s.World.Add(shape)
}

// AddSphere adds a sphere with the given material
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) {
	s.Add(geometry.NewSphere(center, radius, mat))
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// Resample replaces the sampling settings, keeping the image aspect in step with the camera.
// Only non-zero fields of override are applied.
func (s *Scene) Resample(override SamplingConfig) error {
	merged := MergeSamplingConfig(s.SamplingConfig, override)
	if override.Width != 0 && override.Height == 0 {
		merged.Height = HeightForAspect(merged.Width, s.CameraConfig.AspectRatio)
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	s.SamplingConfig = merged
	return nil
}
