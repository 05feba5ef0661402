package scene

import (
	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
	"github.com/aliabbas299792/ray-tracer/pkg/material"
)

// NewDefaultScene creates a default scene: a diffuse sphere between a hollow glass sphere
// and a fuzzy gold sphere, resting on a large yellow-green ground sphere
func NewDefaultScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:      core.NewVec3(-2, 2, 1),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          20.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      0.1,
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s, err := NewScene(cameraConfig, SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	})
	if err != nil {
		return nil, err
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.AddSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, ground)
	s.AddSphere(core.NewVec3(0.0, 0.0, -1.0), 0.5, center)

	// Hollow glass: the negative radius inner sphere shares the glass material
	s.AddSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, glass)
	s.AddSphere(core.NewVec3(-1.0, 0.0, -1.0), -0.45, glass)

	s.AddSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, gold)

	return s, nil
}

// NewSingleSphereScene creates a single grey diffuse sphere seen straight down -z.
// It is the smallest scene that exercises hit, scatter and background together.
func NewSingleSphereScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90.0,
		AspectRatio: 16.0 / 9.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s, err := NewScene(cameraConfig, SamplingConfig{
		Width:           400,
		SamplesPerPixel: 1,
		MaxDepth:        1,
	})
	if err != nil {
		return nil, err
	}

	s.AddSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	return s, nil
}

// NewHollowGlassScene creates a glass bubble in front of a diffuse sphere on a diffuse ground,
// using the negative radius convention for the bubble's inner wall
func NewHollowGlassScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		LookFrom:    core.NewVec3(0, 0.5, 2),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        40.0,
		AspectRatio: 1.0,
	}

	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	s, err := NewScene(cameraConfig, SamplingConfig{
		Width:           300,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	})
	if err != nil {
		return nil, err
	}

	glass := material.NewDielectric(1.5)
	s.AddSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	s.AddSphere(core.NewVec3(0, 0, -2), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)))
	s.AddSphere(core.NewVec3(0, 0, -0.5), 0.4, glass)
	s.AddSphere(core.NewVec3(0, 0, -0.5), -0.38, glass)

	return s, nil
}
