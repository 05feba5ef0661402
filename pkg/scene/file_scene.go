package scene

import (
	"github.com/pkg/errors"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/loaders"
	"github.com/aliabbas299792/ray-tracer/pkg/material"
)

// NewFileScene creates a scene from a YAML scene file
func NewFileScene(filepath string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	sceneFile, err := loaders.LoadSceneFile(filepath)
	if err != nil {
		return nil, err
	}
	return NewSceneFromFile(sceneFile, cameraOverrides...)
}

// NewSceneFromFile converts a parsed scene file into a renderable scene
func NewSceneFromFile(sceneFile *loaders.SceneFile, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	cameraConfig := convertCamera(sceneFile.Camera)
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	sampling := MergeSamplingConfig(createDefaultFileSamplingConfig(), SamplingConfig{
		Width:           sceneFile.Sampling.Width,
		Height:          sceneFile.Sampling.Height,
		SamplesPerPixel: sceneFile.Sampling.SamplesPerPixel,
		MaxDepth:        sceneFile.Sampling.MaxDepth,
	})

	s, err := NewScene(cameraConfig, sampling)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert camera")
	}

	if sceneFile.Background != nil {
		s.Background = integrator.Background{
			Top:    sceneFile.Background.Top.Vec3(),
			Bottom: sceneFile.Background.Bottom.Vec3(),
		}
	}

	// Convert all materials first so spheres can share them
	materials := make(map[string]material.Material, len(sceneFile.Materials))
	for name, spec := range sceneFile.Materials {
		mat, err := convertMaterial(spec)
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", name)
		}
		materials[name] = mat
	}

	for i, spec := range sceneFile.Spheres {
		mat, ok := materials[spec.Material]
		if !ok {
			return nil, errors.Errorf("sphere %d has no valid material %q", i, spec.Material)
		}
		s.AddSphere(spec.Center.Vec3(), spec.Radius, mat)
	}

	return s, nil
}

func createDefaultFileSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
	}
}

func convertCamera(spec loaders.CameraSpec) geometry.CameraConfig {
	up := core.NewVec3(0, 1, 0)
	if spec.Up != nil {
		up = spec.Up.Vec3()
	}
	aspectRatio := spec.AspectRatio
	if aspectRatio == 0 {
		aspectRatio = 16.0 / 9.0
	}
	vfov := spec.VFov
	if vfov == 0 {
		vfov = 90
	}

	return geometry.CameraConfig{
		LookFrom:      spec.LookFrom.Vec3(),
		LookAt:        spec.LookAt.Vec3(),
		Up:            up,
		VFov:          vfov,
		AspectRatio:   aspectRatio,
		Aperture:      spec.Aperture,
		FocusDistance: spec.FocusDistance,
	}
}

func convertMaterial(spec loaders.MaterialSpec) (material.Material, error) {
	switch spec.Type {
	case loaders.MaterialLambertian:
		return material.NewLambertian(spec.Albedo.Vec3()), nil
	case loaders.MaterialHemisphere:
		return material.NewHemisphereDiffuse(spec.Albedo.Vec3()), nil
	case loaders.MaterialMetal:
		return material.NewMetal(spec.Albedo.Vec3(), spec.Fuzz), nil
	case loaders.MaterialDielectric:
		return material.NewDielectric(spec.RefractiveIndex), nil
	default:
		return nil, errors.Errorf("unsupported material type: %s", spec.Type)
	}
}
