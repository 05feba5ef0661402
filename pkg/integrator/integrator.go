package integrator

import (
	"github.com/pkg/errors"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum ray parameter accepted for a hit.
// Scattered rays start on a surface; rejecting hits closer than this keeps them from re-hitting it.
const ShadowAcneEpsilon = 0.001

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray, bouncing at most depth times
	RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3
}

// Background is the vertical sky gradient seen by rays that escape the scene
type Background struct {
	Top    core.Vec3 // Color for rays pointing straight up
	Bottom core.Vec3 // Color for rays pointing straight down
}

// DefaultBackground returns the white to sky blue gradient
func DefaultBackground() Background {
	return Background{
		Top:    core.NewVec3(0.5, 0.7, 1.0),
		Bottom: core.NewVec3(1.0, 1.0, 1.0),
	}
}

// Color returns the gradient color based on ray direction
func (b Background) Color(r core.Ray) core.Vec3 {
	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return b.Bottom.Lerp(b.Top, t)
}

// Integrator names accepted by New
const (
	PathTracing = "path"
	Normals     = "normals"
)

// New creates an integrator by name
func New(name string, background Background) (Integrator, error) {
	switch name {
	case PathTracing, "":
		return NewPathTracingIntegrator(background), nil
	case Normals:
		return NewNormalIntegrator(background), nil
	default:
		return nil, errors.Errorf("unknown integrator %q (want %q or %q)", name, PathTracing, Normals)
	}
}
