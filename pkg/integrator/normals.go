package integrator

import (
	"math"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/geometry"
)

// NormalIntegrator shades each hit by its surface normal mapped into [0,1].
// Useful for checking geometry and face orientation without waiting for convergence.
type NormalIntegrator struct {
	background Background
}

// NewNormalIntegrator creates a new normal visualisation integrator
func NewNormalIntegrator(background Background) *NormalIntegrator {
	return &NormalIntegrator{background: background}
}

// RayColor returns 0.5*(normal+1) on hit and the background on miss
func (ni *NormalIntegrator) RayColor(ray core.Ray, world geometry.Shape, sampler core.Sampler, depth int) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return ni.background.Color(ray)
	}

	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
