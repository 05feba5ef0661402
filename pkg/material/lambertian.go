package material

import (
	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Vec3 // Base color/reflectance
}

// NewLambertian creates a new lambertian material
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter implements the Material interface for lambertian scattering.
// Offsetting the normal by a random unit vector gives a cosine-weighted distribution.
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := hit.Normal.Add(core.RandomUnitVector(sampler))

	// Catch degenerate scatter direction when the random vector cancels the normal
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}

// HemisphereDiffuse scatters uniformly over the hemisphere around the normal.
// It is the older diffuse approximation and renders slightly flatter shading than Lambertian.
type HemisphereDiffuse struct {
	Albedo core.Vec3
}

// NewHemisphereDiffuse creates a new hemisphere diffuse material
func NewHemisphereDiffuse(albedo core.Vec3) *HemisphereDiffuse {
	return &HemisphereDiffuse{Albedo: albedo}
}

// Scatter implements the Material interface
func (h *HemisphereDiffuse) Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	scatterDirection := core.RandomInHemisphere(hit.Normal, sampler)
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: h.Albedo,
	}, true
}
