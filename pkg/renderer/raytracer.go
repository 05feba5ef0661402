package renderer

import (
	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

// Raytracer estimates pixel colors for a scene. It holds no mutable state, so a single
// instance can be shared by many goroutines as long as each brings its own sampler.
type Raytracer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
	width      int
	height     int
	config     scene.SamplingConfig
}

// NewRaytracer creates a raytracer using the scene's sampling configuration
func NewRaytracer(s *scene.Scene, integratorInst integrator.Integrator) *Raytracer {
	return &Raytracer{
		scene:      s,
		integrator: integratorInst,
		width:      s.SamplingConfig.Width,
		height:     s.SamplingConfig.Height,
		config:     s.SamplingConfig,
	}
}

// PixelRay returns a camera ray through a random point of pixel (i, j), where j counts rows
// from the bottom of the image
func (rt *Raytracer) PixelRay(i, j int, sampler core.Sampler) core.Ray {
	s := (float64(i) + sampler.Get1D()) / float64(max(1, rt.width-1))
	t := (float64(j) + sampler.Get1D()) / float64(max(1, rt.height-1))
	return rt.scene.Camera.GetRay(s, t, sampler)
}

// RayColor returns the radiance carried back along a single camera ray
func (rt *Raytracer) RayColor(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return rt.integrator.RayColor(ray, rt.scene.World, sampler, rt.config.MaxDepth)
}

// SamplePixel averages SamplesPerPixel jittered samples for pixel (i, j), j counted from the
// bottom row, and returns the finished display color
func (rt *Raytracer) SamplePixel(i, j int, sampler core.Sampler) core.Vec3 {
	var ps PixelStats
	for ps.SampleCount < rt.config.SamplesPerPixel {
		ps.AddSample(rt.RayColor(rt.PixelRay(i, j, sampler), sampler))
	}
	return ps.FinalColor()
}

// SampleImagePixel adds samples to ps for the pixel at image column x, row y (row 0 at the top)
// until it holds targetSamples. It returns the number of samples added.
func (rt *Raytracer) SampleImagePixel(x, y int, ps *PixelStats, sampler core.Sampler, targetSamples int) int {
	j := rt.height - 1 - y
	initial := ps.SampleCount
	for ps.SampleCount < targetSamples {
		ps.AddSample(rt.RayColor(rt.PixelRay(x, j, sampler), sampler))
	}
	return ps.SampleCount - initial
}

// RenderPass renders the whole image on the calling goroutine, scanning rows from the top
func (rt *Raytracer) RenderPass(sampler core.Sampler) *Frame {
	frame := NewFrame(rt.width, rt.height)
	for j := rt.height - 1; j >= 0; j-- {
		for i := 0; i < rt.width; i++ {
			frame.Set(i, rt.height-1-j, rt.SamplePixel(i, j, sampler))
		}
	}
	return frame
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int {
	return rt.width
}

// Height returns the image height in pixels
func (rt *Raytracer) Height() int {
	return rt.height
}
