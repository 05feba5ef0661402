package renderer

import "github.com/aliabbas299792/ray-tracer/pkg/core"

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int     // Total number of pixels rendered
	TotalSamples   int     // Total number of samples taken
	AverageSamples float64 // Average samples per pixel
	MaxSamples     int     // Maximum samples allowed per pixel
	MinSamples     int     // Minimum samples taken per pixel
	MaxSamplesUsed int     // Maximum samples actually used by any pixel
}

// PixelStats accumulates radiance samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // Linear RGB sum of all samples
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average linear color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// FinalColor returns the gamma corrected, clamped color for this pixel
func (ps *PixelStats) FinalColor() core.Vec3 {
	return FinalizeColor(ps.ColorAccum, ps.SampleCount)
}

// FinalizeColor turns a sum of n linear samples into a display color:
// each channel becomes sqrt(sum/n) clamped to [0, 0.999]. No samples gives black.
func FinalizeColor(sum core.Vec3, n int) core.Vec3 {
	if n <= 0 {
		return core.Vec3{}
	}
	return sum.Multiply(1.0 / float64(n)).Sqrt().Clamp(0.0, 0.999)
}
