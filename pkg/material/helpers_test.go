package material

import "github.com/aliabbas299792/ray-tracer/pkg/core"

// fixedSampler returns the same value for every draw, so scattering decisions are predictable
type fixedSampler struct {
	value float64
}

func (f fixedSampler) Get1D() float64 { return f.value }

func (f fixedSampler) Get2D() (float64, float64) { return f.value, f.value }

func (f fixedSampler) Range(minVal, maxVal float64) float64 {
	return minVal + (maxVal-minVal)*f.value
}

var _ core.Sampler = fixedSampler{}
