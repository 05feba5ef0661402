package core

import (
	"math"
	"testing"
)

func TestRandomSampler_Range(t *testing.T) {
	sampler := NewSeededSampler(42)

	for i := 0; i < 1000; i++ {
		if v := sampler.Get1D(); v < 0 || v >= 1 {
			t.Fatalf("Get1D out of [0,1): %f", v)
		}
		if v := sampler.Range(-3, 2); v < -3 || v >= 2 {
			t.Fatalf("Range out of [-3,2): %f", v)
		}
	}
}

func TestRandomSampler_Deterministic(t *testing.T) {
	a := NewSeededSampler(7)
	b := NewSeededSampler(7)

	for i := 0; i < 10; i++ {
		if a.Get1D() != b.Get1D() {
			t.Fatal("Samplers with the same seed should produce the same sequence")
		}
	}
}

func TestRandomInUnitSphere(t *testing.T) {
	sampler := NewSeededSampler(42)

	for i := 0; i < 1000; i++ {
		p := RandomInUnitSphere(sampler)
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Point %v is outside the unit sphere", p)
		}
	}
}

func TestRandomUnitVector(t *testing.T) {
	sampler := NewSeededSampler(42)

	var mean Vec3
	const n = 20000
	for i := 0; i < n; i++ {
		p := RandomUnitVector(sampler)
		if math.Abs(p.Length()-1.0) > 1e-9 {
			t.Fatalf("Expected unit vector, got length %f", p.Length())
		}
		mean = mean.Add(p)
	}

	// Uniform directions average out near the origin
	mean = mean.Divide(n)
	if mean.Length() > 0.05 {
		t.Errorf("Unit vectors look biased, mean = %v", mean)
	}
}

func TestRandomInHemisphere(t *testing.T) {
	sampler := NewSeededSampler(42)
	normal := NewVec3(0, 0, 1)

	for i := 0; i < 1000; i++ {
		p := RandomInHemisphere(normal, sampler)
		if p.Dot(normal) < 0 {
			t.Fatalf("Point %v is in the wrong hemisphere", p)
		}
	}
}

func TestRandomInUnitDisk(t *testing.T) {
	sampler := NewSeededSampler(42)

	for i := 0; i < 1000; i++ {
		p := RandomInUnitDisk(sampler)
		if p.Z != 0 {
			t.Fatalf("Disk sample should lie on z=0, got %v", p)
		}
		if p.LengthSquared() >= 1.0 {
			t.Fatalf("Point %v is outside the unit disk", p)
		}
	}
}
