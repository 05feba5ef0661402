package material

import (
	"math/rand"
	"testing"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

func TestLambertian_ScattersAboveSurface(t *testing.T) {
	albedo := core.NewVec3(0.8, 0.3, 0.1)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	normal := core.NewVec3(0, 0, 1)
	hit := HitRecord{
		Point:  core.NewVec3(0, 0, 0),
		Normal: normal,
	}
	ray := core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1))

	for i := 0; i < 1000; i++ {
		scatter, didScatter := lambertian.Scatter(ray, hit, sampler)
		if !didScatter {
			t.Fatal("Lambertian should always scatter")
		}

		// normal + unit vector can only graze the tangent plane, never cross it
		if scatter.Scattered.Direction.Dot(normal) < -1e-12 {
			t.Fatalf("Scattered direction %v points below the surface", scatter.Scattered.Direction)
		}
		if !scatter.Scattered.Origin.Equals(hit.Point) {
			t.Fatalf("Scattered ray should start at the hit point, got %v", scatter.Scattered.Origin)
		}
	}
}

func TestLambertian_AttenuationNeverAmplifies(t *testing.T) {
	albedo := core.NewVec3(0.5, 0.7, 0.2)
	lambertian := NewLambertian(albedo)
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(7)))

	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: core.NewVec3(0, 1, 0)}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	for i := 0; i < 500; i++ {
		scatter, _ := lambertian.Scatter(ray, hit, sampler)
		a := scatter.Attenuation
		if a.X > albedo.X || a.Y > albedo.Y || a.Z > albedo.Z {
			t.Fatalf("Attenuation %v exceeds albedo %v", a, albedo)
		}
	}
}

func TestLambertian_DegenerateDirectionFallsBackToNormal(t *testing.T) {
	lambertian := NewLambertian(core.NewVec3(0.5, 0.5, 0.5))

	// A sampler stuck at 0.25 draws (-0.5,-0.5,-0.5), whose unit vector is exactly
	// opposite this normal, so the candidate direction cancels out.
	normal := core.NewVec3(1, 1, 1).Normalize()
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal}
	ray := core.NewRay(core.NewVec3(1, 1, 1), normal.Negate())

	scatter, didScatter := lambertian.Scatter(ray, hit, fixedSampler{value: 0.25})
	if !didScatter {
		t.Fatal("Lambertian should always scatter")
	}
	if !scatter.Scattered.Direction.Equals(normal) {
		t.Errorf("Expected fallback to normal %v, got %v", normal, scatter.Scattered.Direction)
	}
}

func TestHemisphereDiffuse_StaysInHemisphere(t *testing.T) {
	diffuse := NewHemisphereDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))

	normal := core.NewVec3(0, 1, 0)
	hit := HitRecord{Point: core.NewVec3(0, 0, 0), Normal: normal}
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))

	for i := 0; i < 500; i++ {
		scatter, didScatter := diffuse.Scatter(ray, hit, sampler)
		if !didScatter {
			t.Fatal("Hemisphere diffuse should always scatter")
		}
		if scatter.Scattered.Direction.Dot(normal) < 0 {
			t.Fatalf("Direction %v is below the surface", scatter.Scattered.Direction)
		}
	}
}
