package geometry

import (
	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/material"
)

// Shape interface for objects that can be hit by rays.
// Hit must not report a t outside [tMin, tMax] and must not mutate the shape.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
}
