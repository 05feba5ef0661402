package geometry

import (
	"math"

	"github.com/pkg/errors"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

var (
	// ErrInvalidFieldOfView is returned when the vertical field of view cannot form a viewport
	ErrInvalidFieldOfView = errors.New("vertical field of view must be in (0, 180) degrees")
	// ErrDegenerateCamera is returned when the camera basis cannot be built
	ErrDegenerateCamera = errors.New("degenerate camera configuration")
)

// CameraConfig contains camera configuration parameters
type CameraConfig struct {
	LookFrom      core.Vec3 // Camera position
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // Up direction (usually (0,1,0))
	VFov          float64   // Vertical field of view in degrees
	AspectRatio   float64   // Width / height
	Aperture      float64   // Lens diameter, 0 for a pinhole camera
	FocusDistance float64   // Distance to the plane in perfect focus, 0 = |LookFrom - LookAt|
	Pinhole       bool      // As an override, forces Aperture to 0
}

// Camera generates rays for rendering. It is immutable once built.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// NewCamera builds a camera from its configuration.
// It refuses configurations that cannot form a valid viewport instead of substituting defaults.
func NewCamera(config CameraConfig) (*Camera, error) {
	if !(config.VFov > 0 && config.VFov < 180) {
		return nil, errors.Wrapf(ErrInvalidFieldOfView, "got %g", config.VFov)
	}
	if !(config.AspectRatio > 0) || math.IsInf(config.AspectRatio, 1) {
		return nil, errors.Wrapf(ErrDegenerateCamera, "aspect ratio must be positive and finite, got %g", config.AspectRatio)
	}
	if !(config.Aperture >= 0) || math.IsInf(config.Aperture, 1) {
		return nil, errors.Wrapf(ErrDegenerateCamera, "aperture must be finite and not negative, got %g", config.Aperture)
	}
	if !isFinite(config.FocusDistance) {
		return nil, errors.Wrapf(ErrDegenerateCamera, "focus distance must be finite, got %g", config.FocusDistance)
	}
	if !isFiniteVec(config.LookFrom) || !isFiniteVec(config.LookAt) || !isFiniteVec(config.Up) {
		return nil, errors.Wrap(ErrDegenerateCamera, "camera vectors must be finite")
	}

	view := config.LookFrom.Subtract(config.LookAt)
	if view.NearZero() {
		return nil, errors.Wrap(ErrDegenerateCamera, "look-from and look-at coincide")
	}

	focusDistance := config.FocusDistance
	if focusDistance <= 0 {
		focusDistance = view.Length()
	}

	theta := config.VFov * math.Pi / 180.0
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	// Orthonormal basis: w points backwards, u right, v up
	w := view.Normalize()
	right := config.Up.Cross(w)
	if right.NearZero() {
		return nil, errors.Wrap(ErrDegenerateCamera, "up vector is parallel to the view direction")
	}
	u := right.Normalize()
	v := w.Cross(u)

	lensRadius := config.Aperture / 2
	if config.Pinhole {
		lensRadius = 0
	}

	origin := config.LookFrom
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      lensRadius,
	}, nil
}

// GetRay generates a ray for normalized image coordinates (s, t) where 0 <= s,t <= 1.
// The origin is jittered across the lens disk to simulate depth of field.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	var offset core.Vec3
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
		offset = c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	}

	origin := c.origin.Add(offset)
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// Origin returns the camera position
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Forward returns the unit direction the camera is looking
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}

// MergeCameraConfig overlays the non-zero fields of override on top of base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}

	if override.LookFrom != zero {
		result.LookFrom = override.LookFrom
	}
	if override.LookAt != zero {
		result.LookAt = override.LookAt
	}
	if override.Up != zero {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Pinhole {
		result.Aperture = 0
	} else if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}

	return result
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isFiniteVec(v core.Vec3) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}
