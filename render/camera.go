// Package render turns an lsystree fragment into shaded, depth-sorted screen
// polygons. It has no drawing dependency; the viewer package paints the
// result with ebiten.
package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultFocal is the projection scale in pixels per unit at depth 1.
	DefaultFocal = 700
	DefaultNear  = 0.05

	maxPitch = math.Pi/2 - 0.01
	minDist  = 0.5
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Camera orbits a target point. Camera space has +X right, +Y up and +Z
// pointing into the screen, so anything visible has positive z.
type Camera struct {
	Target   mgl64.Vec3
	Distance float64
	Yaw      float64
	Pitch    float64

	Focal float64
	Near  float64
}

func NewCamera(target mgl64.Vec3, distance float64) *Camera {
	return &Camera{
		Target:   target,
		Distance: distance,
		Focal:    DefaultFocal,
		Near:     DefaultNear,
	}
}

// Eye is the camera position in world space.
func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	offset := mgl64.Vec3{
		cp * math.Sin(c.Yaw),
		math.Sin(c.Pitch),
		cp * math.Cos(c.Yaw),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

// View maps world space to camera space.
func (c *Camera) View() mgl64.Mat4 {
	lookAt := mgl64.LookAtV(c.Eye(), c.Target, worldUp)
	return mgl64.Scale3D(1, 1, -1).Mul4(lookAt)
}

// Orbit turns the camera around its target. Pitch stops short of the poles.
func (c *Camera) Orbit(dyaw, dpitch float64) {
	c.Yaw = math.Mod(c.Yaw+dyaw, 2*math.Pi)
	c.Pitch = mgl64.Clamp(c.Pitch+dpitch, -maxPitch, maxPitch)
}

// Zoom multiplies the distance to the target by factor.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.Distance = math.Max(minDist, c.Distance*factor)
}

// Fit aims the camera at the centre of the box and backs off far enough to
// see all of it.
func (c *Camera) Fit(lo, hi mgl64.Vec3) {
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	c.Distance = math.Max(minDist, radius*2.5)
}

// Project converts a camera-space point to screen coordinates around the
// centre (cx, cy). Screen y grows downwards.
func (c *Camera) Project(p mgl64.Vec3, cx, cy float64) (float32, float32) {
	return float32(cx + c.Focal*p[0]/p[2]), float32(cy - c.Focal*p[1]/p[2])
}
