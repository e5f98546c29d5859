package render

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ambientLight is the brightness of a face no light reaches.
	ambientLight = 0.65
	// spotlightConePower sharpens the head-lamp cone around the view axis.
	spotlightConePower   = 10.0
	spotlightLightAmount = 1.0 - ambientLight

	minChannel = 7
)

// shade darkens base for a face at camera-space point p with outward normal n.
// The light sits at the camera and shines along +Z.
func shade(base color.RGBA, p, n mgl64.Vec3) color.RGBA {
	diffuse := math.Max(0, -n[2])

	spotlight := 1.0
	if l := p.Len(); l > 0 {
		spotlight = math.Pow(math.Max(0, p[2]/l), spotlightConePower)
	}

	brightness := ambientLight + diffuse*spotlight*spotlightLightAmount
	c := 240 - int(brightness*240)

	return color.RGBA{
		R: uint8(clamp(int(base.R)-c, minChannel, 255)),
		G: uint8(clamp(int(base.G)-c, minChannel, 255)),
		B: uint8(clamp(int(base.B)-c, minChannel, 255)),
		A: base.A,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
