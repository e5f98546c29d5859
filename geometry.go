package lsystree

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Geometry describes the shape of a primitive independently of how it is
// meshed or drawn. Implementations are comparable values so renderers can
// cache meshes per geometry.
type Geometry interface {
	isGeometry()
}

// CylinderGeometry is a (possibly tapered) cylinder along +Y, centred on the
// origin and spanning [-Height/2, Height/2].
type CylinderGeometry struct {
	RadiusTop      float64
	RadiusBottom   float64
	Height         float64
	RadialSegments int
}

// SphereGeometry is a UV sphere centred on the origin.
type SphereGeometry struct {
	Radius         float64
	WidthSegments  int
	HeightSegments int
}

// BladeGeometry is the six-triangle leaf blade. Its base sits at the origin and
// it extends along +Y; Width spans X and Depth curls the tip towards +Z.
type BladeGeometry struct {
	Length float64
	Width  float64
	Depth  float64
}

// LineGeometry is a segment between two local points.
type LineGeometry struct {
	From mgl64.Vec3
	To   mgl64.Vec3
}

func (CylinderGeometry) isGeometry() {}
func (SphereGeometry) isGeometry()   {}
func (BladeGeometry) isGeometry()    {}
func (LineGeometry) isGeometry()     {}

//	      pts
//	       * 3
//	   * 4    * 2
//	       * 6
//	   * 5    * 1
//	       * 0
var bladeUnitPoints = [7]mgl64.Vec3{
	{0.00, 0.25, 0.00}, {0.70, 0.33, 0.40}, {1.00, 0.60, 1.00},
	{0.00, 1.00, 1.00}, {-1.00, 0.60, 1.00}, {-0.70, 0.33, 0.40},
	{0.00, 0.75, 0.00},
}

var bladeFaces = [6][3]int{{0, 1, 2}, {0, 2, 6}, {6, 2, 3}, {6, 3, 4}, {0, 6, 4}, {0, 4, 5}}

// Points returns the seven blade vertices scaled by the blade dimensions.
func (g BladeGeometry) Points() []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, len(bladeUnitPoints))
	for i, p := range bladeUnitPoints {
		pts[i] = mgl64.Vec3{p[0] * g.Width, p[1] * g.Length, p[2] * g.Depth}
	}
	return pts
}

// Faces returns vertex indices of the six blade triangles.
func (g BladeGeometry) Faces() [][3]int {
	return bladeFaces[:]
}

// Normals returns one flat normal per face. Degenerate faces (zero width or
// depth) get a zero normal.
func (g BladeGeometry) Normals() []mgl64.Vec3 {
	pts := g.Points()
	normals := make([]mgl64.Vec3, len(bladeFaces))
	for i, f := range bladeFaces {
		n := pts[f[1]].Sub(pts[f[0]]).Cross(pts[f[2]].Sub(pts[f[0]]))
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		normals[i] = n
	}
	return normals
}

// Primitive is one drawable piece of a Part: a geometry placed and scaled in
// the part's local frame, with a material color.
type Primitive struct {
	Name     string
	Geometry Geometry
	Offset   mgl64.Vec3
	Scale    mgl64.Vec3
	Color    color.RGBA
	// DoubleSided primitives are visible from both faces.
	DoubleSided bool
}

func newPrimitive(name string, g Geometry, c color.RGBA) *Primitive {
	return &Primitive{
		Name:     name,
		Geometry: g,
		Scale:    mgl64.Vec3{1, 1, 1},
		Color:    c,
	}
}

// Local returns the primitive's transform within its part (translate · scale).
func (p *Primitive) Local() mgl64.Mat4 {
	return mgl64.Translate3D(p.Offset[0], p.Offset[1], p.Offset[2]).
		Mul4(mgl64.Scale3D(p.Scale[0], p.Scale[1], p.Scale[2]))
}
