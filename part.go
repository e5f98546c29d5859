package lsystree

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind tags the closed set of part variants.
type Kind int

const (
	KindBranch Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Part is one visual unit of the plant. The set is closed: only *Branch and
// *Leaf implement it.
//
// Dimensions given at construction are kept as reference dimensions and never
// change; Rescale only changes the current dimensions and derives primitive
// scales from the ratio between the two, so a part can be resized without
// rebuilding its geometry.
type Part interface {
	Kind() Kind

	Length() float64
	Width() float64
	Depth() float64
	Color() color.RGBA

	Position() mgl64.Vec3
	Orientation() mgl64.Quat
	SetPosition(p mgl64.Vec3) error
	SetOrientation(q mgl64.Quat) error
	// Transform is the part's world transform (translate · rotate).
	Transform() mgl64.Mat4

	Primitives() []*Primitive

	// Rescale resizes the part to width x, length y and depth z.
	Rescale(x, y, z float64)
	Recolor(c color.RGBA)
	// Copy returns a new part derived from this one's current parameters,
	// attenuated for a part that is level shapes away from the root.
	Copy(level int) Part
	// UpdateFrom mutates the part in place to match ref at the given level.
	UpdateFrom(ref Part, level int) error

	base() *partBase
}

type partBase struct {
	length, width, depth    float64
	length0, width0, depth0 float64
	color                   color.RGBA

	position    mgl64.Vec3
	orientation mgl64.Quat

	primitives []*Primitive
}

func newPartBase(length, width, depth float64, c color.RGBA) partBase {
	return partBase{
		length:      length,
		width:       width,
		depth:       depth,
		length0:     length,
		width0:      width,
		depth0:      depth,
		color:       c,
		orientation: mgl64.QuatIdent(),
	}
}

func (p *partBase) base() *partBase { return p }

func (p *partBase) Length() float64   { return p.length }
func (p *partBase) Width() float64    { return p.width }
func (p *partBase) Depth() float64    { return p.depth }
func (p *partBase) Color() color.RGBA { return p.color }

// ReferenceLength is the length the part was constructed with.
func (p *partBase) ReferenceLength() float64 { return p.length0 }

// ReferenceWidth is the width the part was constructed with.
func (p *partBase) ReferenceWidth() float64 { return p.width0 }

// ReferenceDepth is the depth the part was constructed with.
func (p *partBase) ReferenceDepth() float64 { return p.depth0 }

func (p *partBase) Position() mgl64.Vec3    { return p.position }
func (p *partBase) Orientation() mgl64.Quat { return p.orientation }

func (p *partBase) SetPosition(v mgl64.Vec3) error {
	if !finiteVec(v) {
		return invalidArgument("part position %v is not a finite vector", v)
	}
	p.position = v
	return nil
}

func (p *partBase) SetOrientation(q mgl64.Quat) error {
	if !unitQuat(q) {
		return invalidArgument("part orientation %v is not a unit quaternion", q)
	}
	p.orientation = q
	return nil
}

func (p *partBase) Transform() mgl64.Mat4 {
	return mgl64.Translate3D(p.position[0], p.position[1], p.position[2]).Mul4(p.orientation.Mat4())
}

func (p *partBase) Primitives() []*Primitive {
	return p.primitives
}

// Recolor sets the material color of every primitive. Geometry and transforms
// are untouched.
func (p *partBase) Recolor(c color.RGBA) {
	p.color = c
	for _, prim := range p.primitives {
		prim.Color = c
	}
}

// degenerate reports whether a reference dimension is zero. Geometry built
// from it cannot be scaled back up.
func (p *partBase) degenerate() bool {
	return p.length0 == 0 || p.width0 == 0 || p.depth0 == 0
}

// rebase replaces the reference dimensions. Callers regenerate geometry.
func (p *partBase) rebase(length, width, depth float64) {
	p.length0, p.width0, p.depth0 = length, width, depth
}

// ratio returns cur/ref, or 0 for a zero reference.
func ratio(cur, ref float64) float64 {
	if ref == 0 {
		return 0
	}
	return cur / ref
}
