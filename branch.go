package lsystree

import (
	"math"

	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultBranchLength = 1.0
	DefaultBranchWidth  = 0.1
	DefaultBranchRatio  = 1.0
	DefaultBranchColor  = "#FFAA00"

	branchRadialSegments = 8
	branchCapSegments    = 8
)

// BranchParams are the construction parameters of a Branch.
type BranchParams struct {
	Length float64
	Width  float64
	// Ratio is the far-end radius over the near-end radius. 1 is a plain cylinder.
	Ratio float64
	Color color.RGBA
}

func DefaultBranchParams() BranchParams {
	return BranchParams{
		Length: DefaultBranchLength,
		Width:  DefaultBranchWidth,
		Ratio:  DefaultBranchRatio,
		Color:  MustParseColor(DefaultBranchColor),
	}
}

// Branch is a capsule: a tapered cylinder along the part's +Y axis with a
// sphere at each end. The near cap sits at the part origin.
//
// The three primitives are scaled separately so the caps stay spheres when
// the branch is stretched.
type Branch struct {
	partBase
	ratio float64

	cylinder *Primitive
	lowCap   *Primitive
	highCap  *Primitive
}

func NewBranch(p BranchParams) *Branch {
	b := &Branch{
		partBase: newPartBase(p.Length, p.Width, p.Width, p.Color),
		ratio:    p.Ratio,
	}
	b.cylinder = newPrimitive("branch-cylinder", b.cylinderGeometry(), p.Color)
	b.lowCap = newPrimitive("branch-edge-low", b.capGeometry(1), p.Color)
	b.highCap = newPrimitive("branch-edge-high", b.capGeometry(p.Ratio), p.Color)
	b.primitives = []*Primitive{b.cylinder, b.lowCap, b.highCap}
	b.Rescale(p.Width, p.Length, p.Width)
	return b
}

func (b *Branch) Kind() Kind { return KindBranch }

func (b *Branch) Ratio() float64 { return b.ratio }

// Cylinder, LowCap and HighCap expose the capsule primitives.
func (b *Branch) Cylinder() *Primitive { return b.cylinder }
func (b *Branch) LowCap() *Primitive   { return b.lowCap }
func (b *Branch) HighCap() *Primitive  { return b.highCap }

func (b *Branch) cylinderGeometry() CylinderGeometry {
	return CylinderGeometry{
		RadiusTop:      b.width0 * b.ratio,
		RadiusBottom:   b.width0,
		Height:         b.length0,
		RadialSegments: branchRadialSegments,
	}
}

func (b *Branch) capGeometry(r float64) SphereGeometry {
	return SphereGeometry{
		Radius:         b.width0 * r,
		WidthSegments:  branchCapSegments,
		HeightSegments: branchCapSegments,
	}
}

// Rescale resizes the branch to width x, length y and depth z. The cylinder
// scales per axis, both caps scale uniformly by the radial factor alone.
func (b *Branch) Rescale(x, y, z float64) {
	b.width, b.length, b.depth = x, y, z

	rx := ratio(x, b.width0)
	b.cylinder.Scale = mgl64.Vec3{rx, ratio(y, b.length0), ratio(z, b.width0)}
	b.cylinder.Offset = mgl64.Vec3{0, y / 2, 0}

	b.lowCap.Scale = mgl64.Vec3{rx, rx, rx}
	b.highCap.Scale = mgl64.Vec3{rx, rx, rx}
	b.highCap.Offset = mgl64.Vec3{0, y, 0}
}

// SetRatio changes the taper. The cone slope changes, which a scale cannot
// express, so the cylinder geometry is regenerated; the far cap is regenerated
// with the new end radius so it stays tangent to the cone.
func (b *Branch) SetRatio(r float64) error {
	if !finite(r) || r <= 0 {
		return invalidArgument("branch ratio %v must be a finite positive number", r)
	}
	b.ratio = r
	b.cylinder.Geometry = b.cylinderGeometry()
	b.highCap.Geometry = b.capGeometry(r)
	return nil
}

// Copy returns a new branch with this branch's length, ratio and color and a
// width attenuated by ratio^level.
func (b *Branch) Copy(level int) Part {
	return NewBranch(BranchParams{
		Length: b.length,
		Width:  b.width * math.Pow(b.ratio, float64(level)),
		Ratio:  b.ratio,
		Color:  b.color,
	})
}

// UpdateFrom refreshes the branch in place from ref at the given level. A
// branch copied with a zero width or length is rebased on the new dimensions
// and its geometry rebuilt, as Copy would have made it.
func (b *Branch) UpdateFrom(ref Part, level int) error {
	rb, ok := ref.(*Branch)
	if !ok {
		return invalidArgument("cannot update a branch from a %s", ref.Kind())
	}
	w := rb.width * math.Pow(rb.ratio, float64(level))
	switch {
	case b.degenerate():
		b.rebase(rb.length, w, w)
		b.ratio = rb.ratio
		b.cylinder.Geometry = b.cylinderGeometry()
		b.lowCap.Geometry = b.capGeometry(1)
		b.highCap.Geometry = b.capGeometry(rb.ratio)
	case rb.ratio != b.ratio:
		if err := b.SetRatio(rb.ratio); err != nil {
			return err
		}
	}
	b.Rescale(w, rb.length, w)
	b.Recolor(rb.color)
	return nil
}
