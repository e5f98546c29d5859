package lsystree

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DefaultLeafLength = 1.0
	DefaultLeafWidth  = 0.25
	DefaultLeafDepth  = 0.1
	DefaultLeafColor  = "#00FF00"

	// petioleFraction of the leaf length is stalk; the blade starts there.
	petioleFraction = 0.25
)

type LeafParams struct {
	Length float64
	Width  float64
	Depth  float64
	Color  color.RGBA
}

func DefaultLeafParams() LeafParams {
	return LeafParams{
		Length: DefaultLeafLength,
		Width:  DefaultLeafWidth,
		Depth:  DefaultLeafDepth,
		Color:  MustParseColor(DefaultLeafColor),
	}
}

// Leaf is a double-sided blade on a short stalk (the petiole).
type Leaf struct {
	partBase

	blade   *Primitive
	petiole *Primitive
}

func NewLeaf(p LeafParams) *Leaf {
	l := &Leaf{partBase: newPartBase(p.Length, p.Width, p.Depth, p.Color)}
	l.blade = newPrimitive("leaf-blade", l.bladeGeometry(), p.Color)
	l.blade.DoubleSided = true
	l.petiole = newPrimitive("leaf-petiole", l.petioleGeometry(), p.Color)
	l.primitives = []*Primitive{l.blade, l.petiole}
	return l
}

func (l *Leaf) bladeGeometry() BladeGeometry {
	return BladeGeometry{Length: l.length0, Width: l.width0, Depth: l.depth0}
}

func (l *Leaf) petioleGeometry() LineGeometry {
	return LineGeometry{To: mgl64.Vec3{0, petioleFraction * l.length0, 0}}
}

func (l *Leaf) Kind() Kind { return KindLeaf }

func (l *Leaf) Blade() *Primitive   { return l.blade }
func (l *Leaf) Petiole() *Primitive { return l.petiole }

// Rescale resizes the leaf to width x, length y and depth z.
func (l *Leaf) Rescale(x, y, z float64) {
	l.width, l.length, l.depth = x, y, z
	s := mgl64.Vec3{ratio(x, l.width0), ratio(y, l.length0), ratio(z, l.depth0)}
	for _, prim := range l.primitives {
		prim.Scale = s
	}
}

// Copy returns a new leaf with the same dimensions and color. Leaves have no
// taper, so level does not attenuate them.
func (l *Leaf) Copy(level int) Part {
	return NewLeaf(LeafParams{
		Length: l.length,
		Width:  l.width,
		Depth:  l.depth,
		Color:  l.color,
	})
}

func (l *Leaf) UpdateFrom(ref Part, level int) error {
	rl, ok := ref.(*Leaf)
	if !ok {
		return invalidArgument("cannot update a leaf from a %s", ref.Kind())
	}
	if l.degenerate() {
		l.rebase(rl.length, rl.width, rl.depth)
		l.blade.Geometry = l.bladeGeometry()
		l.petiole.Geometry = l.petioleGeometry()
	}
	l.Rescale(rl.width, rl.length, rl.depth)
	l.Recolor(rl.color)
	return nil
}
