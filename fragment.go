package lsystree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Node is one placed part in a fragment.
type Node struct {
	Key    NodeKey
	Symbol rune
	// Level is the number of shape tokens before this one on the path from
	// the root.
	Level int
	Part  Part
}

// Fragment is the scene produced by one Build: an ordered list of placed
// parts together with the topology it was built from.
type Fragment struct {
	generation int
	state      string
	shapes     map[rune]Kind
	nodes      []*Node
}

func (f *Fragment) Generation() int { return f.generation }

// State is the generation string the fragment was built from.
func (f *Fragment) State() string { return f.state }

// Nodes returns the nodes in traversal order.
func (f *Fragment) Nodes() []*Node { return f.nodes }

func (f *Fragment) Len() int { return len(f.nodes) }

// Parts returns the parts in traversal order.
func (f *Fragment) Parts() []Part {
	parts := make([]Part, len(f.nodes))
	for i, n := range f.nodes {
		parts[i] = n.Part
	}
	return parts
}

// Bounds returns the axis-aligned box holding every part's base and tip.
// An empty fragment has zero bounds.
func (f *Fragment) Bounds() (lo, hi mgl64.Vec3) {
	if len(f.nodes) == 0 {
		return lo, hi
	}
	lo = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, n := range f.nodes {
		base := n.Part.Position()
		tip := base.Add(n.Part.Orientation().Rotate(canonicalForward).Mul(n.Part.Length()))
		for _, p := range [2]mgl64.Vec3{base, tip} {
			for i := range 3 {
				lo[i] = math.Min(lo[i], p[i])
				hi[i] = math.Max(hi[i], p[i])
			}
		}
	}
	return lo, hi
}

// matches reports whether the fragment was built from state at generation
// with the same shape-token kinds.
func (f *Fragment) matches(generation int, state string, parts map[rune]Part) bool {
	if f.generation != generation || f.state != state || len(f.shapes) != len(parts) {
		return false
	}
	for sym, p := range parts {
		if k, ok := f.shapes[sym]; !ok || k != p.Kind() {
			return false
		}
	}
	return true
}

func shapeKinds(parts map[rune]Part) map[rune]Kind {
	kinds := make(map[rune]Kind, len(parts))
	for sym, p := range parts {
		kinds[sym] = p.Kind()
	}
	return kinds
}
