package lsystree

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Angles are the turtle step sizes in degrees.
type Angles struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

const (
	DefaultYaw   = 15.0
	DefaultPitch = 25.0
	DefaultRoll  = 35.0
)

func DefaultAngles() Angles {
	return Angles{Yaw: DefaultYaw, Pitch: DefaultPitch, Roll: DefaultRoll}
}

// Builder interprets a generation string with a turtle. Build creates a new
// fragment; Update refreshes the parts of the last built fragment in place.
type Builder struct {
	turtle   *Turtle
	registry *Registry
	fragment *Fragment
}

func NewBuilder() *Builder {
	return &Builder{
		turtle:   NewTurtle(),
		registry: NewRegistry(),
	}
}

// Fragment returns the last built fragment, or nil before the first Build.
func (b *Builder) Fragment() *Fragment {
	return b.fragment
}

// Registry returns the node registry of the last Build.
func (b *Builder) Registry() *Registry {
	return b.registry
}

// Build walks state and places a leveled copy of the reference part for every
// shape token. The previous fragment and registry are discarded.
func (b *Builder) Build(generation int, state string, parts map[rune]Part, angles Angles) (*Fragment, error) {
	frag := &Fragment{
		generation: generation,
		state:      state,
		shapes:     shapeKinds(parts),
	}
	reg := NewRegistry()

	err := b.walk(generation, state, parts, angles, func(key NodeKey, sym rune, ref Part, level int) (Part, error) {
		p := ref.Copy(level)
		if err := reg.Register(key, p); err != nil {
			return nil, err
		}
		frag.nodes = append(frag.nodes, &Node{Key: key, Symbol: sym, Level: level, Part: p})
		return p, nil
	})
	if err != nil {
		return nil, fmt.Errorf("build generation %d: %w", generation, err)
	}

	b.fragment = frag
	b.registry = reg
	Logger().Debug("built fragment", "generation", generation, "parts", frag.Len())
	return frag, nil
}

// Update refreshes every part of the last fragment from the reference parts.
// It fails with ErrStaleTopology, before touching any part, when the last
// fragment was built from a different string or shape-token map.
func (b *Builder) Update(generation int, state string, parts map[rune]Part, angles Angles) error {
	if b.fragment == nil {
		return fmt.Errorf("%w: nothing has been built", ErrStaleTopology)
	}
	if !b.fragment.matches(generation, state, parts) {
		Logger().Warn("update rejected", "built", b.fragment.generation, "current", generation)
		return fmt.Errorf("%w: fragment built from generation %d, current is %d",
			ErrStaleTopology, b.fragment.generation, generation)
	}

	err := b.walk(generation, state, parts, angles, func(key NodeKey, sym rune, ref Part, level int) (Part, error) {
		p, ok := b.registry.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: no part registered for node %s", ErrStaleTopology, key)
		}
		if err := p.UpdateFrom(ref, level); err != nil {
			return nil, err
		}
		return p, nil
	})
	if err != nil {
		return fmt.Errorf("update generation %d: %w", generation, err)
	}
	Logger().Debug("updated fragment", "generation", generation, "parts", b.fragment.Len())
	return nil
}

type shapeFunc func(key NodeKey, sym rune, ref Part, level int) (Part, error)

// walk runs the turtle over state. Each shape token is handed to shape at
// the current level; the returned part is placed at the turtle's frame and the
// turtle advances by its length.
func (b *Builder) walk(generation int, state string, parts map[rune]Part, angles Angles, shape shapeFunc) error {
	t := b.turtle
	t.Reset()
	defer t.Reset()

	yaw := mgl64.DegToRad(angles.Yaw)
	pitch := mgl64.DegToRad(angles.Pitch)
	roll := mgl64.DegToRad(angles.Roll)

	occurrences := make(map[rune]int)
	for i, sym := range []rune(state) {
		if ref, ok := parts[sym]; ok {
			key := NodeKey{Generation: generation, Index: i, Occurrence: occurrences[sym]}
			occurrences[sym]++

			p, err := shape(key, sym, ref, t.Level())
			if err != nil {
				return err
			}
			if err := p.SetPosition(t.Position()); err != nil {
				return err
			}
			if err := p.SetOrientation(t.Orientation()); err != nil {
				return err
			}
			t.Move(p.Length())
			t.Descend()
			continue
		}

		switch sym {
		case '+':
			t.YawBy(yaw)
		case '-':
			t.YawBy(-yaw)
		case '^':
			t.PitchBy(pitch)
		case 'v':
			t.PitchBy(-pitch)
		case 'd':
			t.RollBy(roll)
		case 'b':
			t.RollBy(-roll)
		case '[':
			t.Push()
		case ']':
			if !t.Pop() {
				Logger().Debug("unbalanced bracket", "index", i, "generation", generation)
			}
		}
	}
	return nil
}
