package lsystree

import (
	"image/color"
	"maps"
	"strings"
)

// DefaultAxiom seeds generation 0 of the default plant.
const DefaultAxiom = "[X]"

// ReservedSymbols are the turtle directives. They can never be shape tokens.
const ReservedSymbols = "[]+-^vdb"

func isReserved(sym rune) bool {
	return strings.ContainsRune(ReservedSymbols, sym)
}

// DefaultRules returns the rule table of the default plant: two branch
// producers, a stable leaf and identity rules for every directive.
func DefaultRules() map[rune]string {
	rules := map[rune]string{
		'X': "[^F[^+L][^-L]F+X]b[^F+X]bv",
		'F': "Fb+F[X]",
		'L': "L",
	}
	for _, sym := range ReservedSymbols {
		rules[sym] = string(sym)
	}
	return rules
}

// DefaultParts maps F to a default branch and L to a default leaf.
func DefaultParts() map[rune]Part {
	return map[rune]Part{
		'F': NewBranch(DefaultBranchParams()),
		'L': NewLeaf(DefaultLeafParams()),
	}
}

// LSystem owns the generation history, the rule table, the shape-token map
// and the builder that turns the current generation into a fragment.
//
// An LSystem is not safe for concurrent use.
type LSystem struct {
	axiom        string
	defaultRules map[rune]string
	defaultParts map[rune]Part

	rules  map[rune]string
	parts  map[rune]Part
	angles Angles
	states []string

	builder *Builder
}

type Option func(*LSystem)

// WithAxiom sets generation 0.
func WithAxiom(axiom string) Option {
	return func(l *LSystem) { l.axiom = axiom }
}

// WithRules sets the rule table. Reset restores these rules.
func WithRules(rules map[rune]string) Option {
	return func(l *LSystem) { l.defaultRules = maps.Clone(rules) }
}

// WithParts sets the shape-token map. Reset restores these parts.
func WithParts(parts map[rune]Part) Option {
	return func(l *LSystem) { l.defaultParts = cloneParts(parts) }
}

func WithAngles(a Angles) Option {
	return func(l *LSystem) { l.angles = a }
}

func New(opts ...Option) *LSystem {
	l := &LSystem{
		axiom:        DefaultAxiom,
		defaultRules: DefaultRules(),
		defaultParts: DefaultParts(),
		angles:       DefaultAngles(),
		builder:      NewBuilder(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.rules = maps.Clone(l.defaultRules)
	l.parts = cloneParts(l.defaultParts)
	l.states = []string{l.axiom}
	return l
}

func cloneParts(parts map[rune]Part) map[rune]Part {
	out := make(map[rune]Part, len(parts))
	for sym, p := range parts {
		out[sym] = p.Copy(0)
	}
	return out
}

func (l *LSystem) Axiom() string { return l.axiom }

// Current is the last generation string.
func (l *LSystem) Current() string { return l.states[len(l.states)-1] }

// Step is the number of successful growths since the axiom.
func (l *LSystem) Step() int { return len(l.states) - 1 }

// States returns a copy of the generation history, axiom first.
func (l *LSystem) States() []string {
	return append([]string(nil), l.states...)
}

// Rules returns a copy of the rule table.
func (l *LSystem) Rules() map[rune]string {
	return maps.Clone(l.rules)
}

// Grow rewrites the current generation, replacing every symbol by its rule in
// one pass, and appends the result. A symbol without a rule fails with a
// *MissingRuleError and the history is left as it was.
func (l *LSystem) Grow() (string, error) {
	cur := l.Current()
	var sb strings.Builder
	for i, sym := range []rune(cur) {
		r, ok := l.rules[sym]
		if !ok {
			err := &MissingRuleError{Symbol: sym, Position: i, Generation: l.Step()}
			Logger().Warn("grow rejected", "err", err)
			return cur, err
		}
		sb.WriteString(r)
	}
	next := sb.String()
	l.states = append(l.states, next)
	Logger().Debug("grew", "step", l.Step(), "length", len(next))
	return next, nil
}

// GrowN grows n times, stopping at the first error.
func (l *LSystem) GrowN(n int) (string, error) {
	for range n {
		if _, err := l.Grow(); err != nil {
			return l.Current(), err
		}
	}
	return l.Current(), nil
}

// Regrow recomputes the history from the axiom with the current rules, back
// to the same step. On error the previous history is kept.
func (l *LSystem) Regrow() (string, error) {
	saved := l.states
	n := l.Step()
	l.states = []string{l.axiom}
	if _, err := l.GrowN(n); err != nil {
		l.states = saved
		return l.Current(), err
	}
	return l.Current(), nil
}

// Undo drops the last generation. The axiom is never removed.
func (l *LSystem) Undo() string {
	if len(l.states) > 1 {
		l.states = l.states[:len(l.states)-1]
	}
	return l.Current()
}

// Reset restores the axiom, the rule table and the shape-token map given at
// construction.
func (l *LSystem) Reset() string {
	l.states = []string{l.axiom}
	l.rules = maps.Clone(l.defaultRules)
	l.parts = cloneParts(l.defaultParts)
	return l.axiom
}

// SetRule upserts one rule. Existing generations are not rewritten.
func (l *LSystem) SetRule(sym rune, replacement string) {
	l.rules[sym] = replacement
}

// SetRules upserts every rule in rules.
func (l *LSystem) SetRules(rules map[rune]string) {
	maps.Copy(l.rules, rules)
}

// Part returns the reference part of a shape token.
func (l *LSystem) Part(sym rune) (Part, bool) {
	p, ok := l.parts[sym]
	return p, ok
}

// Parts returns the shape-token map. The parts are the live references.
func (l *LSystem) Parts() map[rune]Part {
	return maps.Clone(l.parts)
}

// SetPart makes sym a shape token drawn as p. Changing the map invalidates
// the last fragment for Update.
func (l *LSystem) SetPart(sym rune, p Part) error {
	if p == nil {
		return invalidArgument("nil part for symbol %q", sym)
	}
	if isReserved(sym) {
		return invalidArgument("symbol %q is a turtle directive", sym)
	}
	l.parts[sym] = p
	return nil
}

// RemovePart turns sym back into a no-op symbol.
func (l *LSystem) RemovePart(sym rune) {
	delete(l.parts, sym)
}

func (l *LSystem) part(sym rune) (Part, error) {
	p, ok := l.parts[sym]
	if !ok {
		return nil, invalidArgument("symbol %q is not a shape token", sym)
	}
	return p, nil
}

func dimension(name string, v float64) error {
	if !finite(v) || v <= 0 {
		return invalidArgument("%s %v must be a finite positive number", name, v)
	}
	return nil
}

// SetLength sets the reference length of a shape token.
func (l *LSystem) SetLength(sym rune, v float64) error {
	p, err := l.part(sym)
	if err != nil {
		return err
	}
	if err := dimension("length", v); err != nil {
		return err
	}
	p.Rescale(p.Width(), v, p.Depth())
	return nil
}

// SetWidth sets the reference width of a shape token. Branches are radially
// symmetric, so their depth follows the width.
func (l *LSystem) SetWidth(sym rune, v float64) error {
	p, err := l.part(sym)
	if err != nil {
		return err
	}
	if err := dimension("width", v); err != nil {
		return err
	}
	switch p.Kind() {
	case KindBranch:
		p.Rescale(v, p.Length(), v)
	default:
		p.Rescale(v, p.Length(), p.Depth())
	}
	return nil
}

// SetDepth sets the reference depth of a leaf token.
func (l *LSystem) SetDepth(sym rune, v float64) error {
	p, err := l.part(sym)
	if err != nil {
		return err
	}
	leaf, ok := p.(*Leaf)
	if !ok {
		return invalidArgument("depth applies to leaves, %q is a %s", sym, p.Kind())
	}
	if err := dimension("depth", v); err != nil {
		return err
	}
	leaf.Rescale(leaf.Width(), leaf.Length(), v)
	return nil
}

// SetRatio sets the taper ratio of a branch token.
func (l *LSystem) SetRatio(sym rune, r float64) error {
	p, err := l.part(sym)
	if err != nil {
		return err
	}
	b, ok := p.(*Branch)
	if !ok {
		return invalidArgument("ratio applies to branches, %q is a %s", sym, p.Kind())
	}
	return b.SetRatio(r)
}

func (l *LSystem) SetColor(sym rune, c color.RGBA) error {
	p, err := l.part(sym)
	if err != nil {
		return err
	}
	p.Recolor(c)
	return nil
}

func (l *LSystem) Angles() Angles { return l.angles }

// SetYaw sets the yaw step in degrees.
func (l *LSystem) SetYaw(deg float64) error {
	if !finite(deg) {
		return invalidArgument("yaw %v is not finite", deg)
	}
	l.angles.Yaw = deg
	return nil
}

// SetPitch sets the pitch step in degrees.
func (l *LSystem) SetPitch(deg float64) error {
	if !finite(deg) {
		return invalidArgument("pitch %v is not finite", deg)
	}
	l.angles.Pitch = deg
	return nil
}

// SetRoll sets the roll step in degrees.
func (l *LSystem) SetRoll(deg float64) error {
	if !finite(deg) {
		return invalidArgument("roll %v is not finite", deg)
	}
	l.angles.Roll = deg
	return nil
}

// Build creates a new fragment from the current generation.
func (l *LSystem) Build() (*Fragment, error) {
	return l.builder.Build(l.Step(), l.Current(), l.parts, l.angles)
}

// Update refreshes the last fragment in place after value-only edits.
func (l *LSystem) Update() error {
	return l.builder.Update(l.Step(), l.Current(), l.parts, l.angles)
}

// Fragment returns the last built fragment, or nil.
func (l *LSystem) Fragment() *Fragment {
	return l.builder.Fragment()
}
