package viewer

import (
	"fmt"
	"image/color"
	"math"
	"reflect"
	"sort"

	"github.com/smasonuk/lsystree"
)

// Action is one user command on the plant.
type Action int

const (
	ActionGrow Action = iota
	ActionUndo
	ActionReset
	ActionLonger
	ActionShorter
	ActionWider
	ActionNarrower
	ActionRatioUp
	ActionRatioDown
	ActionYawUp
	ActionYawDown
	ActionPitchUp
	ActionPitchDown
	ActionRollUp
	ActionRollDown
	ActionNextLeafColor
)

var actionNames = [...]string{
	"grow", "undo", "reset", "longer", "shorter", "wider", "narrower",
	"ratio+", "ratio-", "yaw+", "yaw-", "pitch+", "pitch-", "roll+", "roll-", "leaf color",
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return fmt.Sprintf("Action(%d)", int(a))
	}
	return actionNames[a]
}

const (
	sizeStep  = 1.1
	ratioStep = 0.05
	angleStep = 5.0

	// minRatio keeps tapered widths positive.
	minRatio = ratioStep
)

// LeafPalette is cycled by ActionNextLeafColor.
var LeafPalette = []color.RGBA{
	lsystree.MustParseColor("#00FF00"),
	lsystree.MustParseColor("#7FBF3F"),
	lsystree.MustParseColor("#FFD700"),
	lsystree.MustParseColor("#FF8C00"),
	lsystree.MustParseColor("#B22222"),
}

// Controller applies actions to an LSystem through its public setters and
// keeps the built fragment in step with them.
type Controller struct {
	sys      *lsystree.LSystem
	cfg      *lsystree.Config
	colorIdx int
}

func NewController(sys *lsystree.LSystem) *Controller {
	return &Controller{sys: sys}
}

func (c *Controller) System() *lsystree.LSystem {
	return c.sys
}

// Track records the config the current system was made from. Reload compares
// against it.
func (c *Controller) Track(cfg *lsystree.Config) {
	c.cfg = cfg
}

// Reload applies a changed config. When only the rules differ, the current
// system takes the new rules and regrows to its current step, keeping its
// parts and angles. Any other change replaces the system. regrown reports
// which path was taken. On error the current system is left as it was.
func (c *Controller) Reload(cfg *lsystree.Config) (frag *lsystree.Fragment, regrown bool, err error) {
	if rulesOnly(c.cfg, cfg) {
		prev := c.sys.Rules()
		c.sys.SetRules(cfg.RuleTable())
		if _, err := c.sys.Regrow(); err != nil {
			c.sys.SetRules(prev)
			return nil, true, err
		}
		c.cfg = cfg
		frag, err = c.sys.Build()
		return frag, true, err
	}

	sys, err := lsystree.NewLSystemFromConfig(cfg)
	if err != nil {
		return nil, false, err
	}
	frag, err = sys.Build()
	if err != nil {
		return nil, false, err
	}
	c.sys, c.cfg = sys, cfg
	return frag, false, nil
}

// rulesOnly reports whether next differs from prev in its rules alone.
func rulesOnly(prev, next *lsystree.Config) bool {
	if prev == nil || next == nil {
		return false
	}
	a, b := *prev, *next
	a.Rules, b.Rules = nil, nil
	return reflect.DeepEqual(a, b)
}

// firstOfKind returns the lowest shape token of kind k.
func (c *Controller) firstOfKind(k lsystree.Kind) (rune, lsystree.Part, error) {
	parts := c.sys.Parts()
	syms := make([]rune, 0, len(parts))
	for sym, p := range parts {
		if p.Kind() == k {
			syms = append(syms, sym)
		}
	}
	if len(syms) == 0 {
		return 0, nil, fmt.Errorf("%w: no %s shape token", lsystree.ErrInvalidArgument, k)
	}
	sort.Slice(syms, func(i, j int) bool { return syms[i] < syms[j] })
	return syms[0], parts[syms[0]], nil
}

// Apply performs a. rebuild reports whether the topology changed and the
// fragment must be built again rather than updated.
func (c *Controller) Apply(a Action) (rebuild bool, err error) {
	switch a {
	case ActionGrow:
		if c.sys.Step() >= lsystree.MaxSteps {
			return false, fmt.Errorf("%w: step cap %d reached", lsystree.ErrInvalidArgument, lsystree.MaxSteps)
		}
		_, err := c.sys.Grow()
		return err == nil, err
	case ActionUndo:
		c.sys.Undo()
		return true, nil
	case ActionReset:
		c.sys.Reset()
		return true, nil
	case ActionLonger, ActionShorter:
		sym, p, err := c.firstOfKind(lsystree.KindBranch)
		if err != nil {
			return false, err
		}
		return false, c.sys.SetLength(sym, scaled(p.Length(), a == ActionLonger))
	case ActionWider, ActionNarrower:
		sym, p, err := c.firstOfKind(lsystree.KindBranch)
		if err != nil {
			return false, err
		}
		return false, c.sys.SetWidth(sym, scaled(p.Width(), a == ActionWider))
	case ActionRatioUp, ActionRatioDown:
		sym, p, err := c.firstOfKind(lsystree.KindBranch)
		if err != nil {
			return false, err
		}
		r := p.(*lsystree.Branch).Ratio()
		if a == ActionRatioUp {
			r += ratioStep
		} else {
			r = math.Max(minRatio, r-ratioStep)
		}
		return false, c.sys.SetRatio(sym, r)
	case ActionYawUp, ActionYawDown:
		return false, c.sys.SetYaw(c.sys.Angles().Yaw + signed(a == ActionYawUp))
	case ActionPitchUp, ActionPitchDown:
		return false, c.sys.SetPitch(c.sys.Angles().Pitch + signed(a == ActionPitchUp))
	case ActionRollUp, ActionRollDown:
		return false, c.sys.SetRoll(c.sys.Angles().Roll + signed(a == ActionRollUp))
	case ActionNextLeafColor:
		sym, _, err := c.firstOfKind(lsystree.KindLeaf)
		if err != nil {
			return false, err
		}
		c.colorIdx = (c.colorIdx + 1) % len(LeafPalette)
		return false, c.sys.SetColor(sym, LeafPalette[c.colorIdx])
	}
	return false, fmt.Errorf("%w: unknown action %v", lsystree.ErrInvalidArgument, a)
}

func scaled(v float64, up bool) float64 {
	if up {
		return v * sizeStep
	}
	return v / sizeStep
}

func signed(up bool) float64 {
	if up {
		return angleStep
	}
	return -angleStep
}

// Refresh brings the fragment up to date: a fresh build after a topology
// change, an in-place update otherwise.
func (c *Controller) Refresh(rebuild bool) (*lsystree.Fragment, error) {
	if !rebuild && c.sys.Fragment() != nil {
		if err := c.sys.Update(); err != nil {
			return nil, err
		}
		return c.sys.Fragment(), nil
	}
	return c.sys.Build()
}

// Do applies a and refreshes the fragment.
func (c *Controller) Do(a Action) (*lsystree.Fragment, bool, error) {
	rebuild, err := c.Apply(a)
	if err != nil {
		return nil, false, fmt.Errorf("%v: %w", a, err)
	}
	frag, err := c.Refresh(rebuild)
	if err != nil {
		return nil, false, fmt.Errorf("%v: %w", a, err)
	}
	lsystree.Logger().Debug("applied action", "action", a.String(), "rebuild", rebuild, "parts", frag.Len())
	return frag, rebuild, nil
}
