package viewer

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smasonuk/lsystree"
	"github.com/smasonuk/lsystree/render"
)

func builtController(t *testing.T) *Controller {
	t.Helper()
	sys := lsystree.New()
	_, err := sys.GrowN(2)
	require.NoError(t, err)
	c := NewController(sys)
	_, err = c.Refresh(true)
	require.NoError(t, err)
	return c
}

func TestControllerGrowRebuilds(t *testing.T) {
	c := builtController(t)
	before := c.System().Fragment()

	frag, rebuild, err := c.Do(ActionGrow)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.NotSame(t, before, frag)
	assert.Equal(t, 3, c.System().Step())

	frag, rebuild, err = c.Do(ActionUndo)
	require.NoError(t, err)
	assert.True(t, rebuild)
	assert.Equal(t, 2, c.System().Step())
	assert.Equal(t, before.Len(), frag.Len())
}

func TestControllerValueEditsUpdateInPlace(t *testing.T) {
	testCases := []struct {
		action Action
		check  func(t *testing.T, sys *lsystree.LSystem)
	}{
		{ActionLonger, func(t *testing.T, sys *lsystree.LSystem) {
			p, _ := sys.Part('F')
			assert.InDelta(t, 1.1, p.Length(), 1e-9)
		}},
		{ActionShorter, func(t *testing.T, sys *lsystree.LSystem) {
			p, _ := sys.Part('F')
			assert.InDelta(t, 1/1.1, p.Length(), 1e-9)
		}},
		{ActionWider, func(t *testing.T, sys *lsystree.LSystem) {
			p, _ := sys.Part('F')
			assert.InDelta(t, 0.11, p.Width(), 1e-9)
		}},
		{ActionRatioDown, func(t *testing.T, sys *lsystree.LSystem) {
			p, _ := sys.Part('F')
			assert.InDelta(t, 0.95, p.(*lsystree.Branch).Ratio(), 1e-9)
		}},
		{ActionYawDown, func(t *testing.T, sys *lsystree.LSystem) {
			assert.Equal(t, lsystree.DefaultYaw-5, sys.Angles().Yaw)
		}},
		{ActionPitchUp, func(t *testing.T, sys *lsystree.LSystem) {
			assert.Equal(t, lsystree.DefaultPitch+5, sys.Angles().Pitch)
		}},
		{ActionRollUp, func(t *testing.T, sys *lsystree.LSystem) {
			assert.Equal(t, lsystree.DefaultRoll+5, sys.Angles().Roll)
		}},
		{ActionNextLeafColor, func(t *testing.T, sys *lsystree.LSystem) {
			p, _ := sys.Part('L')
			assert.Equal(t, LeafPalette[1], p.Color())
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.action.String(), func(t *testing.T) {
			c := builtController(t)
			before := c.System().Fragment()
			parts := before.Parts()

			frag, rebuild, err := c.Do(tc.action)
			require.NoError(t, err)
			assert.False(t, rebuild)
			assert.Same(t, before, frag)
			for i, p := range frag.Parts() {
				assert.Same(t, parts[i], p)
			}
			tc.check(t, c.System())
		})
	}
}

func TestControllerRatioStaysPositive(t *testing.T) {
	c := builtController(t)
	for range 30 {
		_, _, err := c.Do(ActionRatioDown)
		require.NoError(t, err)
	}
	p, _ := c.System().Part('F')
	assert.InDelta(t, minRatio, p.(*lsystree.Branch).Ratio(), 1e-9)

	frag, _, err := c.Do(ActionRatioUp)
	require.NoError(t, err)
	for _, n := range frag.Nodes() {
		b, ok := n.Part.(*lsystree.Branch)
		if !ok {
			continue
		}
		assert.Positive(t, b.Width(), "node %s", n.Key)
		assert.Positive(t, b.LowCap().Scale[0], "node %s", n.Key)
		assert.Positive(t, b.Cylinder().Scale[0], "node %s", n.Key)
	}
}

func fibConfig() *lsystree.Config {
	cfg := lsystree.DefaultConfig()
	cfg.Axiom = "A"
	cfg.Steps = 3
	cfg.Rules["A"] = "AB"
	cfg.Rules["B"] = "A"
	return cfg
}

func TestControllerReload(t *testing.T) {
	t.Run("rules only regrows in place", func(t *testing.T) {
		cfg := fibConfig()
		sys, err := lsystree.NewLSystemFromConfig(cfg)
		require.NoError(t, err)
		_, err = sys.Grow()
		require.NoError(t, err)
		require.NoError(t, sys.SetWidth('F', 0.3))
		c := NewController(sys)
		c.Track(cfg)

		next := fibConfig()
		next.Rules["B"] = "B"
		frag, regrown, err := c.Reload(next)
		require.NoError(t, err)
		assert.True(t, regrown)
		assert.Same(t, sys, c.System())
		assert.Equal(t, 4, sys.Step(), "the current step is kept")
		assert.Equal(t, "ABBBB", sys.Current())
		assert.Same(t, sys.Fragment(), frag)
		p, _ := sys.Part('F')
		assert.Equal(t, 0.3, p.Width(), "parts are kept")
	})

	t.Run("failed regrow keeps history and rules", func(t *testing.T) {
		cfg := fibConfig()
		sys, err := lsystree.NewLSystemFromConfig(cfg)
		require.NoError(t, err)
		c := NewController(sys)
		c.Track(cfg)
		before := sys.States()

		next := fibConfig()
		next.Rules["B"] = "Q"
		_, regrown, err := c.Reload(next)
		assert.ErrorIs(t, err, lsystree.ErrMissingRule)
		assert.True(t, regrown)
		assert.Equal(t, before, sys.States())
		assert.Equal(t, "A", sys.Rules()['B'])
	})

	t.Run("other changes replace the system", func(t *testing.T) {
		cfg := fibConfig()
		sys, err := lsystree.NewLSystemFromConfig(cfg)
		require.NoError(t, err)
		c := NewController(sys)
		c.Track(cfg)

		next := fibConfig()
		next.Axiom = "B"
		frag, regrown, err := c.Reload(next)
		require.NoError(t, err)
		assert.False(t, regrown)
		assert.NotSame(t, sys, c.System())
		assert.Equal(t, "ABA", c.System().Current())
		assert.Same(t, c.System().Fragment(), frag)
	})

	t.Run("untracked replaces the system", func(t *testing.T) {
		c := builtController(t)
		sys := c.System()
		_, regrown, err := c.Reload(fibConfig())
		require.NoError(t, err)
		assert.False(t, regrown)
		assert.NotSame(t, sys, c.System())
	})
}

func TestControllerErrors(t *testing.T) {
	sys := lsystree.New(
		lsystree.WithAxiom("F"),
		lsystree.WithRules(map[rune]string{'F': "F"}),
		lsystree.WithParts(map[rune]lsystree.Part{'F': lsystree.NewBranch(lsystree.DefaultBranchParams())}),
	)
	c := NewController(sys)

	_, _, err := c.Do(ActionNextLeafColor)
	assert.ErrorIs(t, err, lsystree.ErrInvalidArgument)

	_, err = sys.GrowN(lsystree.MaxSteps)
	require.NoError(t, err)
	_, _, err = c.Do(ActionGrow)
	assert.ErrorIs(t, err, lsystree.ErrInvalidArgument)
	assert.Equal(t, lsystree.MaxSteps, sys.Step())

	_, err = c.Apply(Action(99))
	assert.ErrorIs(t, err, lsystree.ErrInvalidArgument)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "grow", ActionGrow.String())
	assert.Equal(t, "leaf color", ActionNextLeafColor.String())
	assert.Equal(t, "Action(99)", Action(99).String())
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(lsystree.ViewConfig{})
	def := lsystree.DefaultConfig().View
	assert.Equal(t, def.Width, opts.Width)
	assert.Equal(t, def.Height, opts.Height)
	assert.Equal(t, def.Distance, opts.Distance)
	assert.Equal(t, lsystree.MustParseColor(def.Background), opts.Background)

	opts = OptionsFromConfig(lsystree.ViewConfig{Width: 320, Height: 240, Background: "#FFFFFF", Distance: 3})
	assert.Equal(t, 320, opts.Width)
	assert.Equal(t, 240, opts.Height)
	assert.Equal(t, 3.0, opts.Distance)
	assert.Equal(t, lsystree.MustParseColor("#FFFFFF"), opts.Background)
}

func TestStrokeFor(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}

	line := strokeFor(render.Polygon{Xs: []float32{0, 1}, Ys: []float32{0, 1}, Color: red, Line: true})
	assert.Equal(t, stroke{width: lineWidth, color: red}, line)

	face := strokeFor(render.Polygon{Xs: []float32{0, 1, 1}, Ys: []float32{0, 0, 1}, Color: red})
	assert.True(t, face.closed, "faces are outlined all the way round")
	assert.Equal(t, outlineColor, face.color)
	assert.Equal(t, float32(outlineWidth), face.width)
}
