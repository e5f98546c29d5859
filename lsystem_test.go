package lsystree

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityRules(symbols string) map[rune]string {
	rules := make(map[rune]string)
	for _, s := range symbols {
		rules[s] = string(s)
	}
	return rules
}

func TestGrowRewritesEverySymbolOnce(t *testing.T) {
	l := New(
		WithAxiom("A"),
		WithRules(map[rune]string{'A': "AB", 'B': "A"}),
		WithParts(nil),
	)

	want := []string{"A", "AB", "ABA", "ABAAB", "ABAABABA"}
	for i := 1; i < len(want); i++ {
		got, err := l.Grow()
		require.NoError(t, err)
		assert.Equal(t, want[i], got)
	}
	assert.Equal(t, want, l.States())
	assert.Equal(t, 4, l.Step())
}

func TestHistoryNeverLosesTheAxiom(t *testing.T) {
	l := New()
	assert.Equal(t, DefaultAxiom, l.Undo())
	assert.Len(t, l.States(), 1)

	for n := 1; n <= 4; n++ {
		_, err := l.GrowN(n)
		require.NoError(t, err)
		for range n {
			l.Undo()
			assert.GreaterOrEqual(t, len(l.States()), 1)
		}
		assert.Equal(t, DefaultAxiom, l.Current())
		assert.Equal(t, 0, l.Step())
	}

	assert.Equal(t, DefaultAxiom, l.Undo())
}

func TestBracketsStayBalanced(t *testing.T) {
	rules := identityRules(ReservedSymbols)
	rules['X'] = "F[+X]F[-X]"
	rules['F'] = "F"
	l := New(WithRules(rules))

	for range 6 {
		s, err := l.Grow()
		require.NoError(t, err)
		assert.Equal(t, strings.Count(s, "["), strings.Count(s, "]"))
	}
}

func TestMissingRule(t *testing.T) {
	l := New(WithAxiom("AQ"), WithRules(map[rune]string{'A': "AA"}), WithParts(nil))

	s, err := l.Grow()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRule)
	assert.Equal(t, "AQ", s)

	var mre *MissingRuleError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 'Q', mre.Symbol)
	assert.Equal(t, 1, mre.Position)
	assert.Equal(t, 0, mre.Generation)
	assert.Contains(t, mre.Error(), `'Q'`)

	assert.Equal(t, []string{"AQ"}, l.States(), "failed grow must not touch history")

	l.SetRule('Q', "")
	s, err = l.Grow()
	require.NoError(t, err)
	assert.Equal(t, "AA", s)
}

func TestGrowNStopsAtFirstError(t *testing.T) {
	l := New(WithAxiom("A"), WithRules(map[rune]string{'A': "AZ"}), WithParts(nil))
	s, err := l.GrowN(5)
	assert.ErrorIs(t, err, ErrMissingRule)
	assert.Equal(t, "AZ", s)
	assert.Equal(t, 1, l.Step())
}

func TestSetRuleIsNotRetroactive(t *testing.T) {
	l := New(WithAxiom("A"), WithRules(map[rune]string{'A': "AB", 'B': "B"}), WithParts(nil))
	_, err := l.GrowN(2)
	require.NoError(t, err)
	before := l.States()

	l.SetRule('B', "C")
	l.SetRule('C', "C")
	assert.Equal(t, before, l.States())

	s, err := l.Grow()
	require.NoError(t, err)
	assert.Equal(t, "ABCC", s)
}

func TestRegrow(t *testing.T) {
	l := New(WithAxiom("A"), WithRules(map[rune]string{'A': "AB", 'B': "B"}), WithParts(nil))
	_, err := l.GrowN(2)
	require.NoError(t, err)

	l.SetRules(map[rune]string{'B': "BB"})
	s, err := l.Regrow()
	require.NoError(t, err)
	assert.Equal(t, "ABBB", s)
	assert.Equal(t, []string{"A", "AB", "ABBB"}, l.States())

	l.SetRule('A', "AQ")
	_, err = l.Regrow()
	assert.ErrorIs(t, err, ErrMissingRule)
	assert.Equal(t, []string{"A", "AB", "ABBB"}, l.States(), "failed regrow keeps the old history")
}

func TestReset(t *testing.T) {
	l := New()
	_, err := l.GrowN(2)
	require.NoError(t, err)
	l.SetRule('X', "F")
	require.NoError(t, l.SetWidth('F', 0.7))

	assert.Equal(t, DefaultAxiom, l.Reset())
	assert.Equal(t, []string{DefaultAxiom}, l.States())
	assert.Equal(t, DefaultRules(), l.Rules())

	f, ok := l.Part('F')
	require.True(t, ok)
	assert.Equal(t, DefaultBranchWidth, f.Width())
}

func TestRulesReturnsACopy(t *testing.T) {
	l := New()
	rules := l.Rules()
	rules['X'] = "oops"
	assert.Equal(t, DefaultRules()['X'], l.Rules()['X'])
}

func TestDefaultRulesCoverDirectives(t *testing.T) {
	rules := DefaultRules()
	for _, sym := range ReservedSymbols {
		assert.Equal(t, string(sym), rules[sym])
	}

	l := New()
	_, err := l.GrowN(4)
	require.NoError(t, err, "default grammar must be closed under its rules")
}

func TestPartSetters(t *testing.T) {
	l := New()

	require.NoError(t, l.SetLength('F', 2))
	require.NoError(t, l.SetWidth('F', 0.3))
	f, _ := l.Part('F')
	assert.Equal(t, 2.0, f.Length())
	assert.Equal(t, 0.3, f.Width())
	assert.Equal(t, 0.3, f.Depth(), "branch depth follows width")

	require.NoError(t, l.SetDepth('L', 0.4))
	require.NoError(t, l.SetWidth('L', 0.6))
	leaf, _ := l.Part('L')
	assert.Equal(t, 0.4, leaf.Depth())
	assert.Equal(t, 0.6, leaf.Width())

	require.NoError(t, l.SetRatio('F', 0.7))
	assert.Equal(t, 0.7, f.(*Branch).Ratio())

	c := MustParseColor("#FF0000")
	require.NoError(t, l.SetColor('L', c))
	assert.Equal(t, c, leaf.Color())

	testCases := []struct {
		name string
		call func() error
	}{
		{"depth on branch", func() error { return l.SetDepth('F', 1) }},
		{"ratio on leaf", func() error { return l.SetRatio('L', 1) }},
		{"unknown symbol", func() error { return l.SetLength('Q', 1) }},
		{"negative width", func() error { return l.SetWidth('F', -1) }},
		{"nan length", func() error { return l.SetLength('F', math.NaN()) }},
		{"color on unknown symbol", func() error { return l.SetColor('Q', c) }},
		{"reserved part", func() error { return l.SetPart('[', NewLeaf(DefaultLeafParams())) }},
		{"nil part", func() error { return l.SetPart('Q', nil) }},
		{"infinite yaw", func() error { return l.SetYaw(math.Inf(1)) }},
		{"nan pitch", func() error { return l.SetPitch(math.NaN()) }},
		{"nan roll", func() error { return l.SetRoll(math.NaN()) }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.call(), ErrInvalidArgument)
		})
	}

	assert.Equal(t, 2.0, f.Length())
	assert.Equal(t, 0.3, f.Width())
	assert.Equal(t, DefaultAngles(), l.Angles())
}

func TestAngleSetters(t *testing.T) {
	l := New()
	require.NoError(t, l.SetYaw(10))
	require.NoError(t, l.SetPitch(20))
	require.NoError(t, l.SetRoll(-30))
	assert.Equal(t, Angles{Yaw: 10, Pitch: 20, Roll: -30}, l.Angles())
}
