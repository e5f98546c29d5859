package lsystree

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const float64EqualityThreshold = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func assertVec(t *testing.T, want, got mgl64.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.ApproxEqualThreshold(want, float64EqualityThreshold),
		append([]any{"want %v, got %v", want, got}, msgAndArgs...)...)
}

// assertQuat compares rotations, so q and -q are equal.
func assertQuat(t *testing.T, want, got mgl64.Quat) {
	t.Helper()
	assert.True(t, want.ApproxEqualThreshold(got, float64EqualityThreshold) ||
		want.Scale(-1).ApproxEqualThreshold(got, float64EqualityThreshold),
		"want %v, got %v", want, got)
}

func TestTurtleAxesAtIdentity(t *testing.T) {
	tt := NewTurtle()
	assertVec(t, mgl64.Vec3{0, 1, 0}, tt.Forward())
	assertVec(t, mgl64.Vec3{0, 0, 1}, tt.Top())
	assertVec(t, mgl64.Vec3{1, 0, 0}, tt.Side())
	assertVec(t, mgl64.Vec3{}, tt.Position())
}

func TestTurtleMove(t *testing.T) {
	tt := NewTurtle()
	assertVec(t, mgl64.Vec3{0, 2, 0}, tt.Move(2))
	assertVec(t, mgl64.Vec3{0, 1, 0}, tt.Move(-1))
	assertVec(t, mgl64.Vec3{0, 1, 0}, tt.Move(0))
}

func TestTurtleRotations(t *testing.T) {
	testCases := []struct {
		name    string
		rotate  func(tt *Turtle)
		forward mgl64.Vec3
		top     mgl64.Vec3
	}{
		{
			name:    "yaw turns forward about top",
			rotate:  func(tt *Turtle) { tt.YawBy(math.Pi / 2) },
			forward: mgl64.Vec3{-1, 0, 0},
			top:     mgl64.Vec3{0, 0, 1},
		},
		{
			name:    "pitch turns forward about side",
			rotate:  func(tt *Turtle) { tt.PitchBy(math.Pi / 2) },
			forward: mgl64.Vec3{0, 0, 1},
			top:     mgl64.Vec3{0, -1, 0},
		},
		{
			name:    "roll keeps forward",
			rotate:  func(tt *Turtle) { tt.RollBy(math.Pi / 2) },
			forward: mgl64.Vec3{0, 1, 0},
			top:     mgl64.Vec3{1, 0, 0},
		},
		{
			name: "yaw after pitch uses the pitched top axis",
			rotate: func(tt *Turtle) {
				tt.PitchBy(math.Pi / 2)
				tt.YawBy(math.Pi / 2)
			},
			forward: mgl64.Vec3{-1, 0, 0},
			top:     mgl64.Vec3{0, -1, 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tt := NewTurtle()
			tc.rotate(tt)
			assertVec(t, tc.forward, tt.Forward(), "forward")
			assertVec(t, tc.top, tt.Top(), "top")
		})
	}
}

func TestTurtleRotationsDoNotCommute(t *testing.T) {
	a := NewTurtle()
	a.YawBy(math.Pi / 2)
	a.PitchBy(math.Pi / 2)

	b := NewTurtle()
	b.PitchBy(math.Pi / 2)
	b.YawBy(math.Pi / 2)

	assert.False(t, a.Forward().ApproxEqualThreshold(b.Forward(), float64EqualityThreshold))
}

func TestTurtlePushPopRoundTrip(t *testing.T) {
	tt := NewTurtle()
	tt.Move(1.5)
	tt.YawBy(0.3)
	tt.Descend()
	pos, rot, level := tt.Position(), tt.Orientation(), tt.Level()

	tt.Push()
	tt.YawBy(0.7)
	tt.PitchBy(-1.1)
	tt.RollBy(2.9)
	tt.Move(4)
	tt.Descend()
	tt.Move(-0.25)
	require.True(t, tt.Pop())

	assertVec(t, pos, tt.Position())
	assertQuat(t, rot, tt.Orientation())
	assert.Equal(t, level, tt.Level())
	assert.Equal(t, 0, tt.Depth())
}

func TestTurtlePopEmptyIsNoop(t *testing.T) {
	tt := NewTurtle()
	tt.Move(3)
	tt.RollBy(1)
	pos, rot := tt.Position(), tt.Orientation()

	assert.False(t, tt.Pop())
	assertVec(t, pos, tt.Position())
	assertQuat(t, rot, tt.Orientation())
}

func TestTurtleAbsoluteSetters(t *testing.T) {
	tt := NewTurtle()

	require.NoError(t, tt.MoveTo(mgl64.Vec3{1, 2, 3}))
	assertVec(t, mgl64.Vec3{1, 2, 3}, tt.Position())

	err := tt.MoveTo(mgl64.Vec3{math.NaN(), 0, 0})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assertVec(t, mgl64.Vec3{1, 2, 3}, tt.Position())

	q := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1})
	require.NoError(t, tt.Orient(q))
	assertQuat(t, q, tt.Orientation())

	err = tt.Orient(mgl64.Quat{W: 2, V: mgl64.Vec3{0, 0, 0}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assertQuat(t, q, tt.Orientation())

	err = tt.Orient(mgl64.Quat{W: math.Inf(1)})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTurtleReset(t *testing.T) {
	tt := NewTurtle()
	tt.Move(2)
	tt.PitchBy(1)
	tt.Descend()
	tt.Push()
	tt.Push()

	tt.Reset()
	assertVec(t, mgl64.Vec3{}, tt.Position())
	assertQuat(t, mgl64.QuatIdent(), tt.Orientation())
	assert.Equal(t, 0, tt.Level())
	assert.Equal(t, 0, tt.Depth())
	assert.False(t, tt.Pop())
}
