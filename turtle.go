package lsystree

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Canonical turtle axes at identity orientation: the turtle looks up +Y,
// its top points along +Z and its side along +X.
var (
	canonicalForward = mgl64.Vec3{0, 1, 0}
	canonicalTop     = mgl64.Vec3{0, 0, 1}
	canonicalSide    = mgl64.Vec3{1, 0, 0}
)

const unitQuatTolerance = 1e-6

type turtleState struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
	level       int
}

// Turtle is a moving, rotating reference frame with a save/restore stack.
// Rotations are applied about the turtle's own current axes, so consecutive
// yaw/pitch/roll calls do not commute.
type Turtle struct {
	position    mgl64.Vec3
	orientation mgl64.Quat
	level       int
	stack       []turtleState
}

func NewTurtle() *Turtle {
	return &Turtle{orientation: mgl64.QuatIdent()}
}

func (t *Turtle) Position() mgl64.Vec3 {
	return t.position
}

func (t *Turtle) Orientation() mgl64.Quat {
	return t.orientation
}

// Forward returns the unit vector the turtle is facing, in world space.
func (t *Turtle) Forward() mgl64.Vec3 {
	return t.orientation.Rotate(canonicalForward).Normalize()
}

// Top returns the turtle's up axis in world space.
func (t *Turtle) Top() mgl64.Vec3 {
	return t.orientation.Rotate(canonicalTop).Normalize()
}

// Side returns the turtle's side axis in world space.
func (t *Turtle) Side() mgl64.Vec3 {
	return t.orientation.Rotate(canonicalSide).Normalize()
}

// Level is the auxiliary depth counter saved and restored with the frame.
func (t *Turtle) Level() int {
	return t.level
}

// Descend increments the depth counter.
func (t *Turtle) Descend() {
	t.level++
}

// Move advances the turtle by distance along its forward axis and returns the
// new position. Negative distances move it backwards.
func (t *Turtle) Move(distance float64) mgl64.Vec3 {
	t.position = t.position.Add(t.Forward().Mul(distance))
	return t.position
}

// YawBy rotates the turtle about its top axis.
func (t *Turtle) YawBy(angle float64) {
	t.rotateLocal(canonicalTop, angle)
}

// PitchBy rotates the turtle about its side axis.
func (t *Turtle) PitchBy(angle float64) {
	t.rotateLocal(canonicalSide, angle)
}

// RollBy rotates the turtle about its forward axis.
func (t *Turtle) RollBy(angle float64) {
	t.rotateLocal(canonicalForward, angle)
}

// rotateLocal rotates about a canonical axis expressed in the turtle's frame.
// q·R(axis) is the same rotation as R(q·axis)·q.
func (t *Turtle) rotateLocal(axis mgl64.Vec3, angle float64) {
	if angle == 0 {
		return
	}
	t.orientation = t.orientation.Mul(mgl64.QuatRotate(angle, axis)).Normalize()
}

// MoveTo places the turtle at an absolute position.
func (t *Turtle) MoveTo(p mgl64.Vec3) error {
	if !finiteVec(p) {
		return invalidArgument("turtle position %v is not a finite vector", p)
	}
	t.position = p
	return nil
}

// Orient sets an absolute orientation. q must be a unit quaternion.
func (t *Turtle) Orient(q mgl64.Quat) error {
	if !unitQuat(q) {
		return invalidArgument("turtle orientation %v is not a unit quaternion", q)
	}
	t.orientation = q
	return nil
}

// Reset returns the turtle to the origin with identity orientation, zero level
// and an empty stack.
func (t *Turtle) Reset() {
	t.position = mgl64.Vec3{}
	t.orientation = mgl64.QuatIdent()
	t.level = 0
	t.stack = t.stack[:0]
}

// Push saves position, orientation and level.
func (t *Turtle) Push() {
	t.stack = append(t.stack, turtleState{
		position:    t.position,
		orientation: t.orientation,
		level:       t.level,
	})
}

// Pop restores the most recently pushed state. Popping an empty stack is a
// no-op and reports false.
func (t *Turtle) Pop() bool {
	if len(t.stack) == 0 {
		return false
	}
	s := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.position = s.position
	t.orientation = s.orientation
	t.level = s.level
	return true
}

// Depth is the number of saved states.
func (t *Turtle) Depth() int {
	return len(t.stack)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v mgl64.Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

func unitQuat(q mgl64.Quat) bool {
	if !finite(q.W) || !finiteVec(q.V) {
		return false
	}
	return math.Abs(q.Len()-1) <= unitQuatTolerance
}
