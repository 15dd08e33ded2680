package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Axis selects one of the camera's local axes.
type Axis int

const (
	AxisForward Axis = iota
	AxisRight
	AxisUp
)

func (a Axis) String() string {
	switch a {
	case AxisForward:
		return "forward"
	case AxisRight:
		return "right"
	case AxisUp:
		return "up"
	default:
		return "unknown"
	}
}

// Right-handed, Y-up, camera looks down -Z.
var (
	localForward = mgl32.Vec3{0, 0, -1}
	localRight   = mgl32.Vec3{1, 0, 0}
	localUp      = mgl32.Vec3{0, 1, 0}
)

// MaxPitch keeps the camera short of the poles.
var MaxPitch = mgl32.DegToRad(89)

// RigidTransform is a position plus a yaw/pitch orientation. The basis
// vectors are always derived from the orientation, never stored.
type RigidTransform struct {
	Position mgl32.Vec3
	Yaw      float32
	Pitch    float32
}

func NewRigidTransform(position mgl32.Vec3) RigidTransform {
	return RigidTransform{Position: position}
}

// Rotation composes yaw about world Y with pitch about the local X axis.
func (t RigidTransform) Rotation() mgl32.Quat {
	if t.Yaw == 0 && t.Pitch == 0 {
		return mgl32.QuatIdent()
	}
	yaw := mgl32.QuatRotate(t.Yaw, localUp)
	pitch := mgl32.QuatRotate(t.Pitch, localRight)
	return yaw.Mul(pitch).Normalize()
}

func (t RigidTransform) Forward() mgl32.Vec3 {
	return t.Rotation().Rotate(localForward).Normalize()
}

func (t RigidTransform) Right() mgl32.Vec3 {
	return t.Rotation().Rotate(localRight).Normalize()
}

func (t RigidTransform) Up() mgl32.Vec3 {
	return t.Rotation().Rotate(localUp).Normalize()
}

func (t RigidTransform) AxisVector(axis Axis) mgl32.Vec3 {
	switch axis {
	case AxisForward:
		return t.Forward()
	case AxisRight:
		return t.Right()
	case AxisUp:
		return t.Up()
	}
	panic("unknown camera axis " + axis.String())
}

// TranslateLocal moves the position along one of the current local axes.
// The caller has already scaled amount by speed and elapsed time.
func (t *RigidTransform) TranslateLocal(axis Axis, amount float32) {
	if amount == 0 {
		return
	}
	t.Position = t.Position.Add(t.AxisVector(axis).Mul(amount))
}

// RotateLocal applies pitch about the local X axis, then yaw about Y.
func (t *RigidTransform) RotateLocal(pitchDelta, yawDelta float32) {
	if pitchDelta != 0 {
		t.Pitch = mgl32.Clamp(t.Pitch+pitchDelta, -MaxPitch, MaxPitch)
	}
	if yawDelta != 0 {
		t.Yaw += yawDelta
	}
}
