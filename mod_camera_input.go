package raymarch

import (
	"github.com/gekko3d/raymarch/marchrt/rt/core"
)

const (
	defaultCameraSpeed     = 1.0
	defaultLookSensitivity = 0.1
)

// CameraControlModule moves every camera from keyboard and mouse input.
// W/S move along forward, D/A along right, R/F along up. Dragging with the
// right mouse button held turns the camera.
type CameraControlModule struct {
	Speed           float32
	LookSensitivity float32
}

// CameraControl holds the controller settings as a resource.
type CameraControl struct {
	Speed           float32
	LookSensitivity float32
}

// ControlState is the input of one controller tick.
type ControlState struct {
	Forward, Back bool
	Right, Left   bool
	Up, Down      bool

	Look   bool
	DragDX float32
	DragDY float32
}

func (m CameraControlModule) Install(app *App, cmd *Commands) {
	control := &CameraControl{Speed: m.Speed, LookSensitivity: m.LookSensitivity}
	if control.Speed == 0 {
		control.Speed = defaultCameraSpeed
	}
	if control.LookSensitivity == 0 {
		control.LookSensitivity = defaultLookSensitivity
	}
	cmd.AddResources(control)
	app.UseSystem(
		System(cameraControlSystem).
			InStage(Update),
	)
}

// ReadControlState samples the keys and the drag delta the controller uses.
func ReadControlState(input *Input) ControlState {
	return ControlState{
		Forward: input.Pressed[KeyW],
		Back:    input.Pressed[KeyS],
		Right:   input.Pressed[KeyD],
		Left:    input.Pressed[KeyA],
		Up:      input.Pressed[KeyR],
		Down:    input.Pressed[KeyF],
		Look:    input.Pressed[MouseButtonRight],
		DragDX:  float32(input.MouseDeltaX),
		DragDY:  float32(input.MouseDeltaY),
	}
}

// Apply moves rig by speed*dt along each axis whose key is held, then turns it
// when look is held. Drag deltas without look are dropped.
func (c CameraControl) Apply(rig *core.RigidTransform, state ControlState, dt float32) {
	step := c.Speed * dt
	moves := []struct {
		pressed bool
		axis    core.Axis
		sign    float32
	}{
		{state.Forward, core.AxisForward, 1},
		{state.Back, core.AxisForward, -1},
		{state.Right, core.AxisRight, 1},
		{state.Left, core.AxisRight, -1},
		{state.Up, core.AxisUp, 1},
		{state.Down, core.AxisUp, -1},
	}
	for _, mv := range moves {
		if mv.pressed {
			rig.TranslateLocal(mv.axis, mv.sign*step)
		}
	}

	if !state.Look {
		return
	}
	turn := c.LookSensitivity * dt
	rig.RotateLocal(-state.DragDY*turn, -state.DragDX*turn)
}

func cameraControlSystem(cmd *Commands, input *Input, time *Time, control *CameraControl) {
	dt := time.DeltaSeconds()
	if dt <= 0 {
		return
	}
	state := ReadControlState(input)

	MakeQuery2[CameraComponent, CameraRig](cmd).Map(func(eid EntityId, _ *CameraComponent, rig *CameraRig) bool {
		control.Apply(&rig.RigidTransform, state, dt)
		return true
	})
}
