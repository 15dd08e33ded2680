package raymarch

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyW int = iota
	KeyS
	KeyA
	KeyD
	KeyR
	KeyF
	KeyH
	KeyEscape
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	inputSlots
)

type InputModule struct{}

// Input is the raw keyboard and mouse state of the current cycle.
// MouseDeltaX/Y is the cursor movement since the previous cycle.
type Input struct {
	Pressed      [inputSlots]bool
	JustPressed  [inputSlots]bool
	JustReleased [inputSlots]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64

	cursorSeen bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate),
	)
}

// SetPressed records the state of one key or button for this cycle.
func (input *Input) SetPressed(key int, pressed bool) {
	input.JustPressed[key] = pressed && !input.Pressed[key]
	input.JustReleased[key] = !pressed && input.Pressed[key]
	input.Pressed[key] = pressed
}

// MoveCursor records the cursor position and derives the per-cycle delta.
// The first sample produces no delta.
func (input *Input) MoveCursor(x, y float64) {
	if input.cursorSeen {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX, input.MouseDeltaY = 0, 0
		input.cursorSeen = true
	}
	input.MouseX, input.MouseY = x, y
}

func inputSystem(s *WindowState, input *Input, cmd *Commands) {
	for key, glfwKey := range keyToGlfw {
		input.SetPressed(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.SetPressed(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}
	input.MoveCursor(s.windowGlfw.GetCursorPos())

	if input.JustPressed[KeyEscape] {
		cmd.Logger().Infof("Escape pressed, exiting")
		cmd.Exit()
	}
}

var keyToGlfw = map[int]glfw.Key{
	KeyW:      glfw.KeyW,
	KeyS:      glfw.KeyS,
	KeyA:      glfw.KeyA,
	KeyD:      glfw.KeyD,
	KeyR:      glfw.KeyR,
	KeyF:      glfw.KeyF,
	KeyH:      glfw.KeyH,
	KeyEscape: glfw.KeyEscape,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
