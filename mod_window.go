package raymarch

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	defaultWindowWidth  = 720
	defaultWindowHeight = 720
	defaultWindowTitle  = "Ray Marching Scene"
)

// WindowState is the single GLFW window shared by input and the renderer.
type WindowState struct {
	windowGlfw *glfw.Window
	Width      int
	Height     int
	Title      string
}

// WindowModule opens the window and turns framebuffer resizes into
// WindowResized events. Install is a no-op if a window already exists.
type WindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewWindowModule(width, height int, title string) WindowModule {
	if width <= 0 {
		width = defaultWindowWidth
	}
	if height <= 0 {
		height = defaultWindowHeight
	}
	if title == "" {
		title = defaultWindowTitle
	}
	return WindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m WindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}
	m = NewWindowModule(m.Width, m.Height, m.Title)

	ws := createWindowState(m.Width, m.Height, m.Title)
	app.addResources(ws)
	events := useWindowEvents(app)

	ws.windowGlfw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		ws.Width, ws.Height = width, height
		events.Resized = append(events.Resized, WindowResized{
			Width:  float32(width),
			Height: float32(height),
		})
	})

	app.UseSystem(
		System(windowEventsSystem).
			InStage(Prelude),
	)
	app.Logger().Infof("Window %q %dx%d", m.Title, m.Width, m.Height)
}

func createWindowState(width int, height int, title string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI) // surface comes from wgpu, not OpenGL
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		panic(err)
	}

	return &WindowState{
		windowGlfw: win,
		Width:      width,
		Height:     height,
		Title:      title,
	}
}

// Destroy closes the window and terminates GLFW.
func (s *WindowState) Destroy() {
	if s.windowGlfw != nil {
		s.windowGlfw.Destroy()
		s.windowGlfw = nil
	}
	glfw.Terminate()
}

func windowEventsSystem(s *WindowState, cmd *Commands) {
	glfw.PollEvents()
	if s.windowGlfw.ShouldClose() {
		cmd.Exit()
	}
}
