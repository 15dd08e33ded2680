package raymarch

import (
	"math"
)

// WindowResized is a framebuffer size change in pixels.
type WindowResized struct {
	Width  float32
	Height float32
}

// WindowEvents collects the window events of one cycle. They are cleared in
// Finale.
type WindowEvents struct {
	Resized []WindowResized
}

func useWindowEvents(app *App) *WindowEvents {
	events, created := ensureResource(app, func() *WindowEvents { return &WindowEvents{} })
	if created {
		app.UseSystem(
			System(clearWindowEventsSystem).
				InStage(Finale),
		)
	}
	return events
}

func clearWindowEventsSystem(events *WindowEvents) {
	events.Resized = events.Resized[:0]
}

// AspectRatio is the viewport width/height. It is always > 0.
type AspectRatio struct {
	Value float32
}

// OnResize recomputes the ratio. Degenerate sizes keep the previous value and
// report false.
func (a *AspectRatio) OnResize(width, height float32) bool {
	if !(width > 0) || !(height > 0) {
		return false
	}
	ratio := width / height
	if math.IsInf(float64(ratio), 0) || math.IsNaN(float64(ratio)) || ratio <= 0 {
		return false
	}
	a.Value = ratio
	return true
}

// Viewport is the last accepted framebuffer size.
type Viewport struct {
	Width  uint32
	Height uint32
}

// AspectRatioModule tracks the aspect ratio from window resize events.
// The initial size defaults to the window, or to a square.
type AspectRatioModule struct {
	Width  float32
	Height float32
}

func (m AspectRatioModule) Install(app *App, cmd *Commands) {
	width, height := m.Width, m.Height
	if width <= 0 || height <= 0 {
		if ws, ok := Resource[WindowState](app); ok {
			width, height = float32(ws.Width), float32(ws.Height)
		} else {
			width, height = defaultWindowWidth, defaultWindowHeight
		}
	}

	aspect := &AspectRatio{Value: 1}
	viewport := &Viewport{}
	if aspect.OnResize(width, height) {
		viewport.Width, viewport.Height = uint32(width), uint32(height)
	}

	useWindowEvents(app)
	cmd.AddResources(aspect, viewport)
	app.UseSystem(
		System(aspectRatioSystem).
			InStage(PreUpdate),
	)
}

func aspectRatioSystem(events *WindowEvents, aspect *AspectRatio, viewport *Viewport, cmd *Commands) {
	for _, ev := range events.Resized {
		if !aspect.OnResize(ev.Width, ev.Height) {
			cmd.Logger().Warnf("Ignoring resize to %vx%v, keeping aspect ratio %.4f", ev.Width, ev.Height, aspect.Value)
			continue
		}
		viewport.Width, viewport.Height = uint32(ev.Width), uint32(ev.Height)
		cmd.Logger().Debugf("Aspect ratio %.4f (%dx%d)", aspect.Value, viewport.Width, viewport.Height)
	}
}
