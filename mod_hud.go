package raymarch

import (
	"fmt"

	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
)

// Hud is the debug overlay state. H toggles it when input is installed.
type Hud struct {
	Visible bool
	Variant gpu.Variant
}

type HudModule struct {
	Visible bool
}

// Lines formats the overlay text for a snapshot.
func (h *Hud) Lines(s MaterialUniformSnapshot) []string {
	return []string{
		fmt.Sprintf("variant %v", h.Variant),
		fmt.Sprintf("pos %6.2f %6.2f %6.2f", s.Position[0], s.Position[1], s.Position[2]),
		fmt.Sprintf("fwd %6.2f %6.2f %6.2f", s.Forward[0], s.Forward[1], s.Forward[2]),
		fmt.Sprintf("aspect %.4f", s.AspectRatio),
	}
}

func (m HudModule) Install(app *App, cmd *Commands) {
	hud := &Hud{Visible: m.Visible}
	if pipeline, ok := Resource[RayMarchingPipeline](app); ok {
		hud.Variant = pipeline.Variant
	}
	cmd.AddResources(hud)

	if _, ok := Resource[Input](app); ok {
		app.UseSystem(
			System(hudToggleSystem).
				InStage(Update),
		)
	}
}

func hudToggleSystem(input *Input, hud *Hud) {
	if input.JustPressed[KeyH] {
		hud.Visible = !hud.Visible
	}
}
