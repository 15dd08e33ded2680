package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/gekko3d/raymarch"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	width := flag.Int("width", 720, "Window width")
	height := flag.Int("height", 720, "Window height")
	variantName := flag.String("variant", "full", "Material variant: full or minimal")
	debug := flag.Bool("debug", false, "Enable debug logging")
	parallel := flag.Bool("parallel", false, "Run prepare and draw on their own goroutine")
	hud := flag.Bool("hud", false, "Show the debug overlay (toggle with H)")
	flag.Parse()

	variant, err := gpu.ParseVariant(*variantName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	app := raymarch.NewAppBuilder().
		UseModule(
			raymarch.LoggingModule{Prefix: "raymarch", Debug: *debug},
			raymarch.TimeModule{},
			raymarch.NewWindowModule(*width, *height, ""),
			raymarch.InputModule{},
			raymarch.AspectRatioModule{},
			raymarch.AssetServerModule{},
			raymarch.RayMarchingModule{Variant: variant, Parallel: *parallel, SpawnScene: true},
			raymarch.CameraControlModule{},
			raymarch.HudModule{Visible: *hud},
			raymarch.RendererModule{},
		).
		Build()

	window, _ := raymarch.Resource[raymarch.WindowState](app)
	renderer, _ := raymarch.Resource[raymarch.Renderer](app)
	pipeline, _ := raymarch.Resource[raymarch.RayMarchingPipeline](app)
	defer window.Destroy()

	var done chan error
	cancel := func() {}
	if *parallel {
		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() {
			done <- pipeline.Schedule.Run(ctx)
		}()
	}

	app.Run()

	cancel()
	if done != nil {
		if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
			app.Logger().Errorf("Render schedule: %v", err)
		}
	}
	pipeline.World.Release()
	renderer.Release()
}
