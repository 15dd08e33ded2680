package raymarch

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
	"github.com/gekko3d/raymarch/marchrt/rt/shaders"
)

const (
	hudWidth  = 320
	hudHeight = 80
)

// RendererModule draws the screen quad with the ray-marching pipeline into
// the window. It needs WindowModule and RayMarchingModule installed first.
type RendererModule struct {
	ClearColor wgpu.Color
}

// Renderer owns every GPU object. Draw runs on whichever goroutine runs the
// render schedule.
type Renderer struct {
	gpuState   *GpuState
	clearColor wgpu.Color

	pipelines map[gpu.Variant]*wgpu.RenderPipeline
	meshes    map[AssetId]*meshBuffers

	hud        *core.HudImage
	hudTexture *wgpu.Texture
	hudView    *wgpu.TextureView

	logger Logger
}

func (m RendererModule) Install(app *App, cmd *Commands) {
	window, ok := Resource[WindowState](app)
	if !ok {
		panic("RendererModule requires WindowModule")
	}
	pipeline, ok := Resource[RayMarchingPipeline](app)
	if !ok {
		panic("RendererModule requires RayMarchingModule")
	}

	clearColor := m.ClearColor
	if clearColor == (wgpu.Color{}) {
		clearColor = wgpu.Color{R: 0.3, G: 0.3, B: 0.3, A: 1}
	}

	gpuState := createGpuState(window)
	renderer := &Renderer{
		gpuState:   gpuState,
		clearColor: clearColor,
		pipelines:  make(map[gpu.Variant]*wgpu.RenderPipeline),
		meshes:     make(map[AssetId]*meshBuffers),
		hud:        core.NewHudImage(hudWidth, hudHeight),
		logger:     app.Logger(),
	}
	renderer.hudTexture, renderer.hudView = createHudTexture(hudWidth, hudHeight, gpuState)

	if err := pipeline.Schedule.AttachRenderer("wgpu", renderer); err != nil {
		app.Logger().Errorf("%v", err)
		panic(err)
	}
	pipeline.World.Queue = gpu.QueueWriter{Queue: gpuState.queue}
	cmd.AddResources(renderer)
}

func (r *Renderer) pipeline(variant gpu.Variant) *wgpu.RenderPipeline {
	if p, ok := r.pipelines[variant]; ok {
		return p
	}
	var code string
	switch variant {
	case gpu.VariantFull:
		code = shaders.RayMarchingFullWGSL
	case gpu.VariantMinimal:
		code = shaders.RayMarchingMinimalWGSL
	default:
		panic(fmt.Sprintf("no shader for %v", variant))
	}
	p := createRenderPipeline("ray marching "+variant.String(), code, core.QuadVertex{}, r.gpuState)
	r.pipelines[variant] = p
	return p
}

// upload creates the uniform binding of a material the first time it is
// drawn. Prepare skips the material until then.
func (r *Renderer) upload(m ExtractedMaterial, world *RenderWorld) (*gpu.UniformBinding, error) {
	if b, ok := world.Binding(m.Material); ok {
		return b, nil
	}
	layout := gpu.LayoutFor(m.Asset.Variant)
	label := fmt.Sprintf("material %s", m.Material)
	binding, err := gpu.NewUniformBinding(r.gpuState.device, label, layout, m.Asset.InitialContents())
	if err != nil {
		return nil, err
	}
	binding.BindGroup = createMaterialBindGroup(binding, r.hudView, r.pipeline(layout.Variant), r.gpuState.device)
	world.SetBinding(m.Material, binding)
	r.logger.Infof("Uploaded %v uniform region (%d bytes) for %s", layout.Variant, layout.RegionSize, m.Material)
	return binding, nil
}

func (r *Renderer) mesh(m ExtractedMaterial) *meshBuffers {
	if b, ok := r.meshes[m.Mesh]; ok {
		return b
	}
	b := createMeshBuffers(fmt.Sprintf("mesh %s", m.Mesh), m.MeshData, r.gpuState.device)
	r.meshes[m.Mesh] = b
	return b
}

func (r *Renderer) Draw(frame *RenderFrame, world *RenderWorld) error {
	if r.gpuState.resize(frame.Viewport.Width, frame.Viewport.Height) {
		r.logger.Debugf("Surface reconfigured to %dx%d", frame.Viewport.Width, frame.Viewport.Height)
	}
	if r.hud.SetLines(frame.HudLines...) {
		if err := writeHudTexture(r.hudTexture, r.hud, r.gpuState); err != nil {
			return fmt.Errorf("hud upload: %w", err)
		}
	}

	nextTexture, err := r.gpuState.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := r.gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: r.clearColor,
		}},
	})
	for _, m := range frame.Materials {
		binding, err := r.upload(m, world)
		if err != nil {
			r.logger.Errorf("Material %s: %v", m.Material, err)
			continue
		}
		mesh := r.mesh(m)
		pass.SetPipeline(r.pipeline(binding.Layout.Variant))
		pass.SetBindGroup(0, binding.BindGroup, nil)
		pass.SetVertexBuffer(0, mesh.vertex, 0, mesh.vertex.GetSize())
		pass.SetIndexBuffer(mesh.index, wgpu.IndexFormatUint32, 0, mesh.index.GetSize())
		pass.DrawIndexed(mesh.indexCount, 1, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass: %w", err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	r.gpuState.queue.Submit(cmdBuffer)
	r.gpuState.surface.Present()
	return nil
}

// Release frees the GPU objects. Bindings live in the RenderWorld and are
// released there.
func (r *Renderer) Release() {
	for id, b := range r.meshes {
		b.release()
		delete(r.meshes, id)
	}
	for v, p := range r.pipelines {
		p.Release()
		delete(r.pipelines, v)
	}
	r.hudView.Release()
	r.hudTexture.Release()
	r.gpuState.release()
}
