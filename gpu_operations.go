package raymarch

import (
	"reflect"
	"strconv"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
)

type GpuState struct {
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration
}

func createGpuState(s *WindowState) *GpuState {
	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	surface := instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(s.windowGlfw))
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		panic(err)
	}
	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Ray Marching Device",
	})
	if err != nil {
		panic(err)
	}
	queue := device.GetQueue()

	caps := surface.GetCapabilities(adapter)
	surfaceConfig := wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(s.Width),
		Height:      uint32(s.Height),
		PresentMode: wgpu.PresentModeFifo, // vsync
		AlphaMode:   caps.AlphaModes[0],
	}
	surface.Configure(adapter, device, &surfaceConfig)

	return &GpuState{
		surface:       surface,
		adapter:       adapter,
		device:        device,
		queue:         queue,
		surfaceConfig: &surfaceConfig,
	}
}

// resize reconfigures the swapchain. Zero sizes are ignored.
func (g *GpuState) resize(width, height uint32) bool {
	if width == 0 || height == 0 {
		return false
	}
	if g.surfaceConfig.Width == width && g.surfaceConfig.Height == height {
		return false
	}
	g.surfaceConfig.Width = width
	g.surfaceConfig.Height = height
	g.surface.Configure(g.adapter, g.device, g.surfaceConfig)
	return true
}

func (g *GpuState) release() {
	g.surface.Release()
	g.queue.Release()
	g.device.Release()
	g.adapter.Release()
}

func createRenderPipeline(name string, shaderCode string, vertexType any, gpuState *GpuState) *wgpu.RenderPipeline {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: name,
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{createVertexBufferLayout(vertexType)},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

// createVertexBufferLayout reads `gekko:"layout"` tags off a vertex struct.
// Untagged fields still advance the offset.
func createVertexBufferLayout(vertexType any) wgpu.VertexBufferLayout {
	t := reflect.TypeOf(vertexType)
	if t.Kind() != reflect.Struct {
		panic("Vertex must be a struct")
	}

	var attributes []wgpu.VertexAttribute
	var offset uint64 = 0

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if "layout" == field.Tag.Get("gekko") {
			location, err := strconv.Atoi(field.Tag.Get("location"))
			if nil != err {
				panic(err)
			}
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: uint32(location),
				Offset:         offset,
				Format:         parseFormat(field.Tag.Get("format")),
			})
		}

		offset += uint64(field.Type.Size())
	}

	return wgpu.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    wgpu.VertexStepModeVertex,
		Attributes:  attributes,
	}
}

func parseFormat(name string) wgpu.VertexFormat {
	switch name {
	case "float2":
		return wgpu.VertexFormatFloat32x2
	case "float3":
		return wgpu.VertexFormatFloat32x3
	case "float4":
		return wgpu.VertexFormatFloat32x4
	default:
		panic("unsupported vertex layout format: " + name)
	}
}

type meshBuffers struct {
	vertex     *wgpu.Buffer
	index      *wgpu.Buffer
	indexCount uint32
}

func createMeshBuffers(label string, mesh core.QuadMesh, device *wgpu.Device) *meshBuffers {
	vertexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " vertices",
		Contents: wgpu.ToBytes(mesh.Vertices[:]),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		panic(err)
	}
	indexBuf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label + " indices",
		Contents: wgpu.ToBytes(mesh.Indices[:]),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		panic(err)
	}
	return &meshBuffers{
		vertex:     vertexBuf,
		index:      indexBuf,
		indexCount: uint32(len(mesh.Indices)),
	}
}

func (b *meshBuffers) release() {
	b.vertex.Release()
	b.index.Release()
}

// createHudTexture allocates the single-channel overlay texture.
func createHudTexture(width, height uint32, gpuState *GpuState) (*wgpu.Texture, *wgpu.TextureView) {
	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "HUD",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	return texture, view
}

func writeHudTexture(texture *wgpu.Texture, hud *core.HudImage, gpuState *GpuState) error {
	extent := wgpu.Extent3D{
		Width:              uint32(hud.Width()),
		Height:             uint32(hud.Height()),
		DepthOrArrayLayers: 1,
	}
	return gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		hud.Image.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(hud.Image.Stride),
			RowsPerImage: extent.Height,
		},
		&extent,
	)
}

func createMaterialBindGroup(binding *gpu.UniformBinding, hudView *wgpu.TextureView, pipeline *wgpu.RenderPipeline, device *wgpu.Device) *wgpu.BindGroup {
	layout := pipeline.GetBindGroupLayout(0)
	defer layout.Release()

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  binding.Label,
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: binding.Buffer, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: hudView, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}
	return bindGroup
}
