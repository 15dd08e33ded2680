package raymarch

import (
	"testing"

	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRayMarchingMaterial_Defaults(t *testing.T) {
	minimal := NewRayMarchingMaterial(gpu.VariantMinimal)
	buf := minimal.InitialContents()
	require.Len(t, buf, gpu.MinimalUniformSize)
	assert.Equal(t, float32(-5), f32At(buf, 8))
	assert.Equal(t, float32(1), f32At(buf, 12))
	assert.Equal(t, float32(1), f32At(buf, gpu.MinimalAspectRatioOffset))

	full := NewRayMarchingMaterial(gpu.VariantFull)
	buf = full.InitialContents()
	require.Len(t, buf, gpu.CameraUniformSize)
	assert.Equal(t, float32(-1), f32At(buf, gpu.CameraForwardOffset+8))
	assert.Equal(t, float32(1), f32At(buf, gpu.CameraHorizontalOffset))
	assert.Equal(t, float32(1), f32At(buf, gpu.CameraVerticalOffset+4))
	assert.Equal(t, float32(1), f32At(buf, gpu.CameraAspectRatioOffset))

	assert.Panics(t, func() { RayMarchingMaterial{Variant: gpu.Variant(9)}.InitialContents() })
}

func TestPipeline_FirstCycleHasNoBinding(t *testing.T) {
	s := newTestScene(gpu.VariantFull, false)

	s.app.Tick()
	assert.Zero(t, s.queue.writeCount(), "binding is uploaded by the first draw")
	require.NotNil(t, s.materialBinding())
	assert.Equal(t, 1, s.renderer.drawCount())

	s.app.Tick()
	assert.Equal(t, 1, s.queue.writeCount())
	assert.Equal(t, uint64(0), s.queue.lastWrite().offset)
	assert.Len(t, s.queue.lastWrite().data, gpu.CameraUniformSize)
}

func TestPipeline_EndToEnd(t *testing.T) {
	s := newTestScene(gpu.VariantFull, false)
	s.app.Tick()
	require.Equal(t, mgl32.Vec3{0, 0, 5}, s.camera().Position)

	// 4 x 0.5s forward at speed 1
	s.input.SetPressed(KeyW, true)
	for i := 0; i < 4; i++ {
		s.app.Tick()
	}
	s.input.SetPressed(KeyW, false)

	pos := s.camera().Position
	assert.InDelta(t, 0, pos.X(), 1e-5)
	assert.InDelta(t, 0, pos.Y(), 1e-5)
	assert.InDelta(t, 3, pos.Z(), 1e-5)

	binding := s.materialBinding()
	region := s.queue.region(binding)
	assert.InDelta(t, 3, f32At(region, gpu.CameraPositionOffset+8), 1e-5)
	assert.Equal(t, float32(-1), f32At(region, gpu.CameraForwardOffset+8))
	assert.Equal(t, float32(1), f32At(region, gpu.CameraAspectRatioOffset))

	s.resize(800, 600)
	s.app.Tick()
	before := s.queue.region(binding)
	assert.InDelta(t, 800.0/600.0, f32At(before, gpu.CameraAspectRatioOffset), 1e-6)

	s.resize(1280, 720)
	s.app.Tick()
	after := s.queue.region(binding)
	assert.InDelta(t, 1280.0/720.0, f32At(after, gpu.CameraAspectRatioOffset), 1e-6)
	assert.Equal(t, []int{gpu.CameraAspectRatioOffset}, changedWords(before, after))
}

func TestPipeline_MinimalWritesOnlyAspect(t *testing.T) {
	s := newTestScene(gpu.VariantMinimal, false)
	s.app.Tick()
	binding := s.materialBinding()
	require.NotNil(t, binding)
	initial := s.queue.region(binding)

	s.input.SetPressed(KeyR, true)
	s.resize(800, 600)
	s.app.Tick()
	s.app.Tick()

	w := s.queue.lastWrite()
	assert.Equal(t, uint64(gpu.MinimalAspectRatioOffset), w.offset)
	assert.Len(t, w.data, 4)

	region := s.queue.region(binding)
	assert.Equal(t, []int{gpu.MinimalAspectRatioOffset}, changedWords(initial, region))
	assert.Equal(t, initial[:gpu.MinimalAspectRatioOffset], region[:gpu.MinimalAspectRatioOffset], "fixed position is untouched")
	assert.InDelta(t, 800.0/600.0, f32At(region, gpu.MinimalAspectRatioOffset), 1e-6)
}

func TestPipeline_DeterministicAcrossCycles(t *testing.T) {
	s := newTestScene(gpu.VariantFull, false)
	s.app.Tick()
	s.app.Tick()
	first := s.queue.lastWrite()

	for i := 0; i < 10; i++ {
		s.app.Tick()
		assert.Equal(t, first, s.queue.lastWrite())
	}
	assert.Equal(t, 11, s.queue.writeCount())
}

func TestPipeline_SnapshotIsolatedFromLaterMutation(t *testing.T) {
	s := newTestScene(gpu.VariantFull, false)
	s.app.Tick()

	frame := ExtractFrame(s.app.Commands(), s.assets)
	require.Len(t, frame.Materials, 1)

	// simulation moves on before prepare sees the frame
	s.camera().TranslateLocal(core.AxisForward, 100)
	s.camera().RotateLocal(0.3, 0.7)

	require.Equal(t, 1, s.pipeline.World.Prepare(frame))
	data := s.queue.lastWrite().data
	assert.Equal(t, float32(5), f32At(data, gpu.CameraPositionOffset+8))
	assert.Equal(t, float32(-1), f32At(data, gpu.CameraForwardOffset+8))
}

func TestPipeline_MultipleMaterialsGetOwnRegions(t *testing.T) {
	s := newTestScene(gpu.VariantFull, false)

	cmd := s.app.Commands()
	extra := s.assets.AddRayMarchingMaterial(NewRayMarchingMaterial(gpu.VariantMinimal))
	var quadMesh MeshHandle
	MakeQuery1[MeshHandle](cmd).Map(func(_ EntityId, h *MeshHandle) bool {
		quadMesh = *h
		return false
	})
	cmd.AddEntity(quadMesh, extra)
	s.app.FlushCommands()

	s.app.Tick()
	s.app.Tick()

	full := 0
	minimal := 0
	MakeQuery1[RayMarchingMaterialHandle](cmd).Map(func(_ EntityId, h *RayMarchingMaterialHandle) bool {
		b, ok := s.pipeline.World.Binding(h.Id)
		require.True(t, ok)
		switch b.Layout.Variant {
		case gpu.VariantFull:
			full++
			assert.Len(t, s.queue.region(b), gpu.CameraUniformSize)
		case gpu.VariantMinimal:
			minimal++
			assert.Len(t, s.queue.region(b), gpu.MinimalUniformSize)
		}
		return true
	})
	assert.Equal(t, 1, full)
	assert.Equal(t, 1, minimal)
	assert.Equal(t, 2, s.queue.writeCount())
}

func TestExtractFrame_WithoutCameraUsesOrigin(t *testing.T) {
	app := NewAppBuilder().UseModule(AssetServerModule{}).Build()
	assets, _ := Resource[AssetServer](app)
	cmd := app.Commands()
	mesh := assets.AddMesh(core.DefaultScreenQuad().Build())
	mat := assets.AddRayMarchingMaterial(NewRayMarchingMaterial(gpu.VariantFull))
	cmd.AddEntity(mesh, mat)
	app.FlushCommands()

	frame := ExtractFrame(cmd, assets)
	require.Len(t, frame.Materials, 1)
	assert.Equal(t, mgl32.Vec3{}, frame.Materials[0].Snapshot.Position)
	assert.Equal(t, float32(1), frame.Materials[0].Snapshot.AspectRatio)
	assert.Nil(t, frame.HudLines)
}
