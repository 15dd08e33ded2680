package raymarch

import (
	"fmt"

	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// RayMarchingMaterial is the CPU copy of a material's uniform block. Only
// the initial contents come from here; the camera fields are rewritten every
// cycle from the camera rig.
type RayMarchingMaterial struct {
	Variant     gpu.Variant
	Position    mgl32.Vec4
	AspectRatio float32
}

// NewRayMarchingMaterial returns the default material for variant. The
// minimal variant keeps its ray origin at (0,0,-5).
func NewRayMarchingMaterial(variant gpu.Variant) RayMarchingMaterial {
	switch variant {
	case gpu.VariantMinimal:
		return RayMarchingMaterial{
			Variant:     gpu.VariantMinimal,
			Position:    mgl32.Vec4{0, 0, -5, 1},
			AspectRatio: 1,
		}
	default:
		return RayMarchingMaterial{
			Variant:     variant,
			AspectRatio: 1,
		}
	}
}

// InitialContents is the whole uniform region uploaded when the binding is
// created.
func (m RayMarchingMaterial) InitialContents() []byte {
	switch m.Variant {
	case gpu.VariantFull:
		u := gpu.CameraUniform{
			Position:    m.Position.Vec3(),
			Forward:     [3]float32{0, 0, -1},
			Horizontal:  [3]float32{1, 0, 0},
			Vertical:    [3]float32{0, 1, 0},
			AspectRatio: m.AspectRatio,
		}
		return u.Marshal()
	case gpu.VariantMinimal:
		u := gpu.MinimalUniform{
			Position:    m.Position,
			AspectRatio: m.AspectRatio,
		}
		return u.Marshal()
	}
	panic(fmt.Sprintf("no initial contents for %v", m.Variant))
}

// RayMarchingModule wires the camera-to-uniform pipeline: extract at the
// end of the simulation cycle, then prepare and render. With Parallel set
// the prepare/render half is left to RenderSchedule.Run.
type RayMarchingModule struct {
	Variant  gpu.Variant
	Parallel bool
	// SpawnScene adds the screen quad, one material and a camera at (0,0,5).
	SpawnScene bool
}

// RayMarchingPipeline is the resource shared by the pipeline systems and
// the renderer.
type RayMarchingPipeline struct {
	Variant  gpu.Variant
	Parallel bool
	Mailbox  *FrameMailbox
	World    *RenderWorld
	Schedule *RenderSchedule
}

func (m RayMarchingModule) Install(app *App, cmd *Commands) {
	assets, _ := ensureResource(app, NewAssetServer)

	mailbox := NewFrameMailbox()
	world := NewRenderWorld(nil, app.Logger())
	pipeline := &RayMarchingPipeline{
		Variant:  m.Variant,
		Parallel: m.Parallel,
		Mailbox:  mailbox,
		World:    world,
		Schedule: NewRenderSchedule(mailbox, world, app.Logger()),
	}
	cmd.AddResources(pipeline)

	app.UseSystem(
		System(extractSystem).
			InStage(Extract),
	)
	if !m.Parallel {
		app.UseSystem(
			System(prepareSystem).
				InStage(Prepare),
		)
		app.UseSystem(
			System(renderSystem).
				InStage(Render),
		)
	}

	if m.SpawnScene {
		SpawnRayMarchingScene(cmd, assets, m.Variant)
	}
	app.Logger().Infof("Ray marching pipeline: variant=%v parallel=%v", m.Variant, m.Parallel)
}

// SpawnRayMarchingScene queues the screen quad entity and a camera.
func SpawnRayMarchingScene(cmd *Commands, assets *AssetServer, variant gpu.Variant) (quad EntityId, camera EntityId) {
	mesh := assets.AddMesh(core.DefaultScreenQuad().Build())
	material := assets.AddRayMarchingMaterial(NewRayMarchingMaterial(variant))
	quad = cmd.AddEntity(mesh, material)
	camera = SpawnCamera(cmd, mgl32.Vec3{0, 0, 5})
	return quad, camera
}

// ExtractFrame copies the camera rig and aspect ratio into one snapshot per
// material entity. Materials without a camera use a rig at the origin.
func ExtractFrame(cmd *Commands, assets *AssetServer) *RenderFrame {
	frame := &RenderFrame{Cycle: cmd.app.Cycle()}

	aspect := float32(1)
	if a, ok := Resource[AspectRatio](cmd.app); ok {
		aspect = a.Value
	}
	if v, ok := Resource[Viewport](cmd.app); ok {
		frame.Viewport = *v
	}

	rig := core.NewRigidTransform(mgl32.Vec3{})
	if _, camera, ok := firstCamera(cmd); ok {
		rig = camera.RigidTransform
	}
	snapshot := SnapshotOf(rig, aspect)

	MakeQuery2[RayMarchingMaterialHandle, MeshHandle](cmd).Map(func(eid EntityId, mat *RayMarchingMaterialHandle, mesh *MeshHandle) bool {
		asset, ok := assets.Material(mat.Id)
		if !ok {
			cmd.Logger().Debugf("Extract: entity %d has no material asset %s", eid, mat.Id)
			return true
		}
		meshData, _ := assets.Mesh(mesh.Id)
		frame.Materials = append(frame.Materials, ExtractedMaterial{
			Entity:   eid,
			Material: mat.Id,
			Asset:    asset,
			Mesh:     mesh.Id,
			MeshData: meshData,
			Snapshot: snapshot,
		})
		return true
	})

	if hud, ok := Resource[Hud](cmd.app); ok && hud.Visible {
		frame.HudLines = hud.Lines(snapshot)
	}
	return frame
}

func extractSystem(cmd *Commands, assets *AssetServer, pipeline *RayMarchingPipeline) {
	pipeline.Mailbox.Publish(ExtractFrame(cmd, assets))
}

func prepareSystem(pipeline *RayMarchingPipeline) {
	pipeline.Schedule.Prepare()
}

func renderSystem(pipeline *RayMarchingPipeline) {
	pipeline.Schedule.Draw()
}
