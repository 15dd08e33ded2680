package raymarch

import (
	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent marks the entity whose rig drives the materials.
type CameraComponent struct{}

// CameraRig is the camera's rigid transform.
type CameraRig struct {
	core.RigidTransform
}

func NewCameraRig(position mgl32.Vec3) CameraRig {
	return CameraRig{RigidTransform: core.NewRigidTransform(position)}
}

// SpawnCamera queues a camera entity at position, looking down -Z.
func SpawnCamera(cmd *Commands, position mgl32.Vec3) EntityId {
	return cmd.AddEntity(CameraComponent{}, NewCameraRig(position))
}

// firstCamera returns the rig of the lowest camera entity id.
func firstCamera(cmd *Commands) (EntityId, CameraRig, bool) {
	var (
		id    EntityId
		rig   CameraRig
		found bool
	)
	MakeQuery2[CameraComponent, CameraRig](cmd).Map(func(eid EntityId, _ *CameraComponent, r *CameraRig) bool {
		id, rig, found = eid, *r, true
		return false
	})
	return id, rig, found
}
