package raymarch

import (
	"fmt"

	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/google/uuid"
)

type AssetId string

// AssetServer owns the CPU side of meshes and materials. It is only touched
// by the simulation schedule; extract copies what the renderer needs.
type AssetServer struct {
	meshes    map[AssetId]core.QuadMesh
	materials map[AssetId]RayMarchingMaterial
}

type AssetServerModule struct{}

// MeshHandle points an entity at a mesh asset.
type MeshHandle struct {
	Id AssetId
}

// RayMarchingMaterialHandle points an entity at a material asset.
type RayMarchingMaterialHandle struct {
	Id AssetId
}

func NewAssetServer() *AssetServer {
	return &AssetServer{
		meshes:    make(map[AssetId]core.QuadMesh),
		materials: make(map[AssetId]RayMarchingMaterial),
	}
}

func (server *AssetServer) AddMesh(mesh core.QuadMesh) MeshHandle {
	id := makeAssetId()
	server.meshes[id] = mesh
	return MeshHandle{Id: id}
}

func (server *AssetServer) AddRayMarchingMaterial(material RayMarchingMaterial) RayMarchingMaterialHandle {
	id := makeAssetId()
	server.materials[id] = material
	return RayMarchingMaterialHandle{Id: id}
}

func (server *AssetServer) Mesh(id AssetId) (core.QuadMesh, bool) {
	m, ok := server.meshes[id]
	return m, ok
}

func (server *AssetServer) Material(id AssetId) (RayMarchingMaterial, bool) {
	m, ok := server.materials[id]
	return m, ok
}

// SetMaterial replaces an existing material. The GPU copy is not re-uploaded.
func (server *AssetServer) SetMaterial(id AssetId, material RayMarchingMaterial) error {
	if _, ok := server.materials[id]; !ok {
		return fmt.Errorf("material %s not found", id)
	}
	server.materials[id] = material
	return nil
}

func (server *AssetServer) RemoveMaterial(id AssetId) {
	delete(server.materials, id)
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	ensureResource(app, NewAssetServer)
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
