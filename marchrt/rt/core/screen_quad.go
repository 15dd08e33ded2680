package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// QuadVertex is the vertex format of the screen quad. The struct tags drive
// the vertex buffer layout built by the renderer.
type QuadVertex struct {
	Position [3]float32 `gekko:"layout" location:"0" format:"float3"`
	Normal   [3]float32 `gekko:"layout" location:"1" format:"float3"`
	UV       [2]float32 `gekko:"layout" location:"2" format:"float2"`
}

// QuadMesh is an indexed triangle list.
type QuadMesh struct {
	Vertices [4]QuadVertex
	Indices  [6]uint32
}

func (m QuadMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the three vertex positions of triangle i.
func (m QuadMesh) Triangle(i int) [3]mgl32.Vec3 {
	var tri [3]mgl32.Vec3
	for k := 0; k < 3; k++ {
		tri[k] = mgl32.Vec3(m.Vertices[m.Indices[i*3+k]].Position)
	}
	return tri
}

// ScreenQuad spans [-Scale.X, Scale.X] x [-Scale.Y, Scale.Y] in clip space.
// A scale of (1, 1) covers the whole viewport.
type ScreenQuad struct {
	Scale mgl32.Vec2
}

func DefaultScreenQuad() ScreenQuad {
	return ScreenQuad{Scale: mgl32.Vec2{1, 1}}
}

func (q ScreenQuad) Build() QuadMesh {
	sx, sy := q.Scale.X(), q.Scale.Y()
	normal := [3]float32{0, 0, 1}
	return QuadMesh{
		Vertices: [4]QuadVertex{
			{Position: [3]float32{-sx, -sy, 0}, Normal: normal, UV: [2]float32{0, 0}},
			{Position: [3]float32{-sx, sy, 0}, Normal: normal, UV: [2]float32{0, 1}},
			{Position: [3]float32{sx, -sy, 0}, Normal: normal, UV: [2]float32{1, 0}},
			{Position: [3]float32{sx, sy, 0}, Normal: normal, UV: [2]float32{1, 1}},
		},
		// (0,2,1) and (2,3,1) are counter-clockwise seen from +Z.
		Indices: [6]uint32{0, 2, 1, 2, 3, 1},
	}
}
