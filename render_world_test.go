package raymarch

import (
	"testing"

	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(cycle uint64, materials ...ExtractedMaterial) *RenderFrame {
	return &RenderFrame{Cycle: cycle, Materials: materials}
}

func testMaterial(id AssetId, variant gpu.Variant, position mgl32.Vec3, aspect float32) ExtractedMaterial {
	return ExtractedMaterial{
		Material: id,
		Asset:    NewRayMarchingMaterial(variant),
		Snapshot: SnapshotOf(core.NewRigidTransform(position), aspect),
	}
}

func TestFrameMailbox_LatestWins(t *testing.T) {
	m := NewFrameMailbox()
	assert.Nil(t, m.Take())

	m.Publish(testFrame(1))
	m.Publish(testFrame(2))

	select {
	case <-m.Ready():
	default:
		t.Fatal("expected a ready signal")
	}
	frame := m.Take()
	require.NotNil(t, frame)
	assert.Equal(t, uint64(2), frame.Cycle)
	assert.Nil(t, m.Take())

	select {
	case <-m.Ready():
		t.Fatal("two publishes must leave at most one signal")
	default:
	}
}

func TestSnapshotOf_Basis(t *testing.T) {
	s := SnapshotOf(core.NewRigidTransform(mgl32.Vec3{1, 2, 3}), 1.5)
	u := s.Uniform()

	assert.Equal(t, [3]float32{1, 2, 3}, u.Position)
	assert.Equal(t, [3]float32{0, 0, -1}, u.Forward)
	assert.Equal(t, [3]float32{1, 0, 0}, u.Horizontal)
	assert.Equal(t, [3]float32{0, 1, 0}, u.Vertical)
	assert.Equal(t, float32(1.5), u.AspectRatio)
}

func TestRenderWorld_PrepareSkipsMissingBinding(t *testing.T) {
	q := newRecordingQueue()
	world := NewRenderWorld(q, nil)

	bound := testMaterial("bound", gpu.VariantFull, mgl32.Vec3{0, 0, 5}, 1)
	world.SetBinding("bound", q.upload(bound))

	n := world.Prepare(testFrame(0, testMaterial("unbound", gpu.VariantFull, mgl32.Vec3{}, 1), bound))
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, q.writeCount())
	assert.Equal(t, "bound", q.lastWrite().label)

	assert.Zero(t, world.Prepare(nil))
}

func TestRenderWorld_PrepareWritesNonPositiveAspect(t *testing.T) {
	q := newRecordingQueue()
	world := NewRenderWorld(q, nil)
	m := testMaterial("m", gpu.VariantMinimal, mgl32.Vec3{}, -1)
	b := q.upload(m)
	world.SetBinding("m", b)

	world.Prepare(testFrame(0, m))

	assert.Equal(t, float32(-1), f32At(q.region(b), gpu.MinimalAspectRatioOffset))
}

func TestRenderWorld_Release(t *testing.T) {
	world := NewRenderWorld(newRecordingQueue(), nil)
	world.SetBinding("a", &gpu.UniformBinding{Label: "a"})

	world.Release()

	_, ok := world.Binding("a")
	assert.False(t, ok)
}
