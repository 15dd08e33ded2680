package raymarch

import (
	"sync"
	"sync/atomic"

	"github.com/gekko3d/raymarch/marchrt/rt/core"
	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// MaterialUniformSnapshot is the camera state of one material for one render
// cycle. It is a value; later cycles produce new snapshots.
type MaterialUniformSnapshot struct {
	Position    mgl32.Vec3
	Forward     mgl32.Vec3
	Right       mgl32.Vec3
	Up          mgl32.Vec3
	AspectRatio float32
}

func SnapshotOf(rig core.RigidTransform, aspectRatio float32) MaterialUniformSnapshot {
	return MaterialUniformSnapshot{
		Position:    rig.Position,
		Forward:     rig.Forward(),
		Right:       rig.Right(),
		Up:          rig.Up(),
		AspectRatio: aspectRatio,
	}
}

// Uniform maps the snapshot onto the full uniform block. The minimal layout
// takes its aspect ratio from the same value.
func (s MaterialUniformSnapshot) Uniform() gpu.CameraUniform {
	return gpu.CameraUniform{
		Position:    s.Position,
		Forward:     s.Forward,
		Horizontal:  s.Right,
		Vertical:    s.Up,
		AspectRatio: s.AspectRatio,
	}
}

// ExtractedMaterial is everything the render side knows about one material
// entity in a frame.
type ExtractedMaterial struct {
	Entity   EntityId
	Material AssetId
	Asset    RayMarchingMaterial
	Mesh     AssetId
	MeshData core.QuadMesh
	Snapshot MaterialUniformSnapshot
}

// RenderFrame is produced by extract and never mutated afterwards.
type RenderFrame struct {
	Cycle     uint64
	Materials []ExtractedMaterial
	Viewport  Viewport
	HudLines  []string
}

// FrameMailbox hands the latest frame from extract to the render schedule.
// An unconsumed frame is replaced by the next one.
type FrameMailbox struct {
	latest atomic.Pointer[RenderFrame]
	ready  chan struct{}
}

func NewFrameMailbox() *FrameMailbox {
	return &FrameMailbox{ready: make(chan struct{}, 1)}
}

func (m *FrameMailbox) Publish(frame *RenderFrame) {
	m.latest.Store(frame)
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take returns the pending frame, or nil if there is none.
func (m *FrameMailbox) Take() *RenderFrame {
	return m.latest.Swap(nil)
}

func (m *FrameMailbox) Ready() <-chan struct{} {
	return m.ready
}

// RenderWorld holds the GPU bindings per material handle and turns frames
// into uniform writes.
type RenderWorld struct {
	Queue gpu.UniformQueue

	mu       sync.Mutex
	bindings map[AssetId]*gpu.UniformBinding
	logger   Logger
}

func NewRenderWorld(queue gpu.UniformQueue, logger Logger) *RenderWorld {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &RenderWorld{
		Queue:    queue,
		bindings: make(map[AssetId]*gpu.UniformBinding),
		logger:   logger,
	}
}

func (w *RenderWorld) SetBinding(id AssetId, binding *gpu.UniformBinding) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.bindings[id] = binding
}

func (w *RenderWorld) Binding(id AssetId) (*gpu.UniformBinding, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	b, ok := w.bindings[id]
	return b, ok
}

// Release frees every binding.
func (w *RenderWorld) Release() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, b := range w.bindings {
		b.Release()
		delete(w.bindings, id)
	}
}

// Prepare writes every material's snapshot into its binding and returns the
// number of writes. Materials without a binding yet are skipped.
func (w *RenderWorld) Prepare(frame *RenderFrame) int {
	if frame == nil {
		return 0
	}
	written := 0
	for _, m := range frame.Materials {
		binding, ok := w.Binding(m.Material)
		if !ok {
			w.logger.Debugf("Prepare cycle %d: no binding for material %s yet", frame.Cycle, m.Material)
			continue
		}
		layout := binding.Layout
		data := layout.Encode(m.Snapshot.Uniform())
		if err := w.Queue.WriteUniform(binding, layout.WriteOffset, data); err != nil {
			w.logger.Errorf("Prepare cycle %d: write %s: %v", frame.Cycle, binding.Label, err)
			continue
		}
		written++
	}
	return written
}
