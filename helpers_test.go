package raymarch

import (
	"encoding/binary"
	"math"
	"sync"
	"time"

	"github.com/gekko3d/raymarch/marchrt/rt/gpu"
)

type recordedWrite struct {
	label  string
	offset uint64
	data   []byte
}

// recordingQueue mirrors every uniform region in memory.
type recordingQueue struct {
	mu      sync.Mutex
	regions map[*gpu.UniformBinding][]byte
	writes  []recordedWrite
}

func newRecordingQueue() *recordingQueue {
	return &recordingQueue{regions: make(map[*gpu.UniformBinding][]byte)}
}

func (q *recordingQueue) WriteUniform(binding *gpu.UniformBinding, offset uint64, data []byte) error {
	binding.CheckWrite(offset, len(data))
	q.mu.Lock()
	defer q.mu.Unlock()
	copy(q.regions[binding][offset:], data)
	q.writes = append(q.writes, recordedWrite{
		label:  binding.Label,
		offset: offset,
		data:   append([]byte(nil), data...),
	})
	return nil
}

// upload creates a binding the way the wgpu renderer does.
func (q *recordingQueue) upload(m ExtractedMaterial) *gpu.UniformBinding {
	layout := gpu.LayoutFor(m.Asset.Variant)
	b := &gpu.UniformBinding{Label: string(m.Material), Layout: layout, Size: layout.RegionSize}
	q.mu.Lock()
	q.regions[b] = m.Asset.InitialContents()
	q.mu.Unlock()
	return b
}

func (q *recordingQueue) region(b *gpu.UniformBinding) []byte {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]byte(nil), q.regions[b]...)
}

func (q *recordingQueue) writeCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.writes)
}

func (q *recordingQueue) lastWrite() recordedWrite {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.writes[len(q.writes)-1]
}

// uploadingRenderer stands in for the wgpu renderer: it uploads unseen
// materials and counts draws.
type uploadingRenderer struct {
	queue *recordingQueue

	mu    sync.Mutex
	draws int
}

func (r *uploadingRenderer) Draw(frame *RenderFrame, world *RenderWorld) error {
	for _, m := range frame.Materials {
		if _, ok := world.Binding(m.Material); !ok {
			world.SetBinding(m.Material, r.queue.upload(m))
		}
	}
	r.mu.Lock()
	r.draws++
	r.mu.Unlock()
	return nil
}

func (r *uploadingRenderer) drawCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.draws
}

type testScene struct {
	app      *App
	input    *Input
	events   *WindowEvents
	pipeline *RayMarchingPipeline
	assets   *AssetServer
	queue    *recordingQueue
	renderer *uploadingRenderer
}

// newTestScene builds a headless app: fixed half-second steps, a 720x720
// viewport, the default scene and a recording queue in place of the GPU.
func newTestScene(variant gpu.Variant, parallel bool) *testScene {
	app := NewAppBuilder().
		UseModule(
			TimeModule{Fixed: 500 * time.Millisecond},
			AspectRatioModule{Width: 720, Height: 720},
			AssetServerModule{},
			RayMarchingModule{Variant: variant, Parallel: parallel, SpawnScene: true},
			CameraControlModule{},
		).
		Build()

	s := &testScene{app: app, input: &Input{}, queue: newRecordingQueue()}
	app.addResources(s.input)
	s.events, _ = Resource[WindowEvents](app)
	s.pipeline, _ = Resource[RayMarchingPipeline](app)
	s.assets, _ = Resource[AssetServer](app)
	s.renderer = &uploadingRenderer{queue: s.queue}
	s.pipeline.World.Queue = s.queue
	if err := s.pipeline.Schedule.AttachRenderer("recording", s.renderer); err != nil {
		panic(err)
	}
	return s
}

func (s *testScene) camera() *CameraRig {
	var rig *CameraRig
	MakeQuery2[CameraComponent, CameraRig](s.app.Commands()).Map(func(_ EntityId, _ *CameraComponent, r *CameraRig) bool {
		rig = r
		return false
	})
	return rig
}

func (s *testScene) materialBinding() *gpu.UniformBinding {
	var b *gpu.UniformBinding
	MakeQuery1[RayMarchingMaterialHandle](s.app.Commands()).Map(func(_ EntityId, h *RayMarchingMaterialHandle) bool {
		b, _ = s.pipeline.World.Binding(h.Id)
		return false
	})
	return b
}

func (s *testScene) resize(width, height float32) {
	s.events.Resized = append(s.events.Resized, WindowResized{Width: width, Height: height})
}

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

// changedWords lists the offsets of 4-byte words that differ between a and b.
func changedWords(a, b []byte) []int {
	var words []int
	for i := 0; i+4 <= len(a); i += 4 {
		if binary.LittleEndian.Uint32(a[i:]) != binary.LittleEndian.Uint32(b[i:]) {
			words = append(words, i)
		}
	}
	return words
}
