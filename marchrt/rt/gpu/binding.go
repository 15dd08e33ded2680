package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// UniformBinding is the GPU side of one material instance: a uniform buffer
// plus the bind group that exposes it to the shader.
type UniformBinding struct {
	Label     string
	Layout    UniformLayout
	Buffer    *wgpu.Buffer
	BindGroup *wgpu.BindGroup
	Size      uint64
}

// CheckWrite panics if [offset, offset+n) leaves the region or the sub-range
// the layout hands to the per-frame write.
func (b *UniformBinding) CheckWrite(offset uint64, n int) {
	end := offset + uint64(n)
	if end > b.Size {
		panic(fmt.Sprintf("uniform write [%d,%d) exceeds %q region of %d bytes", offset, end, b.Label, b.Size))
	}
	lo, hi := b.Layout.WriteOffset, b.Layout.WriteOffset+b.Layout.WriteSize
	if offset < lo || end > hi {
		panic(fmt.Sprintf("uniform write [%d,%d) outside %v camera range [%d,%d) of %q", offset, end, b.Layout.Variant, lo, hi, b.Label))
	}
}

func (b *UniformBinding) Release() {
	if b.BindGroup != nil {
		b.BindGroup.Release()
		b.BindGroup = nil
	}
	if b.Buffer != nil {
		b.Buffer.Release()
		b.Buffer = nil
	}
}

// UniformQueue enqueues buffer writes. A write is visible to the next
// submitted draw; nothing waits on it.
type UniformQueue interface {
	WriteUniform(binding *UniformBinding, offset uint64, data []byte) error
}

// QueueWriter sends uniform writes to a wgpu queue.
type QueueWriter struct {
	Queue *wgpu.Queue
}

func (w QueueWriter) WriteUniform(binding *UniformBinding, offset uint64, data []byte) error {
	binding.CheckWrite(offset, len(data))
	return w.Queue.WriteBuffer(binding.Buffer, offset, data)
}

// NewUniformBinding uploads the initial contents of a material's uniform
// region. The bind group is attached later by the pipeline that owns the
// layout.
func NewUniformBinding(device *wgpu.Device, label string, layout UniformLayout, contents []byte) (*UniformBinding, error) {
	if uint64(len(contents)) != layout.RegionSize {
		return nil, fmt.Errorf("%s: initial contents are %d bytes, %v region is %d", label, len(contents), layout.Variant, layout.RegionSize)
	}
	buf, err := device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: contents,
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	return &UniformBinding{
		Label:  label,
		Layout: layout,
		Buffer: buf,
		Size:   layout.RegionSize,
	}, nil
}
