package gpu

import (
	"encoding/binary"
	"fmt"
	"math"
	"unsafe"
)

// Variant selects which uniform block the ray-marching shader declares.
type Variant int

const (
	// VariantFull carries the whole camera basis, written at offset 0.
	VariantFull Variant = iota
	// VariantMinimal keeps a fixed position in the first 16 bytes and only
	// refreshes the aspect ratio at offset 16.
	VariantMinimal
)

func (v Variant) String() string {
	switch v {
	case VariantFull:
		return "full"
	case VariantMinimal:
		return "minimal"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

func ParseVariant(name string) (Variant, error) {
	switch name {
	case "full", "":
		return VariantFull, nil
	case "minimal":
		return VariantMinimal, nil
	}
	return 0, fmt.Errorf("unknown material variant %q", name)
}

// CameraUniform is the full-variant uniform block.
//
//	struct Camera {
//	  camera_position: vec3<f32>,   -- 0
//	  camera_forward: vec3<f32>,    -- 16
//	  camera_horizontal: vec3<f32>, -- 32
//	  camera_vertical: vec3<f32>,   -- 48
//	  aspect_ratio: f32,            -- 60 (tail of camera_vertical)
//	} -> 64 bytes
type CameraUniform struct {
	Position    [3]float32
	_           float32
	Forward     [3]float32
	_           float32
	Horizontal  [3]float32
	_           float32
	Vertical    [3]float32
	AspectRatio float32
}

const (
	CameraUniformSize        = 64
	CameraPositionOffset     = 0
	CameraForwardOffset      = 16
	CameraHorizontalOffset   = 32
	CameraVerticalOffset     = 48
	CameraAspectRatioOffset  = 60
	cameraUniformWriteOffset = 0
)

func (u *CameraUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

func (u *CameraUniform) Marshal() []byte {
	buf := make([]byte, CameraUniformSize)
	putVec3(buf, CameraPositionOffset, u.Position)
	putVec3(buf, CameraForwardOffset, u.Forward)
	putVec3(buf, CameraHorizontalOffset, u.Horizontal)
	putVec3(buf, CameraVerticalOffset, u.Vertical)
	binary.LittleEndian.PutUint32(buf[CameraAspectRatioOffset:], math.Float32bits(u.AspectRatio))
	return buf
}

// MinimalUniform is the minimal-variant uniform block.
//
//	struct Camera {
//	  position: vec4<f32>, -- 0
//	  aspect_ratio: f32,   -- 16
//	} -> 32 bytes
type MinimalUniform struct {
	Position    [4]float32
	AspectRatio float32
	_           [3]float32
}

const (
	MinimalUniformSize       = 32
	MinimalPositionOffset    = 0
	MinimalAspectRatioOffset = 16
)

func (u *MinimalUniform) Size() int {
	return int(unsafe.Sizeof(*u))
}

func (u *MinimalUniform) Marshal() []byte {
	buf := make([]byte, MinimalUniformSize)
	for i, v := range u.Position {
		binary.LittleEndian.PutUint32(buf[MinimalPositionOffset+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(buf[MinimalAspectRatioOffset:], math.Float32bits(u.AspectRatio))
	return buf
}

// UniformLayout describes the whole uniform region of a variant and the
// sub-range the per-frame camera write owns.
type UniformLayout struct {
	Variant     Variant
	RegionSize  uint64
	WriteOffset uint64
	WriteSize   uint64
}

func LayoutFor(variant Variant) UniformLayout {
	switch variant {
	case VariantFull:
		return UniformLayout{
			Variant:     VariantFull,
			RegionSize:  CameraUniformSize,
			WriteOffset: cameraUniformWriteOffset,
			WriteSize:   CameraUniformSize,
		}
	case VariantMinimal:
		return UniformLayout{
			Variant:     VariantMinimal,
			RegionSize:  MinimalUniformSize,
			WriteOffset: MinimalAspectRatioOffset,
			WriteSize:   4,
		}
	}
	panic(fmt.Sprintf("no uniform layout for %v", variant))
}

// Encode serializes the per-frame part of u for this layout. The result is
// exactly WriteSize bytes long and belongs at WriteOffset.
func (l UniformLayout) Encode(u CameraUniform) []byte {
	var data []byte
	switch l.Variant {
	case VariantFull:
		data = u.Marshal()
	case VariantMinimal:
		data = make([]byte, 4)
		binary.LittleEndian.PutUint32(data, math.Float32bits(u.AspectRatio))
	default:
		panic(fmt.Sprintf("no uniform encoder for %v", l.Variant))
	}
	if uint64(len(data)) != l.WriteSize {
		panic(fmt.Sprintf("uniform encoder for %v produced %d bytes, layout expects %d", l.Variant, len(data), l.WriteSize))
	}
	return data
}

func putVec3(buf []byte, offset int, v [3]float32) {
	for i := 0; i < 3; i++ {
		binary.LittleEndian.PutUint32(buf[offset+i*4:], math.Float32bits(v[i]))
	}
}
