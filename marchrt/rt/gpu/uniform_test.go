package gpu

import (
	"encoding/binary"
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func TestCameraUniform_GoLayoutMatchesShader(t *testing.T) {
	u := CameraUniform{}
	require.Equal(t, CameraUniformSize, u.Size())

	typ := reflect.TypeOf(u)
	offsets := map[string]uintptr{
		"Position":    CameraPositionOffset,
		"Forward":     CameraForwardOffset,
		"Horizontal":  CameraHorizontalOffset,
		"Vertical":    CameraVerticalOffset,
		"AspectRatio": CameraAspectRatioOffset,
	}
	for name, want := range offsets {
		field, ok := typ.FieldByName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, field.Offset, name)
	}
}

func TestMinimalUniform_GoLayoutMatchesShader(t *testing.T) {
	u := MinimalUniform{}
	require.Equal(t, MinimalUniformSize, u.Size())

	field, ok := reflect.TypeOf(u).FieldByName("AspectRatio")
	require.True(t, ok)
	assert.Equal(t, uintptr(MinimalAspectRatioOffset), field.Offset)
}

func TestCameraUniform_Marshal(t *testing.T) {
	u := CameraUniform{
		Position:    [3]float32{1, 2, 3},
		Forward:     [3]float32{0, 0, -1},
		Horizontal:  [3]float32{1, 0, 0},
		Vertical:    [3]float32{0, 1, 0},
		AspectRatio: 16.0 / 9.0,
	}
	buf := u.Marshal()
	require.Len(t, buf, CameraUniformSize)

	assert.Equal(t, float32(1), f32At(buf, 0))
	assert.Equal(t, float32(2), f32At(buf, 4))
	assert.Equal(t, float32(3), f32At(buf, 8))
	assert.Equal(t, float32(-1), f32At(buf, 24))
	assert.Equal(t, float32(1), f32At(buf, 32))
	assert.Equal(t, float32(1), f32At(buf, 52))
	assert.Equal(t, float32(16.0/9.0), f32At(buf, 60))

	// vec3 padding lanes
	for _, pad := range []int{12, 28, 44} {
		assert.Zero(t, binary.LittleEndian.Uint32(buf[pad:]), "pad at %d", pad)
	}
}

func TestMinimalUniform_Marshal(t *testing.T) {
	u := MinimalUniform{Position: [4]float32{0, 0, -5, 1}, AspectRatio: 1}
	buf := u.Marshal()
	require.Len(t, buf, MinimalUniformSize)

	assert.Equal(t, float32(-5), f32At(buf, 8))
	assert.Equal(t, float32(1), f32At(buf, 12))
	assert.Equal(t, float32(1), f32At(buf, 16))
	assert.Equal(t, make([]byte, 12), buf[20:])
}

func TestUniformLayout_Encode(t *testing.T) {
	u := CameraUniform{Position: [3]float32{4, 5, 6}, AspectRatio: 1.5}

	full := LayoutFor(VariantFull)
	assert.Equal(t, uint64(0), full.WriteOffset)
	assert.Equal(t, u.Marshal(), full.Encode(u))

	minimal := LayoutFor(VariantMinimal)
	assert.Equal(t, uint64(16), minimal.WriteOffset)
	data := minimal.Encode(u)
	require.Len(t, data, 4)
	assert.Equal(t, float32(1.5), f32At(data, 0))
}

func TestUniformLayout_EncodeKeepsNonPositiveAspect(t *testing.T) {
	for _, aspect := range []float32{0, -2} {
		for _, v := range []Variant{VariantFull, VariantMinimal} {
			l := LayoutFor(v)
			data := l.Encode(CameraUniform{AspectRatio: aspect})
			off := 0
			if v == VariantFull {
				off = CameraAspectRatioOffset
			}
			assert.Equal(t, aspect, f32At(data, off), "%v", v)
		}
	}
}

func TestUniformLayout_UnknownVariantPanics(t *testing.T) {
	assert.Panics(t, func() { LayoutFor(Variant(7)) })
	assert.Panics(t, func() { UniformLayout{Variant: Variant(7)}.Encode(CameraUniform{}) })
	assert.Panics(t, func() {
		// layout claims a size the encoder does not produce
		UniformLayout{Variant: VariantMinimal, WriteSize: 16}.Encode(CameraUniform{})
	})
}

func TestParseVariant(t *testing.T) {
	v, err := ParseVariant("minimal")
	require.NoError(t, err)
	assert.Equal(t, VariantMinimal, v)

	v, err = ParseVariant("")
	require.NoError(t, err)
	assert.Equal(t, VariantFull, v)

	_, err = ParseVariant("pbr")
	assert.Error(t, err)
}

func TestUniformBinding_CheckWrite(t *testing.T) {
	b := &UniformBinding{Label: "minimal", Layout: LayoutFor(VariantMinimal), Size: MinimalUniformSize}

	assert.NotPanics(t, func() { b.CheckWrite(16, 4) })
	// the fixed position field is off limits
	assert.Panics(t, func() { b.CheckWrite(0, 16) })
	assert.Panics(t, func() { b.CheckWrite(16, 8) })
	assert.Panics(t, func() { b.CheckWrite(30, 4) })

	full := &UniformBinding{Label: "full", Layout: LayoutFor(VariantFull), Size: CameraUniformSize}
	assert.NotPanics(t, func() { full.CheckWrite(0, 64) })
	assert.Panics(t, func() { full.CheckWrite(0, 68) })
}
