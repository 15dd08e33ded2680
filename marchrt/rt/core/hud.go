package core

import (
	"image"
	"image/draw"
	"slices"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HudImage rasterizes a few lines of debug text into a single-channel image
// the quad shader blends over the ray-marched scene.
type HudImage struct {
	Image  *image.Alpha
	Face   font.Face
	Margin int

	lines []string
	drawn bool
}

func NewHudImage(width, height int) *HudImage {
	return &HudImage{
		Image:  image.NewAlpha(image.Rect(0, 0, width, height)),
		Face:   basicfont.Face7x13,
		Margin: 6,
	}
}

// SetLines redraws the image if the text changed and reports whether it did.
func (h *HudImage) SetLines(lines ...string) bool {
	if h.drawn && slices.Equal(h.lines, lines) {
		return false
	}
	h.lines = append(h.lines[:0], lines...)
	h.drawn = true

	draw.Draw(h.Image, h.Image.Bounds(), image.Transparent, image.Point{}, draw.Src)

	lineHeight := h.Face.Metrics().Height
	ascent := h.Face.Metrics().Ascent
	d := &font.Drawer{
		Dst:  h.Image,
		Src:  image.Opaque,
		Face: h.Face,
	}
	for i, line := range lines {
		d.Dot = fixed.Point26_6{
			X: fixed.I(h.Margin),
			Y: fixed.I(h.Margin) + ascent + lineHeight.Mul(fixed.I(i)),
		}
		d.DrawString(line)
	}
	return true
}

func (h *HudImage) Lines() []string {
	return h.lines
}

func (h *HudImage) Width() int  { return h.Image.Bounds().Dx() }
func (h *HudImage) Height() int { return h.Image.Bounds().Dy() }
