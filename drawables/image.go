// drawables/image.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package drawables

import (
	"image"

	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/sprites"
)

// Image draws an image, resampled to a given size, from one of its
// block's sprite sheets. The sprite is reserved when the image is added to
// a block and released when it is removed.
type Image struct {
	node

	img           image.Image
	width, height int
	transform     math.Matrix3
	alpha         float32
	backingScale  float64

	sprite   *sprites.Sprite
	err      error
	vertices []float32
}

// NewImage returns a drawable that draws img at width x height display
// units, with its upper-left corner at the origin.
func NewImage(img image.Image, width, height int) *Image {
	i := &Image{
		img:       img,
		width:     width,
		height:    height,
		transform: math.Identity3x3(),
		alpha:     1,
	}
	i.self = i
	return i
}

func (i *Image) Renderer() block.Renderer { return block.RendererTexturedTriangles }

func (i *Image) Sprite() *sprites.Sprite { return i.sprite }

// Err returns the reason the image could not be placed in a sprite
// sheet, if it could not.
func (i *Image) Err() error { return i.err }

func (i *Image) OnAddToBlock(b *block.Block) {
	i.node.OnAddToBlock(b)

	i.sprite, i.err = b.AddSpriteSheetImage(i.img, i.width, i.height)
	if i.err != nil {
		b.Logger().Warnf("image %dx%d: %v", i.width, i.height, i.err)
	}
	i.rebuild()
}

func (i *Image) OnRemoveFromBlock(b *block.Block) {
	b.RemoveSpriteSheetImage(i.sprite)
	i.sprite = nil
	i.vertices = nil
	i.node.OnRemoveFromBlock(b)
}

func (i *Image) Update() bool {
	i.rebuild()
	return true
}

func (i *Image) VertexArray() []float32 { return i.vertices }

// rebuild generates two triangles covering the image, with texture
// coordinates from its sprite.
func (i *Image) rebuild() {
	i.vertices = i.vertices[:0]
	if i.sprite == nil {
		return
	}

	bounds := math.Extent2D{P1: [2]float32{float32(i.width), float32(i.height)}}
	corners := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	for _, c := range []int{0, 1, 3, 1, 2, 3} {
		p := i.transform.TransformPoint(bounds.Lerp(corners[c]))
		uv := i.sprite.UVBounds.Lerp(corners[c])
		i.vertices = append(i.vertices, p[0], p[1], uv[0], uv[1], i.alpha)
	}
}

func (i *Image) SetTransform(m math.Matrix3) {
	i.transform = m
	i.invalidate()
}

// SetAlpha sets the opacity the image is drawn with, in [0,1].
func (i *Image) SetAlpha(alpha float32) {
	i.alpha = math.Clamp(alpha, 0, 1)
	i.invalidate()
}

// SetBackingScale asks for the block's backing scale to be multiplied by
// s, which is honored while the image is the block's only drawable. Zero
// clears the request.
func (i *Image) SetBackingScale(s float64) {
	i.backingScale = s
	i.invalidate()
}

func (i *Image) BackingScale() (float64, bool) {
	return i.backingScale, i.backingScale > 0
}

var (
	_ block.TexturedDrawable = (*Image)(nil)
	_ block.ScaledDrawable   = (*Image)(nil)
)
