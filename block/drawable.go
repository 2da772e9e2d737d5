// block/drawable.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"fmt"

	"github.com/glscene/glblock/sprites"
	"github.com/glscene/glblock/webgl"
)

// Renderer identifies the processor that draws a drawable.
type Renderer int

const (
	// RendererCustom drawables issue their own GL calls.
	RendererCustom Renderer = iota
	// RendererTexturedTriangles drawables provide triangles with 5 floats
	// per vertex: x, y, u, v, alpha.
	RendererTexturedTriangles
	// RendererVertexColorPolygons drawables provide triangles with 6
	// floats per vertex: x, y, r, g, b, a.
	RendererVertexColorPolygons
)

func (r Renderer) String() string {
	switch r {
	case RendererCustom:
		return "custom"
	case RendererTexturedTriangles:
		return "textured-triangles"
	case RendererVertexColorPolygons:
		return "vertex-color-polygons"
	default:
		return fmt.Sprintf("Renderer(%d)", int(r))
	}
}

// Drawable is a renderable unit assigned to a Block. Its renderer must not
// change while it is in a block.
type Drawable interface {
	Renderer() Renderer
	IsVisible() bool
	IsDisposed() bool

	// Update brings the drawable's GL-facing data up to date; it is called
	// by the block for drawables marked dirty. The return value reports
	// whether anything changed.
	Update() bool

	OnAddToBlock(b *Block)
	OnRemoveFromBlock(b *Block)
}

// VertexDrawable is implemented by drawables drawn by the batching
// processors. The length of the array is a multiple of the renderer's
// vertex stride.
type VertexDrawable interface {
	Drawable
	VertexArray() []float32
}

// TexturedDrawable is a VertexDrawable whose UVs refer to a sprite.
// Sprite returns nil while the image is not yet available; such
// drawables are skipped.
type TexturedDrawable interface {
	VertexDrawable
	Sprite() *sprites.Sprite
}

// CustomDrawable draws itself and returns the number of draw calls it
// issued.
type CustomDrawable interface {
	Drawable
	Draw(ctx webgl.Context) int
}

// ScaledDrawable may be implemented by a drawable that wants the block to
// render at a different backing scale. The request is honored only when
// the drawable is the only one in its block.
type ScaledDrawable interface {
	Drawable
	// BackingScale returns the multiplier to apply to the block's base
	// backing scale and whether an override is requested at all.
	BackingScale() (float64, bool)
}

// Display is the surface a block fills.
type Display interface {
	// Size returns the display size in display units (CSS pixels).
	Size() (width, height float64)
}
