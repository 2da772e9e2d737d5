// drawables/custom.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package drawables

import (
	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/webgl"
)

// DrawFunc draws with ctx, given the matrix from display coordinates to
// normalized device coordinates, and returns the number of draw calls it
// made.
type DrawFunc func(ctx webgl.Context, projection math.Matrix3) int

// Custom is a drawable that issues its own GL calls.
type Custom struct {
	node
	draw DrawFunc
}

func NewCustom(draw DrawFunc) *Custom {
	c := &Custom{draw: draw}
	c.self = c
	return c
}

func (c *Custom) Renderer() block.Renderer { return block.RendererCustom }

func (c *Custom) Update() bool { return true }

func (c *Custom) Draw(ctx webgl.Context) int {
	if c.draw == nil || c.block == nil {
		return 0
	}
	return c.draw(ctx, c.block.ProjectionMatrix())
}

// Invalidate requests a repaint, for when what the function draws has
// changed.
func (c *Custom) Invalidate() {
	c.invalidate()
}

var _ block.CustomDrawable = (*Custom)(nil)
