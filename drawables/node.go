// drawables/node.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package drawables provides concrete drawables for a block.Block:
// vertex-colored polygons, sprite-sheet backed images, and drawables that
// issue their own GL calls.
package drawables

import (
	"github.com/glscene/glblock/block"
)

// node holds the state common to all of the drawables: which block they
// are in, and their visibility and lifetime.
type node struct {
	self     block.Drawable
	block    *block.Block
	hidden   bool
	disposed bool
}

func (n *node) IsVisible() bool  { return !n.hidden }
func (n *node) IsDisposed() bool { return n.disposed }

// Block returns the block the drawable has been added to, or nil.
func (n *node) Block() *block.Block { return n.block }

func (n *node) OnAddToBlock(b *block.Block) {
	n.block = b
}

func (n *node) OnRemoveFromBlock(b *block.Block) {
	if n.block == b {
		n.block = nil
	}
}

func (n *node) SetVisible(visible bool) {
	if visible == !n.hidden {
		return
	}
	n.hidden = !visible
	n.invalidate()
}

// Dispose removes the drawable from its block; it may not be used
// afterward.
func (n *node) Dispose() {
	if n.block != nil {
		n.block.RemoveDrawable(n.self)
	}
	n.disposed = true
}

// invalidate asks the drawable's block to update and repaint it. Outside
// of a block, the drawable is updated right away.
func (n *node) invalidate() {
	switch {
	case n.disposed:
	case n.block != nil:
		n.block.MarkDirtyDrawable(n.self)
	default:
		n.self.Update()
	}
}
