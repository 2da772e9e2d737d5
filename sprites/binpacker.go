// sprites/binpacker.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sprites

import (
	"fmt"
	"image"
)

// Bin is a rectangular region managed by a BinPacker. Bins form a binary
// tree: a split bin has two children that partition it, and only leaf
// bins are handed out.
type Bin struct {
	Bounds image.Rectangle

	parent   *Bin
	min, max *Bin
	split    bool
	used     bool
}

func (b *Bin) String() string {
	return fmt.Sprintf("Bin(%v used=%v split=%v)", b.Bounds, b.used, b.split)
}

func (b *Bin) findAvailable(width, height int) *Bin {
	if width > b.Bounds.Dx() || height > b.Bounds.Dy() {
		return nil
	}
	if !b.split {
		if b.used {
			return nil
		}
		return b
	}
	if r := b.min.findAvailable(width, height); r != nil {
		return r
	}
	return b.max.findAvailable(width, height)
}

// splitFor carves a width x height region out of the top-left corner of
// an unused leaf, splitting off the excess along x first and then along
// y, and marks the resulting leaf used.
func (b *Bin) splitFor(width, height int) *Bin {
	r := b.Bounds
	switch {
	case r.Dx() > width:
		b.divide(image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
			image.Rect(r.Min.X+width, r.Min.Y, r.Max.X, r.Max.Y))
		return b.min.splitFor(width, height)
	case r.Dy() > height:
		b.divide(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+height),
			image.Rect(r.Min.X, r.Min.Y+height, r.Max.X, r.Max.Y))
		return b.min.splitFor(width, height)
	default:
		b.used = true
		return b
	}
}

func (b *Bin) divide(lo, hi image.Rectangle) {
	b.split = true
	b.min = &Bin{Bounds: lo, parent: b}
	b.max = &Bin{Bounds: hi, parent: b}
}

func (b *Bin) isFree() bool {
	return !b.split && !b.used
}

// join collapses b if both of its children are free, and then tries the
// same with b's parent.
func (b *Bin) join() {
	for ; b != nil; b = b.parent {
		if !b.min.isFree() || !b.max.isFree() {
			return
		}
		b.split = false
		b.min, b.max = nil, nil
	}
}

// BinPacker allocates non-overlapping rectangles from a fixed area using
// guillotine cuts. Freed rectangles are merged back with their free
// siblings so that the space can be reused for larger requests.
type BinPacker struct {
	root *Bin
}

func NewBinPacker(bounds image.Rectangle) *BinPacker {
	return &BinPacker{root: &Bin{Bounds: bounds}}
}

func (p *BinPacker) Bounds() image.Rectangle {
	return p.root.Bounds
}

// Allocate returns a bin of exactly the requested size, or nil if no
// free region is large enough.
func (p *BinPacker) Allocate(width, height int) *Bin {
	if width <= 0 || height <= 0 {
		return nil
	}
	b := p.root.findAvailable(width, height)
	if b == nil {
		return nil
	}
	return b.splitFor(width, height)
}

// Deallocate returns a bin previously returned by Allocate to the pool.
func (p *BinPacker) Deallocate(b *Bin) {
	if !b.used {
		panic(fmt.Sprintf("sprites: deallocating unused bin %s", b))
	}
	b.used = false
	if b.parent != nil {
		b.parent.join()
	}
}

// Empty reports whether no bins are currently allocated.
func (p *BinPacker) Empty() bool {
	return p.root.isFree()
}
