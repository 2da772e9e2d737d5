// block/list.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"container/list"
	"iter"
)

// drawableList is the ordered sequence of a block's drawables. Drawables
// themselves carry no links; the index gives O(1) removal and
// membership tests.
type drawableList struct {
	l     list.List
	index map[Drawable]*list.Element
}

func (dl *drawableList) init() {
	dl.l.Init()
	dl.index = make(map[Drawable]*list.Element)
}

func (dl *drawableList) contains(d Drawable) bool {
	_, ok := dl.index[d]
	return ok
}

func (dl *drawableList) pushBack(d Drawable) {
	dl.index[d] = dl.l.PushBack(d)
}

// insertBefore inserts d before mark, or at the end if mark is nil or not
// in the list.
func (dl *drawableList) insertBefore(d, mark Drawable) {
	if e, ok := dl.index[mark]; ok && mark != nil {
		dl.index[d] = dl.l.InsertBefore(d, e)
	} else {
		dl.pushBack(d)
	}
}

func (dl *drawableList) remove(d Drawable) bool {
	e, ok := dl.index[d]
	if !ok {
		return false
	}
	dl.l.Remove(e)
	delete(dl.index, d)
	return true
}

func (dl *drawableList) first() Drawable {
	if e := dl.l.Front(); e != nil {
		return e.Value.(Drawable)
	}
	return nil
}

func (dl *drawableList) last() Drawable {
	if e := dl.l.Back(); e != nil {
		return e.Value.(Drawable)
	}
	return nil
}

func (dl *drawableList) len() int {
	return dl.l.Len()
}

// all iterates over the drawables from first to last. The drawable
// being visited may be removed during iteration.
func (dl *drawableList) all() iter.Seq[Drawable] {
	return func(yield func(Drawable) bool) {
		for e := dl.l.Front(); e != nil; {
			next := e.Next()
			if !yield(e.Value.(Drawable)) {
				return
			}
			e = next
		}
	}
}
