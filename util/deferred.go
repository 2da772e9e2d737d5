// util/deferred.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

// DeferredQueue holds callbacks that should run "later" on the same
// goroutine that owns the queue, for example at the start of the next
// frame. GL state must only be touched from the thread that owns the
// context, so deferring to a timer goroutine is not an option.
type DeferredQueue struct {
	pending []func()
}

// Defer schedules fn to run at the next call to Run.
func (q *DeferredQueue) Defer(fn func()) {
	q.pending = append(q.pending, fn)
}

// Run calls the pending callbacks in the order they were deferred and
// returns how many ran. Callbacks deferred while Run is executing are
// held until the following call.
func (q *DeferredQueue) Run() int {
	p := q.pending
	q.pending = nil
	for _, fn := range p {
		fn()
	}
	return len(p)
}

func (q *DeferredQueue) Len() int {
	return len(q.pending)
}
