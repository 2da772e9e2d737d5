// util/emitter.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"log/slog"
	"runtime"
)

// Emitter is a minimal synchronous pub/sub primitive: listeners are
// called in registration order on the goroutine that calls Emit.
type Emitter[T any] struct {
	listeners []*emitterListener[T]
}

type emitterListener[T any] struct {
	fn     func(T)
	source string
}

func (l *emitterListener[T]) LogValue() slog.Value {
	return slog.StringValue(l.source)
}

// AddListener registers fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (e *Emitter[T]) AddListener(fn func(T)) (remove func()) {
	// Record the callsite, which makes leaked listeners easier to track down.
	_, file, line, _ := runtime.Caller(1)
	l := &emitterListener[T]{fn: fn, source: fmt.Sprintf("%s:%d", file, line)}
	e.listeners = append(e.listeners, l)

	return func() {
		e.listeners, _ = DeleteAll(e.listeners, l)
	}
}

// Emit calls all of the listeners with v. Listeners added or removed
// during Emit take effect for the next call.
func (e *Emitter[T]) Emit(v T) {
	for _, l := range append([]*emitterListener[T](nil), e.listeners...) {
		l.fn(v)
	}
}

func (e *Emitter[T]) Len() int {
	return len(e.listeners)
}
