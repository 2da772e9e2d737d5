// webgl/canvas.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package webgl

import "errors"

// ErrContextUnavailable is returned by Canvas.GetContext when no GL
// context could be created for the canvas.
var ErrContextUnavailable = errors.New("webgl: unable to create context")

// ContextEvent is delivered to context lost/restored listeners.
type ContextEvent interface {
	// PreventDefault must be called from the lost listener for the
	// context to be eligible for restoration.
	PreventDefault()
	DefaultPrevented() bool
}

// Canvas is a drawing surface that can provide a GL context: an HTML
// canvas element in the browser or a window on the desktop.
type Canvas interface {
	ID() string
	SetID(id string)

	// GetContext returns the canvas's context, creating it with the given
	// attributes the first time. Repeated calls return the same context
	// (after a restoration, the restored one).
	GetContext(attrs ContextAttributes) (Context, error)

	// SetPixelSize sets the size of the backing framebuffer.
	SetPixelSize(width, height int)
	// SetCSSSize sets the size at which the canvas is presented, in
	// display units.
	SetCSSSize(width, height float64)
	// ResetTransform clears any presentation transform left on the
	// canvas.
	ResetTransform()

	SetVisible(visible bool)
	Visible() bool

	// DevicePixelRatio is the ratio of physical pixels to display units.
	DevicePixelRatio() float64

	// AddContextListeners registers the callbacks for context loss and
	// restoration, replacing any registered before.
	AddContextListeners(lost, restored func(ContextEvent))
	RemoveContextListeners()

	Dispose()
}

// Host creates canvases and holds the ones currently attached to the
// page or window.
type Host interface {
	NewCanvas() (Canvas, error)
	Attach(c Canvas)
	Detach(c Canvas)
}

// Event is a ContextEvent for backends that synthesize their own events.
type Event struct {
	prevented bool
}

func (e *Event) PreventDefault()        { e.prevented = true }
func (e *Event) DefaultPrevented() bool { return e.prevented }
