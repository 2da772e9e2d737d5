// webgl/webgltest/webgltest.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package webgltest provides a scripted webgl.Host whose canvases hand out
// webgl.Recorder contexts, so that code driving a GL context can be tested
// without one, including through context loss and restoration.
package webgltest

import (
	"fmt"

	"github.com/glscene/glblock/webgl"
)

// Host is a webgl.Host for tests. Its fields may be changed between
// operations to script the environment.
type Host struct {
	// DevicePixelRatio is reported by canvases created from now on.
	DevicePixelRatio float64
	// Samples is the multisample count of new contexts.
	Samples int
	// FailContexts makes GetContext fail on canvases that do not have a
	// context yet.
	FailContexts bool
	// FailCanvases makes NewCanvas fail.
	FailCanvases bool
	// FailShaderCompile makes shader compilation fail on contexts created
	// from now on.
	FailShaderCompile bool

	Canvases []*Canvas
	Attached []*Canvas

	Attaches, Detaches int
}

func NewHost() *Host {
	return &Host{DevicePixelRatio: 1, Samples: 4}
}

func (h *Host) NewCanvas() (webgl.Canvas, error) {
	if h.FailCanvases {
		return nil, fmt.Errorf("webgltest: canvas creation disabled")
	}
	c := &Canvas{host: h, dpr: h.DevicePixelRatio, visible: true}
	h.Canvases = append(h.Canvases, c)
	return c, nil
}

func (h *Host) Attach(c webgl.Canvas) {
	h.Attaches++
	h.Attached = append(h.Attached, c.(*Canvas))
}

func (h *Host) Detach(c webgl.Canvas) {
	h.Detaches++
	for i, a := range h.Attached {
		if a == c {
			h.Attached = append(h.Attached[:i], h.Attached[i+1:]...)
			break
		}
	}
}

// Current returns the most recently attached canvas, or nil.
func (h *Host) Current() *Canvas {
	if len(h.Attached) == 0 {
		return nil
	}
	return h.Attached[len(h.Attached)-1]
}

// Canvas is the webgl.Canvas implementation handed out by Host.
type Canvas struct {
	host *Host
	id   string
	dpr  float64

	ctx *webgl.Recorder
	// Contexts holds every context the canvas has provided, oldest first.
	Contexts []*webgl.Recorder

	visible    bool
	restorable bool
	disposed   bool

	PixelSize       [2]int
	CSSSize         [2]float64
	TransformResets int

	onLost, onRestored func(webgl.ContextEvent)
}

func (c *Canvas) ID() string      { return c.id }
func (c *Canvas) SetID(id string) { c.id = id }

func (c *Canvas) GetContext(attrs webgl.ContextAttributes) (webgl.Context, error) {
	if c.ctx != nil {
		return c.ctx, nil
	}
	if c.host.FailContexts {
		return nil, webgl.ErrContextUnavailable
	}
	c.newContext(attrs)
	return c.ctx, nil
}

func (c *Canvas) newContext(attrs webgl.ContextAttributes) {
	c.ctx = webgl.NewRecorder(attrs)
	c.ctx.SampleCount = c.host.Samples
	c.ctx.FailShaderCompile = c.host.FailShaderCompile
	c.Contexts = append(c.Contexts, c.ctx)
}

// Recorder returns the canvas's current context, or nil if GetContext
// has not succeeded yet.
func (c *Canvas) Recorder() *webgl.Recorder {
	return c.ctx
}

func (c *Canvas) SetPixelSize(width, height int)   { c.PixelSize = [2]int{width, height} }
func (c *Canvas) SetCSSSize(width, height float64) { c.CSSSize = [2]float64{width, height} }
func (c *Canvas) ResetTransform()                  { c.TransformResets++ }
func (c *Canvas) SetVisible(visible bool)          { c.visible = visible }
func (c *Canvas) Visible() bool                    { return c.visible }
func (c *Canvas) DevicePixelRatio() float64        { return c.dpr }
func (c *Canvas) Disposed() bool                   { return c.disposed }

func (c *Canvas) AddContextListeners(lost, restored func(webgl.ContextEvent)) {
	c.onLost, c.onRestored = lost, restored
}

func (c *Canvas) RemoveContextListeners() {
	c.onLost, c.onRestored = nil, nil
}

// HasListeners reports whether context listeners are registered.
func (c *Canvas) HasListeners() bool {
	return c.onLost != nil || c.onRestored != nil
}

func (c *Canvas) Dispose() {
	c.RemoveContextListeners()
	c.disposed = true
}

// LoseContext marks the canvas's context lost and delivers the lost
// event. It returns the event so tests can check whether the listener
// asked for restoration.
func (c *Canvas) LoseContext() *webgl.Event {
	ev := &webgl.Event{}
	if c.ctx == nil {
		return ev
	}
	c.ctx.SetContextLost(true)
	if c.onLost != nil {
		c.onLost(ev)
	}
	c.restorable = ev.DefaultPrevented()
	return ev
}

// RestoreContext replaces the lost context with a fresh one and delivers
// the restored event. As in a browser, nothing happens unless the lost
// listener called PreventDefault.
func (c *Canvas) RestoreContext() bool {
	if c.ctx == nil || !c.ctx.IsContextLost() || !c.restorable {
		return false
	}
	c.newContext(c.ctx.Attributes())
	c.restorable = false
	if c.onRestored != nil {
		c.onRestored(&webgl.Event{})
	}
	return true
}

// Display is a fixed-size display for tests.
type Display struct {
	Width, Height float64
}

func (d *Display) Size() (float64, float64) {
	return d.Width, d.Height
}

var (
	_ webgl.Host   = (*Host)(nil)
	_ webgl.Canvas = (*Canvas)(nil)
)
