// webgl/capturehost.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package webgl

import (
	"slices"
	"time"
)

// CaptureHost wraps a Host so that every context its canvases hand out is
// a tee Recorder in front of the real one. The calls made on all of them
// can then be saved with SaveCapture.
type CaptureHost struct {
	Host
	recorders []*Recorder
}

func NewCaptureHost(h Host) *CaptureHost {
	return &CaptureHost{Host: h}
}

func (h *CaptureHost) NewCanvas() (Canvas, error) {
	c, err := h.Host.NewCanvas()
	if err != nil {
		return nil, err
	}
	return &captureCanvas{Canvas: c, host: h}, nil
}

func (h *CaptureHost) Attach(c Canvas) {
	h.Host.Attach(unwrapCanvas(c))
}

func (h *CaptureHost) Detach(c Canvas) {
	h.Host.Detach(unwrapCanvas(c))
}

func unwrapCanvas(c Canvas) Canvas {
	if cc, ok := c.(*captureCanvas); ok {
		return cc.Canvas
	}
	return c
}

// Capture returns the calls recorded on all contexts so far, oldest
// context first.
func (h *CaptureHost) Capture() Capture {
	c := Capture{Version: CaptureVersion, Created: time.Now()}
	for i, r := range h.recorders {
		rc := r.Capture()
		if i == 0 {
			c.Attributes = rc.Attributes
		}
		c.Calls = append(c.Calls, rc.Calls...)
	}
	return c
}

// Recorders returns the recorders created so far, oldest first.
func (h *CaptureHost) Recorders() []*Recorder {
	return slices.Clone(h.recorders)
}

type captureCanvas struct {
	Canvas
	host *CaptureHost

	ctx Context
	rec *Recorder
}

func (c *captureCanvas) GetContext(attrs ContextAttributes) (Context, error) {
	ctx, err := c.Canvas.GetContext(attrs)
	if err != nil {
		return nil, err
	}
	if ctx != c.ctx {
		c.ctx = ctx
		c.rec = NewTeeRecorder(ctx)
		c.host.recorders = append(c.host.recorders, c.rec)
	}
	return c.rec, nil
}
