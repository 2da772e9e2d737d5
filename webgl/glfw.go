// webgl/glfw.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package webgl

import (
	"fmt"
	gomath "math"
	"runtime"

	"github.com/glscene/glblock/log"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type GLFWConfig struct {
	Title      string
	WindowSize [2]int
	EnableMSAA bool
	VSync      bool
}

// GLFWHost is a Host backed by a single GLFW window with an OpenGL 2.1
// context. Every canvas it creates draws into that window; only the most
// recently attached, visible canvas is presented.
//
// Desktop OpenGL has no notion of context loss, so the host can simulate
// it with LoseContext and RestoreContext, which behave like the
// WEBGL_lose_context extension: the canvas's context goes dead, the lost
// listener fires, and a restoration hands the canvas a fresh context.
type GLFWHost struct {
	window   *glfw.Window
	config   GLFWConfig
	lg       *log.Logger
	attached []*glfwCanvas
	nextID   int
}

// NewGLFWHost initializes GLFW and opens the window. It must be called
// from the main thread.
func NewGLFWHost(config GLFWConfig, lg *log.Logger) (*GLFWHost, error) {
	lg.Info("Starting GLFW initialization")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize glfw: %w", err)
	}
	lg.Infof("GLFW: %s", glfw.GetVersionString())

	glfw.WindowHint(glfw.ContextVersionMajor, 2)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	if config.EnableMSAA {
		glfw.WindowHint(glfw.Samples, 4)
	}

	if config.WindowSize[0] == 0 || config.WindowSize[1] == 0 {
		vm := glfw.GetPrimaryMonitor().GetVideoMode()
		config.WindowSize = [2]int{vm.Width - 150, vm.Height - 150}
	}
	if config.Title == "" {
		config.Title = "glblock"
	}

	window, err := glfw.CreateWindow(config.WindowSize[0], config.WindowSize[1], config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	window.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	lg.Info("Finished GLFW initialization")

	return &GLFWHost{window: window, config: config, lg: lg}, nil
}

// Size returns the window size in screen coordinates; it lets the host
// serve as the display a block fills.
func (h *GLFWHost) Size() (float64, float64) {
	w, ht := h.window.GetSize()
	return float64(w), float64(ht)
}

func (h *GLFWHost) FramebufferSize() (int, int) {
	return h.window.GetFramebufferSize()
}

func (h *GLFWHost) DevicePixelRatio() float64 {
	if runtime.GOOS == "windows" {
		sx, sy := h.window.GetContentScale()
		return float64(sx+sy) / 2
	}
	fw, _ := h.window.GetFramebufferSize()
	ww, _ := h.window.GetSize()
	if ww == 0 {
		return 1
	}
	return float64(fw) / float64(ww)
}

func (h *GLFWHost) Window() *glfw.Window {
	return h.window
}

func (h *GLFWHost) ShouldClose() bool {
	return h.window.ShouldClose()
}

func (h *GLFWHost) PollEvents() {
	glfw.PollEvents()
}

// SwapBuffers presents the frame if the current canvas is visible. The
// back buffer's contents are undefined after a swap, so unless the
// context preserves its drawing buffer it is then cleared, as a browser
// clears a canvas after compositing it.
func (h *GLFWHost) SwapBuffers() {
	if c := h.current(); c != nil && c.visible {
		h.window.SwapBuffers()
		if c.ctx != nil {
			c.ctx.clearDrawingBuffer()
		}
	}
}

func (h *GLFWHost) current() *glfwCanvas {
	if len(h.attached) == 0 {
		return nil
	}
	return h.attached[len(h.attached)-1]
}

// LoseContext simulates the loss of the current canvas's context. It
// returns false if there is no live context to lose.
func (h *GLFWHost) LoseContext() bool {
	c := h.current()
	if c == nil || c.ctx == nil || c.ctx.lost {
		return false
	}
	h.lg.Info("simulating context loss", "canvas", c.id)
	c.ctx.lost = true
	ev := &Event{}
	if c.onLost != nil {
		c.onLost(ev)
	}
	c.restorable = ev.DefaultPrevented()
	return true
}

// RestoreContext restores a context previously lost with LoseContext.
// As with WebGL, restoration only happens if the lost listener called
// PreventDefault.
func (h *GLFWHost) RestoreContext() bool {
	c := h.current()
	if c == nil || c.ctx == nil || !c.ctx.lost || !c.restorable {
		return false
	}
	ctx, err := newGLContext(c.ctx.attrs, h.lg)
	if err != nil {
		h.lg.Errorf("%s: unable to restore context: %v", c.id, err)
		return false
	}
	h.lg.Info("simulating context restoration", "canvas", c.id)
	ctx.viewport = c.mapViewport
	c.ctx = ctx
	c.restorable = false
	if c.onRestored != nil {
		c.onRestored(&Event{})
	}
	return true
}

func (h *GLFWHost) NewCanvas() (Canvas, error) {
	h.nextID++
	return &glfwCanvas{
		host:    h,
		id:      fmt.Sprintf("glfw-canvas-%d", h.nextID),
		visible: true,
	}, nil
}

func (h *GLFWHost) Attach(c Canvas) {
	if gc, ok := c.(*glfwCanvas); ok {
		h.Detach(gc)
		h.attached = append(h.attached, gc)
	}
}

func (h *GLFWHost) Detach(c Canvas) {
	for i, a := range h.attached {
		if a == c {
			h.attached = append(h.attached[:i], h.attached[i+1:]...)
			return
		}
	}
}

func (h *GLFWHost) Dispose() {
	h.window.Destroy()
	glfw.Terminate()
}

type glfwCanvas struct {
	host       *GLFWHost
	id         string
	ctx        *glContext
	visible    bool
	restorable bool
	pixelSize  [2]int
	cssSize    [2]float64
	onLost     func(ContextEvent)
	onRestored func(ContextEvent)
}

func (c *glfwCanvas) ID() string        { return c.id }
func (c *glfwCanvas) SetID(id string)   { c.id = id }
func (c *glfwCanvas) Visible() bool     { return c.visible }
func (c *glfwCanvas) SetVisible(v bool) { c.visible = v }
func (c *glfwCanvas) ResetTransform()   {}

func (c *glfwCanvas) GetContext(attrs ContextAttributes) (Context, error) {
	if c.ctx != nil {
		return c.ctx, nil
	}
	if attrs.Antialias && !c.host.config.EnableMSAA {
		c.host.lg.Debugf("%s: antialiasing requested but the window was created without MSAA", c.id)
	}
	c.host.window.MakeContextCurrent()
	ctx, err := newGLContext(attrs, c.host.lg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContextUnavailable, err)
	}
	ctx.viewport = c.mapViewport
	c.ctx = ctx
	return ctx, nil
}

// SetPixelSize records the requested drawing buffer size. The framebuffer
// of a window is sized by the window system, so when the two differ,
// viewports are scaled onto the framebuffer the way a browser scales a
// canvas to its CSS size.
func (c *glfwCanvas) SetPixelSize(width, height int) {
	c.pixelSize = [2]int{width, height}
	if fw, fh := c.host.FramebufferSize(); fw != width || fh != height {
		c.host.lg.Debugf("%s: pixel size %dx%d scaled to framebuffer %dx%d", c.id, width, height, fw, fh)
	}
}

func (c *glfwCanvas) mapViewport(x, y, width, height int) (int, int, int, int) {
	fw, fh := c.host.FramebufferSize()
	return scaleViewport(x, y, width, height, c.pixelSize, [2]int{fw, fh})
}

// scaleViewport maps a viewport in a drawing buffer of size pixel onto a
// framebuffer of size fb.
func scaleViewport(x, y, width, height int, pixel, fb [2]int) (int, int, int, int) {
	if pixel[0] <= 0 || pixel[1] <= 0 || pixel == fb {
		return x, y, width, height
	}
	sx := float64(fb[0]) / float64(pixel[0])
	sy := float64(fb[1]) / float64(pixel[1])
	scale := func(v int, s float64) int { return int(gomath.Round(float64(v) * s)) }
	return scale(x, sx), scale(y, sy), scale(width, sx), scale(height, sy)
}

func (c *glfwCanvas) SetCSSSize(width, height float64) {
	c.cssSize = [2]float64{width, height}
	ww, wh := c.host.window.GetSize()
	w, h := int(gomath.Round(width)), int(gomath.Round(height))
	if w > 0 && h > 0 && (w != ww || h != wh) {
		c.host.window.SetSize(w, h)
	}
}

func (c *glfwCanvas) DevicePixelRatio() float64 {
	return c.host.DevicePixelRatio()
}

func (c *glfwCanvas) AddContextListeners(lost, restored func(ContextEvent)) {
	c.onLost, c.onRestored = lost, restored
}

func (c *glfwCanvas) RemoveContextListeners() {
	c.onLost, c.onRestored = nil, nil
}

func (c *glfwCanvas) Dispose() {
	c.RemoveContextListeners()
	c.host.Detach(c)
	if c.ctx != nil {
		c.ctx.lost = true
		c.ctx = nil
	}
}

var (
	_ Host   = (*GLFWHost)(nil)
	_ Canvas = (*glfwCanvas)(nil)
)
