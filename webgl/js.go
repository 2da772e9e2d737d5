// webgl/js.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build js && wasm

package webgl

import (
	"fmt"
	"image"
	"syscall/js"
	"unsafe"

	"github.com/glscene/glblock/log"
)

// JSHost creates HTML canvas elements and appends them to a container
// element of the page.
type JSHost struct {
	container js.Value
	document  js.Value
	lg        *log.Logger
}

// NewJSHost returns a host that attaches canvases to container; if
// container is undefined, the document body is used.
func NewJSHost(container js.Value, lg *log.Logger) *JSHost {
	doc := js.Global().Get("document")
	if container.IsUndefined() || container.IsNull() {
		container = doc.Get("body")
	}
	return &JSHost{container: container, document: doc, lg: lg}
}

// Size returns the size of the container in CSS pixels.
func (h *JSHost) Size() (float64, float64) {
	return h.container.Get("clientWidth").Float(), h.container.Get("clientHeight").Float()
}

func (h *JSHost) NewCanvas() (Canvas, error) {
	el := h.document.Call("createElement", "canvas")
	if el.IsNull() || el.IsUndefined() {
		return nil, fmt.Errorf("webgl: unable to create canvas element")
	}
	style := el.Get("style")
	style.Set("position", "absolute")
	style.Set("left", "0")
	style.Set("top", "0")
	style.Set("pointerEvents", "none")
	return &jsCanvas{el: el, lg: h.lg}, nil
}

func (h *JSHost) Attach(c Canvas) {
	if jc, ok := c.(*jsCanvas); ok {
		h.container.Call("appendChild", jc.el)
	}
}

func (h *JSHost) Detach(c Canvas) {
	if jc, ok := c.(*jsCanvas); ok && jc.el.Get("parentNode").Equal(h.container) {
		h.container.Call("removeChild", jc.el)
	}
}

type jsCanvas struct {
	el         js.Value
	ctx        *jsContext
	lg         *log.Logger
	onLost     js.Func
	onRestored js.Func
	listening  bool
}

func (c *jsCanvas) ID() string      { return c.el.Get("id").String() }
func (c *jsCanvas) SetID(id string) { c.el.Set("id", id) }

func (c *jsCanvas) GetContext(attrs ContextAttributes) (Context, error) {
	if c.ctx != nil {
		return c.ctx, nil
	}
	opts := map[string]any{
		"antialias":             attrs.Antialias,
		"preserveDrawingBuffer": attrs.PreserveDrawingBuffer,
	}
	gl := c.el.Call("getContext", "webgl", opts)
	if gl.IsNull() || gl.IsUndefined() {
		gl = c.el.Call("getContext", "experimental-webgl", opts)
	}
	if gl.IsNull() || gl.IsUndefined() {
		return nil, ErrContextUnavailable
	}
	c.ctx = newJSContext(gl, attrs)
	return c.ctx, nil
}

func (c *jsCanvas) SetPixelSize(width, height int) {
	c.el.Set("width", width)
	c.el.Set("height", height)
}

func (c *jsCanvas) SetCSSSize(width, height float64) {
	style := c.el.Get("style")
	style.Set("width", fmt.Sprintf("%gpx", width))
	style.Set("height", fmt.Sprintf("%gpx", height))
}

func (c *jsCanvas) ResetTransform() {
	c.el.Get("style").Set("transform", "")
}

func (c *jsCanvas) SetVisible(visible bool) {
	if visible {
		c.el.Get("style").Set("display", "")
	} else {
		c.el.Get("style").Set("display", "none")
	}
}

func (c *jsCanvas) Visible() bool {
	return c.el.Get("style").Get("display").String() != "none"
}

func (c *jsCanvas) DevicePixelRatio() float64 {
	if r := js.Global().Get("devicePixelRatio"); r.Truthy() {
		return r.Float()
	}
	return 1
}

// jsEvent wraps a DOM event.
type jsEvent struct {
	ev js.Value
}

func (e jsEvent) PreventDefault()        { e.ev.Call("preventDefault") }
func (e jsEvent) DefaultPrevented() bool { return e.ev.Get("defaultPrevented").Bool() }

func (c *jsCanvas) AddContextListeners(lost, restored func(ContextEvent)) {
	c.RemoveContextListeners()
	c.onLost = js.FuncOf(func(this js.Value, args []js.Value) any {
		lost(jsEvent{ev: args[0]})
		return nil
	})
	c.onRestored = js.FuncOf(func(this js.Value, args []js.Value) any {
		// The context object survives restoration but every resource
		// created on it is gone; start over with a fresh handle table.
		if c.ctx != nil {
			c.ctx = newJSContext(c.ctx.gl, c.ctx.attrs)
		}
		restored(jsEvent{ev: args[0]})
		return nil
	})
	c.el.Call("addEventListener", "webglcontextlost", c.onLost, false)
	c.el.Call("addEventListener", "webglcontextrestored", c.onRestored, false)
	c.listening = true
}

func (c *jsCanvas) RemoveContextListeners() {
	if !c.listening {
		return
	}
	c.el.Call("removeEventListener", "webglcontextlost", c.onLost, false)
	c.el.Call("removeEventListener", "webglcontextrestored", c.onRestored, false)
	c.onLost.Release()
	c.onRestored.Release()
	c.listening = false
}

func (c *jsCanvas) Dispose() {
	c.RemoveContextListeners()
	if p := c.el.Get("parentNode"); p.Truthy() {
		p.Call("removeChild", c.el)
	}
	c.ctx = nil
}

///////////////////////////////////////////////////////////////////////////
// jsContext

// jsContext implements Context on a browser WebGL 1 rendering context.
// GL objects are JavaScript values, so they are kept in tables keyed by
// the integer handles the Context interface uses.
type jsContext struct {
	gl    js.Value
	attrs ContextAttributes

	next     uint32
	objects  map[uint32]js.Value
	uniforms []js.Value
}

func newJSContext(gl js.Value, attrs ContextAttributes) *jsContext {
	return &jsContext{gl: gl, attrs: attrs, objects: make(map[uint32]js.Value)}
}

func (c *jsContext) add(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	c.next++
	c.objects[c.next] = v
	return c.next
}

func (c *jsContext) get(h uint32) js.Value {
	if v, ok := c.objects[h]; ok {
		return v
	}
	return js.Null()
}

func (c *jsContext) remove(h uint32) js.Value {
	v := c.get(h)
	delete(c.objects, h)
	return v
}

func float32Array(data []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(data))
	if len(data) == 0 {
		return arr
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
	view := js.Global().Get("Uint8Array").New(arr.Get("buffer"), arr.Get("byteOffset"), arr.Get("byteLength"))
	js.CopyBytesToJS(view, b)
	return arr
}

func (c *jsContext) Attributes() ContextAttributes { return c.attrs }

func (c *jsContext) Samples() int {
	if s := c.gl.Call("getParameter", c.gl.Get("SAMPLES")); s.Type() == js.TypeNumber {
		return s.Int()
	}
	return 0
}

func (c *jsContext) IsContextLost() bool  { return c.gl.Call("isContextLost").Bool() }
func (c *jsContext) ShaderHeader() string { return "precision mediump float;\n" }

func (c *jsContext) ClearColor(r, g, b, a float32) { c.gl.Call("clearColor", r, g, b, a) }
func (c *jsContext) Clear(mask uint32)             { c.gl.Call("clear", mask) }
func (c *jsContext) Enable(cap uint32)             { c.gl.Call("enable", cap) }
func (c *jsContext) Disable(cap uint32)            { c.gl.Call("disable", cap) }
func (c *jsContext) Flush()                        { c.gl.Call("flush") }

func (c *jsContext) BlendFunc(sfactor, dfactor uint32) {
	c.gl.Call("blendFunc", sfactor, dfactor)
}

func (c *jsContext) Viewport(x, y, width, height int) {
	c.gl.Call("viewport", x, y, width, height)
}

func (c *jsContext) CreateBuffer() Buffer {
	return Buffer(c.add(c.gl.Call("createBuffer")))
}

func (c *jsContext) DeleteBuffer(b Buffer) {
	c.gl.Call("deleteBuffer", c.remove(uint32(b)))
}

func (c *jsContext) BindBuffer(target uint32, b Buffer) {
	c.gl.Call("bindBuffer", target, c.get(uint32(b)))
}

func (c *jsContext) BufferData(target uint32, data []float32, usage uint32) {
	c.gl.Call("bufferData", target, float32Array(data), usage)
}

func (c *jsContext) BufferSubData(target uint32, byteOffset int, data []float32) {
	c.gl.Call("bufferSubData", target, byteOffset, float32Array(data))
}

func (c *jsContext) CreateShader(kind uint32) Shader {
	return Shader(c.add(c.gl.Call("createShader", kind)))
}

func (c *jsContext) ShaderSource(s Shader, src string) {
	c.gl.Call("shaderSource", c.get(uint32(s)), src)
}

func (c *jsContext) CompileShader(s Shader) {
	c.gl.Call("compileShader", c.get(uint32(s)))
}

func (c *jsContext) ShaderCompiled(s Shader) bool {
	return c.gl.Call("getShaderParameter", c.get(uint32(s)), c.gl.Get("COMPILE_STATUS")).Truthy()
}

func (c *jsContext) ShaderInfoLog(s Shader) string {
	if l := c.gl.Call("getShaderInfoLog", c.get(uint32(s))); l.Type() == js.TypeString {
		return l.String()
	}
	return ""
}

func (c *jsContext) DeleteShader(s Shader) {
	c.gl.Call("deleteShader", c.remove(uint32(s)))
}

func (c *jsContext) CreateProgram() Program {
	return Program(c.add(c.gl.Call("createProgram")))
}

func (c *jsContext) AttachShader(p Program, s Shader) {
	c.gl.Call("attachShader", c.get(uint32(p)), c.get(uint32(s)))
}

func (c *jsContext) LinkProgram(p Program) {
	c.gl.Call("linkProgram", c.get(uint32(p)))
}

func (c *jsContext) ProgramLinked(p Program) bool {
	return c.gl.Call("getProgramParameter", c.get(uint32(p)), c.gl.Get("LINK_STATUS")).Truthy()
}

func (c *jsContext) ProgramInfoLog(p Program) string {
	if l := c.gl.Call("getProgramInfoLog", c.get(uint32(p))); l.Type() == js.TypeString {
		return l.String()
	}
	return ""
}

func (c *jsContext) DeleteProgram(p Program) {
	c.gl.Call("deleteProgram", c.remove(uint32(p)))
}

func (c *jsContext) UseProgram(p Program) {
	c.gl.Call("useProgram", c.get(uint32(p)))
}

func (c *jsContext) GetAttribLocation(p Program, name string) int {
	return c.gl.Call("getAttribLocation", c.get(uint32(p)), name).Int()
}

func (c *jsContext) GetUniformLocation(p Program, name string) UniformLocation {
	loc := c.gl.Call("getUniformLocation", c.get(uint32(p)), name)
	if loc.IsNull() || loc.IsUndefined() {
		return -1
	}
	c.uniforms = append(c.uniforms, loc)
	return UniformLocation(len(c.uniforms) - 1)
}

func (c *jsContext) uniform(loc UniformLocation) js.Value {
	if loc < 0 || int(loc) >= len(c.uniforms) {
		return js.Null()
	}
	return c.uniforms[loc]
}

func (c *jsContext) EnableVertexAttribArray(index uint32) {
	c.gl.Call("enableVertexAttribArray", index)
}

func (c *jsContext) DisableVertexAttribArray(index uint32) {
	c.gl.Call("disableVertexAttribArray", index)
}

func (c *jsContext) VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int) {
	c.gl.Call("vertexAttribPointer", index, size, typ, normalized, stride, offset)
}

func (c *jsContext) UniformMatrix3fv(loc UniformLocation, transpose bool, m []float32) {
	c.gl.Call("uniformMatrix3fv", c.uniform(loc), transpose, float32Array(m))
}

func (c *jsContext) Uniform1i(loc UniformLocation, v int) {
	c.gl.Call("uniform1i", c.uniform(loc), v)
}

func (c *jsContext) CreateTexture() Texture {
	return Texture(c.add(c.gl.Call("createTexture")))
}

func (c *jsContext) DeleteTexture(t Texture) {
	c.gl.Call("deleteTexture", c.remove(uint32(t)))
}

func (c *jsContext) ActiveTexture(unit uint32) {
	c.gl.Call("activeTexture", unit)
}

func (c *jsContext) BindTexture(target uint32, t Texture) {
	c.gl.Call("bindTexture", target, c.get(uint32(t)))
}

func (c *jsContext) TexParameteri(target, pname uint32, param int) {
	c.gl.Call("texParameteri", target, pname, param)
}

func (c *jsContext) TexImage2D(target uint32, level int, img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	pix := img.Pix
	if img.Stride != 4*w {
		pix = make([]byte, 0, 4*w*h)
		for y := range h {
			off := y * img.Stride
			pix = append(pix, img.Pix[off:off+4*w]...)
		}
	}
	arr := js.Global().Get("Uint8Array").New(len(pix))
	js.CopyBytesToJS(arr, pix)

	rgba := c.gl.Get("RGBA")
	c.gl.Call("texImage2D", target, level, rgba, w, h, 0, rgba, c.gl.Get("UNSIGNED_BYTE"), arr)
}

func (c *jsContext) GenerateMipmap(target uint32) {
	c.gl.Call("generateMipmap", target)
}

func (c *jsContext) DrawArrays(mode uint32, first, count int) {
	c.gl.Call("drawArrays", mode, first, count)
}

var (
	_ Host    = (*JSHost)(nil)
	_ Canvas  = (*jsCanvas)(nil)
	_ Context = (*jsContext)(nil)
)
