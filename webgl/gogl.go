// webgl/gogl.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package webgl

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"unsafe"

	"github.com/glscene/glblock/log"

	"github.com/go-gl/gl/v2.1/gl"
)

var glInit struct {
	sync.Once
	err error
}

// glContext implements Context on top of a desktop OpenGL 2.1 context
// that is current on the calling thread. Once lost, a glContext stays
// lost; restoration hands out a new one.
type glContext struct {
	attrs   ContextAttributes
	samples int
	lost    bool
	lg      *log.Logger

	// viewport maps viewports given in the canvas's pixel size to the
	// window's framebuffer. Nil leaves them unchanged.
	viewport func(x, y, width, height int) (int, int, int, int)
}

func newGLContext(attrs ContextAttributes, lg *log.Logger) (*glContext, error) {
	glInit.Do(func() {
		if glInit.err = gl.Init(); glInit.err == nil {
			lg.Infof("OpenGL vendor %s renderer %s version %s", glString(gl.VENDOR),
				glString(gl.RENDERER), glString(gl.VERSION))
		}
	})
	if glInit.err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", glInit.err)
	}

	var samples int32
	gl.GetIntegerv(gl.SAMPLES, &samples)

	return &glContext{
		attrs:   attrs,
		samples: int(samples),
		lg:      lg,
	}, nil
}

func glString(name uint32) string {
	if s := gl.GetString(name); s != nil {
		return gl.GoStr(s)
	}
	return "(unknown)"
}

func glFloats(data []float32) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(&data[0])
}

func (c *glContext) Attributes() ContextAttributes { return c.attrs }
func (c *glContext) Samples() int                  { return c.samples }
func (c *glContext) IsContextLost() bool           { return c.lost }
func (c *glContext) ShaderHeader() string          { return "#version 120\n" }

func (c *glContext) ClearColor(r, g, b, a float32) {
	if !c.lost {
		gl.ClearColor(r, g, b, a)
	}
}

func (c *glContext) Clear(mask uint32) {
	if !c.lost {
		gl.Clear(mask)
	}
}

func (c *glContext) Enable(cap uint32) {
	if !c.lost {
		gl.Enable(cap)
	}
}

func (c *glContext) Disable(cap uint32) {
	if !c.lost {
		gl.Disable(cap)
	}
}

func (c *glContext) BlendFunc(sfactor, dfactor uint32) {
	if !c.lost {
		gl.BlendFunc(sfactor, dfactor)
	}
}

func (c *glContext) Viewport(x, y, width, height int) {
	if c.lost {
		return
	}
	if c.viewport != nil {
		x, y, width, height = c.viewport(x, y, width, height)
	}
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

// clearDrawingBuffer clears the color buffer to transparent black without
// disturbing the clear color, as a browser does after presenting a canvas
// whose context does not preserve its drawing buffer.
func (c *glContext) clearDrawingBuffer() {
	if c.lost || c.attrs.PreserveDrawingBuffer {
		return
	}
	var cc [4]float32
	gl.GetFloatv(gl.COLOR_CLEAR_VALUE, &cc[0])
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.ClearColor(cc[0], cc[1], cc[2], cc[3])
}

func (c *glContext) Flush() {
	if !c.lost {
		gl.Flush()
	}
}

func (c *glContext) CreateBuffer() Buffer {
	if c.lost {
		return 0
	}
	var b uint32
	gl.GenBuffers(1, &b)
	return Buffer(b)
}

func (c *glContext) DeleteBuffer(b Buffer) {
	if !c.lost && b != 0 {
		id := uint32(b)
		gl.DeleteBuffers(1, &id)
	}
}

func (c *glContext) BindBuffer(target uint32, b Buffer) {
	if !c.lost {
		gl.BindBuffer(target, uint32(b))
	}
}

func (c *glContext) BufferData(target uint32, data []float32, usage uint32) {
	if !c.lost {
		gl.BufferData(target, 4*len(data), glFloats(data), usage)
	}
}

func (c *glContext) BufferSubData(target uint32, byteOffset int, data []float32) {
	if !c.lost && len(data) > 0 {
		gl.BufferSubData(target, byteOffset, 4*len(data), glFloats(data))
	}
}

func (c *glContext) CreateShader(kind uint32) Shader {
	if c.lost {
		return 0
	}
	return Shader(gl.CreateShader(kind))
}

func (c *glContext) ShaderSource(s Shader, src string) {
	if c.lost {
		return
	}
	csrc, free := gl.Strs(src + "\x00")
	defer free()
	gl.ShaderSource(uint32(s), 1, csrc, nil)
}

func (c *glContext) CompileShader(s Shader) {
	if !c.lost {
		gl.CompileShader(uint32(s))
	}
}

func (c *glContext) ShaderCompiled(s Shader) bool {
	if c.lost {
		return false
	}
	var status int32
	gl.GetShaderiv(uint32(s), gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (c *glContext) ShaderInfoLog(s Shader) string {
	if c.lost {
		return ""
	}
	var n int32
	gl.GetShaderiv(uint32(s), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(uint32(s), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (c *glContext) DeleteShader(s Shader) {
	if !c.lost && s != 0 {
		gl.DeleteShader(uint32(s))
	}
}

func (c *glContext) CreateProgram() Program {
	if c.lost {
		return 0
	}
	return Program(gl.CreateProgram())
}

func (c *glContext) AttachShader(p Program, s Shader) {
	if !c.lost {
		gl.AttachShader(uint32(p), uint32(s))
	}
}

func (c *glContext) LinkProgram(p Program) {
	if !c.lost {
		gl.LinkProgram(uint32(p))
	}
}

func (c *glContext) ProgramLinked(p Program) bool {
	if c.lost {
		return false
	}
	var status int32
	gl.GetProgramiv(uint32(p), gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (c *glContext) ProgramInfoLog(p Program) string {
	if c.lost {
		return ""
	}
	var n int32
	gl.GetProgramiv(uint32(p), gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	buf := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(uint32(p), n, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func (c *glContext) DeleteProgram(p Program) {
	if !c.lost && p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func (c *glContext) UseProgram(p Program) {
	if !c.lost {
		gl.UseProgram(uint32(p))
	}
}

func (c *glContext) GetAttribLocation(p Program, name string) int {
	if c.lost {
		return -1
	}
	return int(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *glContext) GetUniformLocation(p Program, name string) UniformLocation {
	if c.lost {
		return -1
	}
	return UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (c *glContext) EnableVertexAttribArray(index uint32) {
	if !c.lost {
		gl.EnableVertexAttribArray(index)
	}
}

func (c *glContext) DisableVertexAttribArray(index uint32) {
	if !c.lost {
		gl.DisableVertexAttribArray(index)
	}
}

func (c *glContext) VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int) {
	if !c.lost {
		gl.VertexAttribPointer(index, int32(size), typ, normalized, int32(stride), gl.PtrOffset(offset))
	}
}

func (c *glContext) UniformMatrix3fv(loc UniformLocation, transpose bool, m []float32) {
	if !c.lost && len(m) >= 9 {
		gl.UniformMatrix3fv(int32(loc), 1, transpose, &m[0])
	}
}

func (c *glContext) Uniform1i(loc UniformLocation, v int) {
	if !c.lost {
		gl.Uniform1i(int32(loc), int32(v))
	}
}

func (c *glContext) CreateTexture() Texture {
	if c.lost {
		return 0
	}
	var t uint32
	gl.GenTextures(1, &t)
	return Texture(t)
}

func (c *glContext) DeleteTexture(t Texture) {
	if !c.lost && t != 0 {
		id := uint32(t)
		gl.DeleteTextures(1, &id)
	}
}

func (c *glContext) ActiveTexture(unit uint32) {
	if !c.lost {
		gl.ActiveTexture(unit)
	}
}

func (c *glContext) BindTexture(target uint32, t Texture) {
	if !c.lost {
		gl.BindTexture(target, uint32(t))
	}
}

func (c *glContext) TexParameteri(target, pname uint32, param int) {
	if !c.lost {
		gl.TexParameteri(target, pname, int32(param))
	}
}

func (c *glContext) TexImage2D(target uint32, level int, img *image.RGBA) {
	if c.lost {
		return
	}
	b := img.Bounds()
	if level == 0 {
		// OpenGL 2.1 has no glGenerateMipmap; have the driver rebuild the
		// mip chain whenever level 0 changes instead.
		gl.TexParameteri(target, gl.GENERATE_MIPMAP, gl.TRUE)
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	gl.TexImage2D(target, int32(level), gl.RGBA, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA,
		gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

// GenerateMipmap is a no-op; see TexImage2D.
func (c *glContext) GenerateMipmap(target uint32) {}

func (c *glContext) DrawArrays(mode uint32, first, count int) {
	if !c.lost {
		gl.DrawArrays(mode, int32(first), int32(count))
	}
}
