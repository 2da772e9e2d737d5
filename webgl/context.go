// webgl/context.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package webgl defines the narrow slice of the WebGL 1 API that the
// rendering block depends on, along with implementations of it: one on top
// of desktop OpenGL 2.1 (go-gl + GLFW), one on top of a browser WebGL
// context (js/wasm), and a Recorder that logs calls for tests and capture
// files.
package webgl

import (
	"image"
)

// GL enumerants. The values are shared by WebGL and desktop OpenGL, so
// backends can pass them through unchanged.
const (
	Triangles = 0x0004

	ColorBufferBit = 0x4000

	Blend     = 0x0BE2
	DepthTest = 0x0B71

	Zero             = 0
	One              = 1
	SrcAlpha         = 0x0302
	OneMinusSrcAlpha = 0x0303

	ArrayBuffer = 0x8892
	StaticDraw  = 0x88E4
	DynamicDraw = 0x88E8

	Float = 0x1406

	VertexShader   = 0x8B31
	FragmentShader = 0x8B30

	Texture2D          = 0x0DE1
	Texture0           = 0x84C0
	TextureMinFilter   = 0x2801
	TextureMagFilter   = 0x2800
	TextureWrapS       = 0x2802
	TextureWrapT       = 0x2803
	Linear             = 0x2601
	LinearMipmapLinear = 0x2703
	ClampToEdge        = 0x812F
)

// Handles for GL objects. Zero is never a valid object.
type (
	Buffer  uint32
	Texture uint32
	Shader  uint32
	Program uint32
)

// UniformLocation identifies a uniform within a linked program; -1 means
// the uniform is not active.
type UniformLocation int32

// ContextAttributes are the creation parameters requested for a context.
type ContextAttributes struct {
	Antialias             bool
	PreserveDrawingBuffer bool
}

// Context is the subset of the WebGL 1 rendering context used by the
// block, its processors, sprite sheets and custom drawables. All calls
// must be made from the goroutine that owns the context.
type Context interface {
	// Attributes returns the attributes the context was actually
	// created with.
	Attributes() ContextAttributes
	// Samples returns the number of multisample samples of the default
	// framebuffer; 0 means no antialiasing is available.
	Samples() int
	// IsContextLost reports whether the context has been lost; calls on a
	// lost context are ignored.
	IsContextLost() bool
	// ShaderHeader returns the preamble that must be prepended to the
	// GLSL ES 1.00 shader bodies used in this module.
	ShaderHeader() string

	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Enable(cap uint32)
	Disable(cap uint32)
	BlendFunc(sfactor, dfactor uint32)
	Viewport(x, y, width, height int)
	Flush()

	CreateBuffer() Buffer
	DeleteBuffer(b Buffer)
	BindBuffer(target uint32, b Buffer)
	// BufferData (re)allocates the bound buffer's storage and fills it
	// with data.
	BufferData(target uint32, data []float32, usage uint32)
	// BufferSubData updates the bound buffer's storage starting at the
	// given byte offset.
	BufferSubData(target uint32, byteOffset int, data []float32)

	CreateShader(kind uint32) Shader
	ShaderSource(s Shader, src string)
	CompileShader(s Shader)
	ShaderCompiled(s Shader) bool
	ShaderInfoLog(s Shader) string
	DeleteShader(s Shader)

	CreateProgram() Program
	AttachShader(p Program, s Shader)
	LinkProgram(p Program)
	ProgramLinked(p Program) bool
	ProgramInfoLog(p Program) string
	DeleteProgram(p Program)
	UseProgram(p Program)

	GetAttribLocation(p Program, name string) int
	GetUniformLocation(p Program, name string) UniformLocation
	EnableVertexAttribArray(index uint32)
	DisableVertexAttribArray(index uint32)
	// VertexAttribPointer describes float attribute data in the bound
	// array buffer; stride and offset are in bytes.
	VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int)
	UniformMatrix3fv(loc UniformLocation, transpose bool, m []float32)
	Uniform1i(loc UniformLocation, v int)

	CreateTexture() Texture
	DeleteTexture(t Texture)
	ActiveTexture(unit uint32)
	BindTexture(target uint32, t Texture)
	TexParameteri(target, pname uint32, param int)
	// TexImage2D uploads img to the given mip level of the bound texture.
	// Go's image.RGBA is alpha-premultiplied, which is what the blend mode
	// used by the block expects.
	TexImage2D(target uint32, level int, img *image.RGBA)
	GenerateMipmap(target uint32)

	DrawArrays(mode uint32, first, count int)
}
