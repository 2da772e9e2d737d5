// webgl/recorder.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package webgl

import (
	"fmt"
	"image"
	"slices"

	"github.com/brunoga/deep"
)

// Call is a single recorded GL call. Args holds the scalar arguments;
// bulk data (vertex arrays, pixels, shader sources) is recorded by size.
type Call struct {
	Name string `msgpack:"n"`
	Args []any  `msgpack:"a,omitempty"`
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Name, c.Args)
}

// Recorder is a Context that records every call made on it. It either
// stands alone, simulating just enough GL object state for the block to
// run (handles, buffer sizes, attribute locations), or wraps another
// Context and forwards each call to it, which is how capture files of
// real sessions are produced.
//
// As with a real context, calls made while the context is lost are
// dropped and not recorded.
type Recorder struct {
	next  Context
	attrs ContextAttributes

	// SampleCount is returned by Samples when not wrapping another context.
	SampleCount int
	// FailShaderCompile makes every shader compilation fail.
	FailShaderCompile bool

	calls []Call
	lost  bool

	nextHandle  uint32
	bufferSizes map[Buffer]int
	bound       map[uint32]Buffer
	attribs     map[Program]map[string]int
	uniforms    map[Program]map[string]UniformLocation
}

// NewRecorder returns a standalone Recorder that reports the given
// creation attributes.
func NewRecorder(attrs ContextAttributes) *Recorder {
	return &Recorder{
		attrs:       attrs,
		SampleCount: 4,
		bufferSizes: make(map[Buffer]int),
		bound:       make(map[uint32]Buffer),
		attribs:     make(map[Program]map[string]int),
		uniforms:    make(map[Program]map[string]UniformLocation),
	}
}

// NewTeeRecorder returns a Recorder that forwards all calls to next.
func NewTeeRecorder(next Context) *Recorder {
	r := NewRecorder(next.Attributes())
	r.next = next
	return r
}

func (r *Recorder) record(name string, args ...any) bool {
	if r.IsContextLost() {
		return false
	}
	r.calls = append(r.calls, Call{Name: name, Args: args})
	return true
}

func (r *Recorder) handle() uint32 {
	r.nextHandle++
	return r.nextHandle
}

// SetContextLost marks the (standalone) context as lost or live again.
func (r *Recorder) SetContextLost(lost bool) {
	r.lost = lost
}

// Calls returns the calls recorded since the last Reset.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Named returns the recorded calls with the given name, in order.
func (r *Recorder) Named(name string) []Call {
	var c []Call
	for _, call := range r.calls {
		if call.Name == name {
			c = append(c, call)
		}
	}
	return c
}

// Count returns the number of recorded calls with the given name.
func (r *Recorder) Count(name string) int {
	n := 0
	for _, call := range r.calls {
		if call.Name == name {
			n++
		}
	}
	return n
}

// Names returns the names of the recorded calls, in order, restricted
// to the given names if any are provided.
func (r *Recorder) Names(only ...string) []string {
	var n []string
	for _, call := range r.calls {
		if len(only) == 0 || slices.Contains(only, call.Name) {
			n = append(n, call.Name)
		}
	}
	return n
}

// Reset discards the recorded calls; simulated GL object state is kept.
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
}

// BufferSize returns the allocated size, in floats, of the given buffer.
func (r *Recorder) BufferSize(b Buffer) int {
	return r.bufferSizes[b]
}

// Capture returns a snapshot of the calls recorded so far that is
// independent of any later recording.
func (r *Recorder) Capture() Capture {
	return Capture{
		Version:    CaptureVersion,
		Attributes: r.attrs,
		Calls:      deep.MustCopy(r.calls),
	}
}

///////////////////////////////////////////////////////////////////////////
// Context implementation

func (r *Recorder) Attributes() ContextAttributes {
	return r.attrs
}

func (r *Recorder) Samples() int {
	if r.next != nil {
		return r.next.Samples()
	}
	return r.SampleCount
}

func (r *Recorder) IsContextLost() bool {
	if r.next != nil {
		return r.next.IsContextLost()
	}
	return r.lost
}

func (r *Recorder) ShaderHeader() string {
	if r.next != nil {
		return r.next.ShaderHeader()
	}
	return ""
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	if r.record("clearColor", red, green, blue, alpha) && r.next != nil {
		r.next.ClearColor(red, green, blue, alpha)
	}
}

func (r *Recorder) Clear(mask uint32) {
	if r.record("clear", mask) && r.next != nil {
		r.next.Clear(mask)
	}
}

func (r *Recorder) Enable(cap uint32) {
	if r.record("enable", cap) && r.next != nil {
		r.next.Enable(cap)
	}
}

func (r *Recorder) Disable(cap uint32) {
	if r.record("disable", cap) && r.next != nil {
		r.next.Disable(cap)
	}
}

func (r *Recorder) BlendFunc(sfactor, dfactor uint32) {
	if r.record("blendFunc", sfactor, dfactor) && r.next != nil {
		r.next.BlendFunc(sfactor, dfactor)
	}
}

func (r *Recorder) Viewport(x, y, width, height int) {
	if r.record("viewport", x, y, width, height) && r.next != nil {
		r.next.Viewport(x, y, width, height)
	}
}

func (r *Recorder) Flush() {
	if r.record("flush") && r.next != nil {
		r.next.Flush()
	}
}

func (r *Recorder) CreateBuffer() Buffer {
	if !r.record("createBuffer") {
		return 0
	}
	if r.next != nil {
		return r.next.CreateBuffer()
	}
	return Buffer(r.handle())
}

func (r *Recorder) DeleteBuffer(b Buffer) {
	if r.record("deleteBuffer", uint32(b)) && r.next != nil {
		r.next.DeleteBuffer(b)
	}
	delete(r.bufferSizes, b)
}

func (r *Recorder) BindBuffer(target uint32, b Buffer) {
	if r.record("bindBuffer", target, uint32(b)) && r.next != nil {
		r.next.BindBuffer(target, b)
	}
	r.bound[target] = b
}

func (r *Recorder) BufferData(target uint32, data []float32, usage uint32) {
	if r.record("bufferData", target, len(data), usage) {
		r.bufferSizes[r.bound[target]] = len(data)
		if r.next != nil {
			r.next.BufferData(target, data, usage)
		}
	}
}

func (r *Recorder) BufferSubData(target uint32, byteOffset int, data []float32) {
	if !r.record("bufferSubData", target, byteOffset, len(data)) {
		return
	}
	if r.next != nil {
		r.next.BufferSubData(target, byteOffset, data)
	} else if sz := r.bufferSizes[r.bound[target]]; byteOffset/4+len(data) > sz {
		// A real context raises INVALID_VALUE; make it loud here.
		panic(fmt.Sprintf("webgl: bufferSubData of %d floats at byte offset %d overflows buffer of %d floats",
			len(data), byteOffset, sz))
	}
}

func (r *Recorder) CreateShader(kind uint32) Shader {
	if !r.record("createShader", kind) {
		return 0
	}
	if r.next != nil {
		return r.next.CreateShader(kind)
	}
	return Shader(r.handle())
}

func (r *Recorder) ShaderSource(s Shader, src string) {
	if r.record("shaderSource", uint32(s), len(src)) && r.next != nil {
		r.next.ShaderSource(s, src)
	}
}

func (r *Recorder) CompileShader(s Shader) {
	if r.record("compileShader", uint32(s)) && r.next != nil {
		r.next.CompileShader(s)
	}
}

func (r *Recorder) ShaderCompiled(s Shader) bool {
	if r.next != nil {
		return r.next.ShaderCompiled(s)
	}
	return !r.FailShaderCompile && !r.lost
}

func (r *Recorder) ShaderInfoLog(s Shader) string {
	if r.next != nil {
		return r.next.ShaderInfoLog(s)
	}
	if r.FailShaderCompile {
		return "ERROR: 0:1: recorder configured to fail compilation"
	}
	return ""
}

func (r *Recorder) DeleteShader(s Shader) {
	if r.record("deleteShader", uint32(s)) && r.next != nil {
		r.next.DeleteShader(s)
	}
}

func (r *Recorder) CreateProgram() Program {
	if !r.record("createProgram") {
		return 0
	}
	if r.next != nil {
		return r.next.CreateProgram()
	}
	p := Program(r.handle())
	r.attribs[p] = make(map[string]int)
	r.uniforms[p] = make(map[string]UniformLocation)
	return p
}

func (r *Recorder) AttachShader(p Program, s Shader) {
	if r.record("attachShader", uint32(p), uint32(s)) && r.next != nil {
		r.next.AttachShader(p, s)
	}
}

func (r *Recorder) LinkProgram(p Program) {
	if r.record("linkProgram", uint32(p)) && r.next != nil {
		r.next.LinkProgram(p)
	}
}

func (r *Recorder) ProgramLinked(p Program) bool {
	if r.next != nil {
		return r.next.ProgramLinked(p)
	}
	return !r.lost
}

func (r *Recorder) ProgramInfoLog(p Program) string {
	if r.next != nil {
		return r.next.ProgramInfoLog(p)
	}
	return ""
}

func (r *Recorder) DeleteProgram(p Program) {
	if r.record("deleteProgram", uint32(p)) && r.next != nil {
		r.next.DeleteProgram(p)
	}
	delete(r.attribs, p)
	delete(r.uniforms, p)
}

func (r *Recorder) UseProgram(p Program) {
	if r.record("useProgram", uint32(p)) && r.next != nil {
		r.next.UseProgram(p)
	}
}

func (r *Recorder) GetAttribLocation(p Program, name string) int {
	if r.next != nil {
		return r.next.GetAttribLocation(p, name)
	}
	if r.lost {
		return -1
	}
	m := r.attribs[p]
	if m == nil {
		return -1
	}
	if loc, ok := m[name]; ok {
		return loc
	}
	m[name] = len(m)
	return m[name]
}

func (r *Recorder) GetUniformLocation(p Program, name string) UniformLocation {
	if r.next != nil {
		return r.next.GetUniformLocation(p, name)
	}
	m := r.uniforms[p]
	if r.lost || m == nil {
		return -1
	}
	if loc, ok := m[name]; ok {
		return loc
	}
	m[name] = UniformLocation(len(m))
	return m[name]
}

func (r *Recorder) EnableVertexAttribArray(index uint32) {
	if r.record("enableVertexAttribArray", index) && r.next != nil {
		r.next.EnableVertexAttribArray(index)
	}
}

func (r *Recorder) DisableVertexAttribArray(index uint32) {
	if r.record("disableVertexAttribArray", index) && r.next != nil {
		r.next.DisableVertexAttribArray(index)
	}
}

func (r *Recorder) VertexAttribPointer(index uint32, size int, typ uint32, normalized bool, stride, offset int) {
	if r.record("vertexAttribPointer", index, size, typ, normalized, stride, offset) && r.next != nil {
		r.next.VertexAttribPointer(index, size, typ, normalized, stride, offset)
	}
}

func (r *Recorder) UniformMatrix3fv(loc UniformLocation, transpose bool, m []float32) {
	if r.record("uniformMatrix3fv", int32(loc), transpose, slices.Clone(m)) && r.next != nil {
		r.next.UniformMatrix3fv(loc, transpose, m)
	}
}

func (r *Recorder) Uniform1i(loc UniformLocation, v int) {
	if r.record("uniform1i", int32(loc), v) && r.next != nil {
		r.next.Uniform1i(loc, v)
	}
}

func (r *Recorder) CreateTexture() Texture {
	if !r.record("createTexture") {
		return 0
	}
	if r.next != nil {
		return r.next.CreateTexture()
	}
	return Texture(r.handle())
}

func (r *Recorder) DeleteTexture(t Texture) {
	if r.record("deleteTexture", uint32(t)) && r.next != nil {
		r.next.DeleteTexture(t)
	}
}

func (r *Recorder) ActiveTexture(unit uint32) {
	if r.record("activeTexture", unit) && r.next != nil {
		r.next.ActiveTexture(unit)
	}
}

func (r *Recorder) BindTexture(target uint32, t Texture) {
	if r.record("bindTexture", target, uint32(t)) && r.next != nil {
		r.next.BindTexture(target, t)
	}
}

func (r *Recorder) TexParameteri(target, pname uint32, param int) {
	if r.record("texParameteri", target, pname, param) && r.next != nil {
		r.next.TexParameteri(target, pname, param)
	}
}

func (r *Recorder) TexImage2D(target uint32, level int, img *image.RGBA) {
	b := img.Bounds()
	if r.record("texImage2D", target, level, b.Dx(), b.Dy()) && r.next != nil {
		r.next.TexImage2D(target, level, img)
	}
}

func (r *Recorder) GenerateMipmap(target uint32) {
	if r.record("generateMipmap", target) && r.next != nil {
		r.next.GenerateMipmap(target)
	}
}

func (r *Recorder) DrawArrays(mode uint32, first, count int) {
	if r.record("drawArrays", mode, first, count) && r.next != nil {
		r.next.DrawArrays(mode, first, count)
	}
}

var _ Context = (*Recorder)(nil)
