// block/processor.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"fmt"

	"github.com/glscene/glblock/webgl"
)

// Processor turns a run of consecutive drawables with the same renderer
// into GL draw calls. Each frame, the block calls Activate, then
// ProcessDrawable for each drawable of the run, then Deactivate.
type Processor interface {
	// InitializeContext (re)creates the processor's GL objects on ctx.
	// Objects created on a previous context are abandoned, not deleted.
	InitializeContext(ctx webgl.Context) error
	Activate()
	ProcessDrawable(d Drawable)
	// Deactivate draws anything still pending and returns the number of
	// draw calls made since Activate.
	Deactivate() int
}

// InitialVertexCapacity is the number of floats a processor's vertex
// array starts with; it doubles whenever more room is needed.
const InitialVertexCapacity = 128

// vertexBuffer is the CPU-side vertex array of a batching processor and
// the GL buffer it is uploaded to.
type vertexBuffer struct {
	ctx    webgl.Context
	buffer webgl.Buffer

	array []float32
	// index is the write cursor into array.
	index int
	// lastArrayLength is the size of the GL buffer's storage, in floats.
	lastArrayLength int
}

func makeVertexBuffer() vertexBuffer {
	return vertexBuffer{array: make([]float32, InitialVertexCapacity)}
}

func (vb *vertexBuffer) initializeContext(ctx webgl.Context) {
	vb.ctx = ctx
	vb.buffer = ctx.CreateBuffer()
	ctx.BindBuffer(webgl.ArrayBuffer, vb.buffer)
	ctx.BufferData(webgl.ArrayBuffer, vb.array, webgl.DynamicDraw)
	vb.lastArrayLength = len(vb.array)
}

// add appends v at the write cursor, doubling the array as often as
// needed to make room for it.
func (vb *vertexBuffer) add(v []float32) {
	if n := vb.index + len(v); n > len(vb.array) {
		sz := len(vb.array)
		for sz < n {
			sz *= 2
		}
		a := make([]float32, sz)
		copy(a, vb.array[:vb.index])
		vb.array = a
	}
	copy(vb.array[vb.index:], v)
	vb.index += len(v)
}

// upload binds the GL buffer and brings it up to date with the written
// prefix of the array. The whole array is uploaded when it has grown
// beyond the buffer's storage.
func (vb *vertexBuffer) upload() {
	vb.ctx.BindBuffer(webgl.ArrayBuffer, vb.buffer)
	if len(vb.array) > vb.lastArrayLength {
		vb.ctx.BufferData(webgl.ArrayBuffer, vb.array, webgl.DynamicDraw)
		vb.lastArrayLength = len(vb.array)
	} else {
		vb.ctx.BufferSubData(webgl.ArrayBuffer, 0, vb.array[:vb.index])
	}
}

func (vb *vertexBuffer) capacity() int {
	return len(vb.array)
}

func mismatchedRenderer(p string, d Drawable) string {
	return fmt.Sprintf("block: %s processor given %s drawable %T", p, d.Renderer(), d)
}

// Shader sources are GLSL ES 1.00 bodies; the context prepends its own
// header (precision or version statement).
const (
	projectionUniform = "uProjectionMatrix"
	vertexAttribute   = "aVertex"

	vertexColorVertexShader = `
attribute vec2 aVertex;
attribute vec4 aColor;
varying vec4 vColor;
uniform mat3 uProjectionMatrix;

void main() {
	vColor = aColor;
	vec3 ndc = uProjectionMatrix * vec3(aVertex, 1.0);
	gl_Position = vec4(ndc.xy, 0.0, 1.0);
}
`

	// Colors arrive unpremultiplied; the block blends with
	// (ONE, ONE_MINUS_SRC_ALPHA).
	vertexColorFragmentShader = `
varying vec4 vColor;

void main() {
	gl_FragColor = vColor;
	gl_FragColor.rgb *= gl_FragColor.a;
}
`

	texturedVertexShader = `
attribute vec2 aVertex;
attribute vec2 aTextureCoord;
attribute float aAlpha;
varying vec2 vTextureCoord;
varying float vAlpha;
uniform mat3 uProjectionMatrix;

void main() {
	vTextureCoord = aTextureCoord;
	vAlpha = aAlpha;
	vec3 ndc = uProjectionMatrix * vec3(aVertex, 1.0);
	gl_Position = vec4(ndc.xy, 0.0, 1.0);
}
`

	// Sprite sheets are already premultiplied. The negative LOD bias
	// keeps minified sprites sharp.
	texturedFragmentShader = `
varying vec2 vTextureCoord;
varying float vAlpha;
uniform sampler2D uTexture;

void main() {
	gl_FragColor = texture2D(uTexture, vTextureCoord, -0.7);
	gl_FragColor *= vAlpha;
}
`
)
