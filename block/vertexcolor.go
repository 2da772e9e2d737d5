// block/vertexcolor.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"github.com/glscene/glblock/webgl"
)

// VertexColorStride is the number of floats per vertex-color vertex:
// x, y, r, g, b, a.
const VertexColorStride = 6

// VertexColorPolygonsProcessor batches the triangles of consecutive
// vertex-color drawables into a single draw call.
//
// Its draw count is the number of drawables that contributed vertices,
// not the number of drawArrays calls, which is always one per activation
// with any content.
type VertexColorPolygonsProcessor struct {
	projection *[9]float32
	program    *webgl.ShaderProgram
	vb         vertexBuffer
	drawCount  int
}

func NewVertexColorPolygonsProcessor(projection *[9]float32) *VertexColorPolygonsProcessor {
	return &VertexColorPolygonsProcessor{
		projection: projection,
		vb:         makeVertexBuffer(),
	}
}

func (p *VertexColorPolygonsProcessor) InitializeContext(ctx webgl.Context) error {
	program, err := webgl.NewShaderProgram(ctx, vertexColorVertexShader, vertexColorFragmentShader,
		[]string{vertexAttribute, "aColor"}, []string{projectionUniform})
	if err != nil {
		// The old program belongs to a dead context.
		p.program = nil
		return err
	}
	p.program = program
	p.vb.initializeContext(ctx)
	return nil
}

func (p *VertexColorPolygonsProcessor) Activate() {
	p.vb.index = 0
	p.drawCount = 0
	if p.program != nil {
		p.program.Use()
	}
}

func (p *VertexColorPolygonsProcessor) ProcessDrawable(d Drawable) {
	vd, ok := d.(VertexDrawable)
	if !ok || d.Renderer() != RendererVertexColorPolygons {
		panic(mismatchedRenderer("vertex-color", d))
	}

	if p.program == nil {
		return
	}
	if v := vd.VertexArray(); len(v) > 0 {
		p.vb.add(v)
		p.drawCount++
	}
}

func (p *VertexColorPolygonsProcessor) Deactivate() int {
	if p.program == nil {
		return 0
	}
	if p.vb.index > 0 {
		p.draw()
	}
	p.program.Unuse()
	return p.drawCount
}

func (p *VertexColorPolygonsProcessor) draw() {
	ctx := p.vb.ctx
	ctx.UniformMatrix3fv(p.program.Uniform(projectionUniform), false, p.projection[:])

	p.vb.upload()

	const sz = 4 // sizeof(float32)
	ctx.VertexAttribPointer(p.program.Attribute(vertexAttribute), 2, webgl.Float, false, VertexColorStride*sz, 0)
	ctx.VertexAttribPointer(p.program.Attribute("aColor"), 4, webgl.Float, false, VertexColorStride*sz, 2*sz)

	ctx.DrawArrays(webgl.Triangles, 0, p.vb.index/VertexColorStride)

	p.vb.index = 0
}

// Capacity returns the current size of the vertex array, in floats.
func (p *VertexColorPolygonsProcessor) Capacity() int {
	return p.vb.capacity()
}
