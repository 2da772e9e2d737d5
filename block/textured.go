// block/textured.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"github.com/glscene/glblock/sprites"
	"github.com/glscene/glblock/webgl"
)

// TexturedStride is the number of floats per textured vertex: x, y, u,
// v, alpha.
const TexturedStride = 5

// TexturedTrianglesProcessor batches the triangles of consecutive
// textured drawables. A draw call can only use one texture, so the batch
// is flushed whenever the sprite sheet changes.
type TexturedTrianglesProcessor struct {
	projection *[9]float32
	program    *webgl.ShaderProgram
	vb         vertexBuffer
	drawCount  int

	currentSheet *sprites.SpriteSheet
}

func NewTexturedTrianglesProcessor(projection *[9]float32) *TexturedTrianglesProcessor {
	return &TexturedTrianglesProcessor{
		projection: projection,
		vb:         makeVertexBuffer(),
	}
}

func (p *TexturedTrianglesProcessor) InitializeContext(ctx webgl.Context) error {
	program, err := webgl.NewShaderProgram(ctx, texturedVertexShader, texturedFragmentShader,
		[]string{vertexAttribute, "aTextureCoord", "aAlpha"}, []string{projectionUniform, "uTexture"})
	if err != nil {
		p.program = nil
		return err
	}
	p.program = program
	p.vb.initializeContext(ctx)
	return nil
}

func (p *TexturedTrianglesProcessor) Activate() {
	p.vb.index = 0
	p.drawCount = 0
	p.currentSheet = nil
	if p.program != nil {
		p.program.Use()
	}
}

func (p *TexturedTrianglesProcessor) ProcessDrawable(d Drawable) {
	td, ok := d.(TexturedDrawable)
	if !ok || d.Renderer() != RendererTexturedTriangles {
		panic(mismatchedRenderer("textured", d))
	}

	if p.program == nil {
		return
	}
	sprite := td.Sprite()
	if sprite == nil || sprite.Sheet == nil {
		// Not loaded yet.
		return
	}
	v := td.VertexArray()
	if len(v) == 0 {
		return
	}

	if p.currentSheet != nil && p.currentSheet != sprite.Sheet {
		p.draw()
	}
	p.currentSheet = sprite.Sheet

	p.vb.add(v)
}

func (p *TexturedTrianglesProcessor) Deactivate() int {
	if p.program == nil {
		return 0
	}
	if p.currentSheet != nil {
		p.draw()
	}
	p.program.Unuse()
	return p.drawCount
}

func (p *TexturedTrianglesProcessor) draw() {
	p.drawCount++

	ctx := p.vb.ctx
	ctx.UniformMatrix3fv(p.program.Uniform(projectionUniform), false, p.projection[:])

	p.vb.upload()

	const sz = 4 // sizeof(float32)
	ctx.VertexAttribPointer(p.program.Attribute(vertexAttribute), 2, webgl.Float, false, TexturedStride*sz, 0)
	ctx.VertexAttribPointer(p.program.Attribute("aTextureCoord"), 2, webgl.Float, false, TexturedStride*sz, 2*sz)
	ctx.VertexAttribPointer(p.program.Attribute("aAlpha"), 1, webgl.Float, false, TexturedStride*sz, 4*sz)

	ctx.ActiveTexture(webgl.Texture0)
	ctx.BindTexture(webgl.Texture2D, p.currentSheet.Texture())
	ctx.Uniform1i(p.program.Uniform("uTexture"), 0)

	ctx.DrawArrays(webgl.Triangles, 0, p.vb.index/TexturedStride)

	ctx.BindTexture(webgl.Texture2D, 0)

	p.vb.index = 0
	p.currentSheet = nil
}

// Capacity returns the current size of the vertex array, in floats.
func (p *TexturedTrianglesProcessor) Capacity() int {
	return p.vb.capacity()
}
