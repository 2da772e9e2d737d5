// block/custom.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"github.com/glscene/glblock/webgl"
)

// CustomProcessor has each drawable draw itself; nothing is batched.
type CustomProcessor struct {
	ctx       webgl.Context
	drawCount int
}

func NewCustomProcessor() *CustomProcessor {
	return &CustomProcessor{}
}

func (p *CustomProcessor) InitializeContext(ctx webgl.Context) error {
	p.ctx = ctx
	return nil
}

func (p *CustomProcessor) Activate() {
	p.drawCount = 0
}

func (p *CustomProcessor) ProcessDrawable(d Drawable) {
	cd, ok := d.(CustomDrawable)
	if !ok || d.Renderer() != RendererCustom {
		panic(mismatchedRenderer("custom", d))
	}
	p.drawCount += cd.Draw(p.ctx)
}

func (p *CustomProcessor) Deactivate() int {
	return p.drawCount
}
