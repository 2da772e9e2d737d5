// drawables/polygon.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package drawables

import (
	"image/color"

	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/math"
)

// Polygon is a filled polygon, possibly with holes, drawn with a single
// color by the block's vertex-color processor.
type Polygon struct {
	node

	color     [4]float32
	transform math.Matrix3

	// tris holds the triangulation in the polygon's own coordinates.
	tris     [][3][2]float32
	vertices []float32
}

// NewPolygon returns a polygon with the given outer ring and holes,
// filled with c. Rings need not be closed, and their winding does not
// matter.
func NewPolygon(c color.Color, outer [][2]float32, holes ...[][2]float32) *Polygon {
	p := &Polygon{transform: math.Identity3x3()}
	p.self = p
	p.color = colorToFloats(c)
	p.tris = triangulate(outer, holes)
	p.rebuild()
	return p
}

func colorToFloats(c color.Color) [4]float32 {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return [4]float32{float32(nc.R) / 255, float32(nc.G) / 255, float32(nc.B) / 255, float32(nc.A) / 255}
}

func (p *Polygon) Renderer() block.Renderer { return block.RendererVertexColorPolygons }

func (p *Polygon) VertexArray() []float32 { return p.vertices }

// Update regenerates the polygon's vertices.
func (p *Polygon) Update() bool {
	p.rebuild()
	return true
}

func (p *Polygon) rebuild() {
	p.vertices = p.vertices[:0]
	for _, tri := range p.tris {
		for _, v := range tri {
			v = p.transform.TransformPoint(v)
			p.vertices = append(p.vertices, v[0], v[1], p.color[0], p.color[1], p.color[2], p.color[3])
		}
	}
}

// TriangleCount returns the number of triangles the polygon was
// triangulated into.
func (p *Polygon) TriangleCount() int {
	return len(p.tris)
}

func (p *Polygon) SetColor(c color.Color) {
	p.color = colorToFloats(c)
	p.invalidate()
}

// SetShape replaces the polygon's outline.
func (p *Polygon) SetShape(outer [][2]float32, holes ...[][2]float32) {
	p.tris = triangulate(outer, holes)
	p.invalidate()
}

// SetTransform sets the matrix taking the polygon's coordinates to
// display coordinates.
func (p *Polygon) SetTransform(m math.Matrix3) {
	p.transform = m
	p.invalidate()
}

func (p *Polygon) Transform() math.Matrix3 {
	return p.transform
}

var _ block.VertexDrawable = (*Polygon)(nil)
