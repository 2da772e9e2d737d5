// cmd/glblock/scene.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package main

import (
	"image"
	"image/color"

	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/drawables"
	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/webgl"
)

// Scene is the demo's content: rotating polygons, a row of images and a
// sweep line drawn by a custom drawable, all in one block.
type Scene struct {
	block   *block.Block
	display block.Display

	polygons []*drawables.Polygon
	centers  [][2]float32
	images   []*drawables.Image
	showing  bool

	sweep       *sweep
	sweepNode   *drawables.Custom
	removeSweep func()
}

func NewScene(b *block.Block, display block.Display, config Config, images []image.Image) *Scene {
	s := &Scene{block: b, display: display, sweep: &sweep{}}
	s.sweepNode = drawables.NewCustom(s.sweep.draw)

	w, h := display.Size()
	cols := max(1, int(math.Sqrt(float32(config.Polygons))))
	for i := range config.Polygons {
		r := float32(20 + 10*(i%3))
		var p *drawables.Polygon
		if i%2 == 0 {
			p = drawables.NewPolygon(paletteColor(i), star(r, 5))
		} else {
			p = drawables.NewPolygon(paletteColor(i), star(r, 7), square(r/3))
		}
		col, row := i%cols, i/cols
		c := [2]float32{
			float32(w) * (float32(col) + 0.5) / float32(cols),
			float32(h) * 0.7 * (float32(row) + 0.5) / float32((config.Polygons+cols-1)/cols),
		}
		p.SetTransform(math.Identity3x3().Translate(c[0], c[1]))
		b.AddDrawable(p)
		s.polygons = append(s.polygons, p)
		s.centers = append(s.centers, c)
	}

	x := float32(20)
	for i, img := range images {
		a := Asset{}
		if i < len(config.Assets) {
			a = config.Assets[i]
		}
		iw, ih := a.Width, a.Height
		if iw == 0 || ih == 0 {
			iw, ih = img.Bounds().Dx(), img.Bounds().Dy()
		}
		d := drawables.NewImage(img, iw, ih)
		d.SetTransform(math.Identity3x3().Translate(x, float32(h)*0.75))
		if a.Scale > 0 {
			d.SetBackingScale(a.Scale)
		}
		x += float32(iw) + 20
		s.images = append(s.images, d)
	}
	b.AddDrawable(s.sweepNode)
	s.ToggleImages()

	s.removeSweep = b.OnContextChanged(s.sweep.reset)

	return s
}

// Animate positions everything for time t, in seconds.
func (s *Scene) Animate(t float64) {
	for i, p := range s.polygons {
		speed := float32(1 + i%4)
		if i%2 == 1 {
			speed = -speed
		}
		c := s.centers[i]
		p.SetTransform(math.Identity3x3().Translate(c[0], c[1]).Rotate(speed * float32(t) / 2))
	}

	w, _ := s.display.Size()
	period := 4.0
	f := t/period - float64(int(t/period))
	s.sweep.x = float32(f * w)
	s.sweepNode.Invalidate()
}

// ToggleImages adds the images to the block or removes them. Removed
// images stay cached in their sprite sheets, so adding them back is
// cheap.
func (s *Scene) ToggleImages() {
	s.showing = !s.showing
	for _, d := range s.images {
		if s.showing {
			s.block.InsertDrawableBefore(d, s.sweepNode)
		} else {
			s.block.RemoveDrawable(d)
		}
	}
}

func (s *Scene) Dispose() {
	s.removeSweep()
	for _, p := range s.polygons {
		p.Dispose()
	}
	for _, d := range s.images {
		d.Dispose()
	}
	s.sweepNode.Dispose()
}

func star(r float32, points int) [][2]float32 {
	var pts [][2]float32
	for i := range 2 * points {
		a := math.Radians(float32(i) * 180 / float32(points))
		rr := r
		if i%2 == 1 {
			rr = r / 2
		}
		pts = append(pts, [2]float32{rr * math.Sin(a), -rr * math.Cos(a)})
	}
	return pts
}

func square(r float32) [][2]float32 {
	return [][2]float32{{-r, -r}, {r, -r}, {r, r}, {-r, r}}
}

func paletteColor(i int) color.Color {
	palette := []color.NRGBA{
		{R: 0xe6, G: 0x55, B: 0x3c, A: 0xff},
		{R: 0x3c, G: 0x9d, B: 0xe6, A: 0xff},
		{R: 0x5c, G: 0xc9, B: 0x6e, A: 0xd0},
		{R: 0xf2, G: 0xc1, B: 0x4e, A: 0xff},
		{R: 0xa0, G: 0x6c, B: 0xd5, A: 0xa0},
	}
	return palette[i%len(palette)]
}

// checkerboard returns a generated image for when no assets are
// configured.
func checkerboard(size, cell int, c0, c1 color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, c0)
			} else {
				img.Set(x, y, c1)
			}
		}
	}
	return img
}

///////////////////////////////////////////////////////////////////////////
// sweep

const (
	sweepVertexShader = `
attribute vec2 aVertex;
uniform mat3 uProjectionMatrix;

void main() {
	vec3 ndc = uProjectionMatrix * vec3(aVertex, 1.0);
	gl_Position = vec4(ndc.xy, 0.0, 1.0);
}
`
	sweepFragmentShader = `
void main() {
	gl_FragColor = vec4(0.2, 0.2, 0.2, 0.2);
}
`
)

// sweep draws a translucent vertical bar with its own program, which
// has to be rebuilt for each new context.
type sweep struct {
	x float32

	ctx     webgl.Context
	program *webgl.ShaderProgram
	buffer  webgl.Buffer
}

func (s *sweep) reset(webgl.Context) {
	s.ctx = nil
}

func (s *sweep) draw(ctx webgl.Context, projection math.Matrix3) int {
	if ctx != s.ctx {
		p, err := webgl.NewShaderProgram(ctx, sweepVertexShader, sweepFragmentShader,
			[]string{"aVertex"}, []string{"uProjectionMatrix"})
		if err != nil {
			return 0
		}
		s.ctx, s.program, s.buffer = ctx, p, ctx.CreateBuffer()
	}

	// The projection maps the display's height to [-1,1].
	h := 2 / -projection[1][1]
	x0, x1 := s.x, s.x+6
	v := []float32{x0, 0, x1, 0, x0, h, x1, 0, x1, h, x0, h}

	s.program.Use()
	m := projection.ColumnMajor()
	ctx.UniformMatrix3fv(s.program.Uniform("uProjectionMatrix"), false, m[:])
	ctx.BindBuffer(webgl.ArrayBuffer, s.buffer)
	ctx.BufferData(webgl.ArrayBuffer, v, webgl.DynamicDraw)
	ctx.VertexAttribPointer(s.program.Attribute("aVertex"), 2, webgl.Float, false, 0, 0)
	ctx.DrawArrays(webgl.Triangles, 0, len(v)/2)
	s.program.Unuse()

	return 1
}
