// block/block_test.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"image"
	"image/color"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/sprites"
	"github.com/glscene/glblock/webgl"
	"github.com/glscene/glblock/webgl/webgltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////
// Test drawables

type baseDrawable struct {
	hidden   bool
	disposed bool
	updates  int
	block    *Block
	added    int
	removed  int
}

func (d *baseDrawable) IsVisible() bool  { return !d.hidden }
func (d *baseDrawable) IsDisposed() bool { return d.disposed }
func (d *baseDrawable) Update() bool     { d.updates++; return true }

func (d *baseDrawable) OnAddToBlock(b *Block) {
	d.block = b
	d.added++
}

func (d *baseDrawable) OnRemoveFromBlock(b *Block) {
	d.block = nil
	d.removed++
}

type polygon struct {
	baseDrawable
	vertices []float32
}

func (p *polygon) Renderer() Renderer       { return RendererVertexColorPolygons }
func (p *polygon) VertexArray() []float32 { return p.vertices }

// triangle returns a polygon drawable with a single triangle.
func triangle() *polygon {
	return &polygon{vertices: []float32{
		0, 0, 1, 0, 0, 1,
		10, 0, 0, 1, 0, 1,
		0, 10, 0, 0, 1, 1,
	}}
}

type scaledPolygon struct {
	polygon
	scale float64
}

func (p *scaledPolygon) BackingScale() (float64, bool) { return p.scale, p.scale != 0 }

type textured struct {
	baseDrawable
	sprite *sprites.Sprite
}

func (t *textured) Renderer() Renderer      { return RendererTexturedTriangles }
func (t *textured) Sprite() *sprites.Sprite { return t.sprite }

func (t *textured) VertexArray() []float32 {
	uv := math.Extent2D{P0: [2]float32{0, 0}, P1: [2]float32{1, 1}}
	if t.sprite != nil {
		uv = t.sprite.UVBounds
	}
	u0, v0, u1, v1 := uv.P0[0], uv.P0[1], uv.P1[0], uv.P1[1]
	return []float32{
		0, 0, u0, v0, 1,
		10, 0, u1, v0, 1,
		0, 10, u0, v1, 1,
		10, 0, u1, v0, 1,
		10, 10, u1, v1, 1,
		0, 10, u0, v1, 1,
	}
}

type emptyTextured struct {
	textured
}

func (t *emptyTextured) VertexArray() []float32 { return nil }

type custom struct {
	baseDrawable
	drawCalls int
	contexts  []webgl.Context
}

func (c *custom) Renderer() Renderer { return RendererCustom }

func (c *custom) Draw(ctx webgl.Context) int {
	c.contexts = append(c.contexts, ctx)
	for range c.drawCalls {
		ctx.DrawArrays(webgl.Triangles, 0, 3)
	}
	return c.drawCalls
}

///////////////////////////////////////////////////////////////////////////

type testEnv struct {
	block   *Block
	host    *webgltest.Host
	display *webgltest.Display
}

func (e *testEnv) canvas() *webgltest.Canvas {
	return e.host.Current()
}

func (e *testEnv) recorder() *webgl.Recorder {
	return e.canvas().Recorder()
}

func newTestEnv(t *testing.T, config Config) *testEnv {
	t.Helper()
	e := &testEnv{
		host:    webgltest.NewHost(),
		display: &webgltest.Display{Width: 640, Height: 480},
	}
	b, err := New(e.display, e.host, config, nil)
	require.NoError(t, err)
	e.block = b
	return e
}

func solidImage(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestNew(t *testing.T) {
	e := newTestEnv(t, Config{PreserveDrawingBuffer: true})
	b := e.block

	require.Len(t, e.host.Attached, 1)
	c := e.canvas()
	assert.Equal(t, c, b.Canvas())
	assert.True(t, c.HasListeners())
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, 1, c.TransformResets)
	assert.Equal(t, ContextLive, b.ContextState())

	attrs := b.Context().Attributes()
	assert.True(t, attrs.Antialias)
	assert.True(t, attrs.PreserveDrawingBuffer)

	r := e.recorder()
	assert.Equal(t, 1, r.Count("blendFunc"))
	assert.Equal(t, []any{uint32(webgl.One), uint32(webgl.OneMinusSrcAlpha)}, r.Named("blendFunc")[0].Args)
	assert.Equal(t, 2, r.Count("linkProgram"))
	assert.Equal(t, 2, r.Count("createBuffer"))
	assert.Equal(t, 1, r.Count("clear"))

	assert.ErrorIs(t, b.SetFit(FitBounds), ErrFitBoundsUnsupported)
	assert.NoError(t, b.SetFit(FitFullDisplay))
}

func TestNewWithoutContext(t *testing.T) {
	host := webgltest.NewHost()
	host.FailContexts = true
	_, err := New(&webgltest.Display{Width: 10, Height: 10}, host, Config{}, nil)
	assert.ErrorIs(t, err, webgl.ErrContextUnavailable)
	assert.Empty(t, host.Attached)
}

func TestUpdateEmptyBlock(t *testing.T) {
	e := newTestEnv(t, Config{})
	r := e.recorder()
	r.Reset()

	assert.True(t, e.block.Update())
	assert.Equal(t, 0, r.Count("drawArrays"))
	assert.Equal(t, 1, r.Count("clear"))
	assert.Equal(t, 1, r.Count("flush"))
	assert.Equal(t, "flush", r.Calls()[len(r.Calls())-1].Name)
	assert.Equal(t, 0, e.block.Stats().LastFrame.DrawCalls)

	// Nothing changed, so there is nothing to paint.
	assert.False(t, e.block.Update())
	assert.Equal(t, 1, r.Count("flush"))
}

func TestUpdateBatchesVertexColorPolygons(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	for range 3 {
		b.AddDrawable(triangle())
	}
	r := e.recorder()
	r.Reset()

	require.True(t, b.Update())

	fs := b.Stats().LastFrame
	assert.Equal(t, 1, fs.Activations)
	assert.Equal(t, 3, fs.DrawCalls)

	draws := r.Named("drawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, []any{uint32(webgl.Triangles), 0, 9}, draws[0].Args)
	assert.Equal(t, 1, r.Count("useProgram"))
	assert.Equal(t, 0, r.Count("clear"))

	// The batch fits in the initial buffer, so only the written prefix
	// is uploaded.
	subs := r.Named("bufferSubData")
	require.Len(t, subs, 1)
	assert.Equal(t, 54, subs[0].Args[2])
	assert.Equal(t, 0, r.Count("bufferData"))
}

func TestUpdateSkipsInvisibleDrawables(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	visible, hidden := triangle(), triangle()
	hidden.hidden = true
	b.AddDrawable(hidden)
	b.AddDrawable(visible)
	r := e.recorder()
	r.Reset()

	b.Update()
	draws := r.Named("drawArrays")
	require.Len(t, draws, 1)
	assert.Equal(t, 3, draws[0].Args[2])
	assert.Equal(t, 1, b.Stats().LastFrame.Skipped)

	visible.hidden = true
	b.MarkDirty()
	r.Reset()
	b.Update()
	assert.Equal(t, 0, r.Count("drawArrays"))
	assert.Equal(t, 0, r.Count("useProgram"))
	assert.Equal(t, 1, r.Count("clear"))
}

func TestUpdateClearsWhenDrawablesHaveNoVertices(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	p := triangle()
	b.AddDrawable(p)
	require.True(t, b.Update())
	assert.Equal(t, 1, b.Stats().LastFrame.DrawCalls)

	// A collapsed polygon draws nothing, so the frame must be cleared.
	p.vertices = nil
	b.MarkDirtyDrawable(p)
	r := e.recorder()
	r.Reset()
	require.True(t, b.Update())
	assert.Equal(t, 0, r.Count("drawArrays"))
	assert.Equal(t, 1, r.Count("clear"))
	assert.Equal(t, 0, b.Stats().LastFrame.DrawCalls)

	// The same holds for textured drawables with no vertices.
	sp, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 4, 4)
	require.NoError(t, err)
	b.AddDrawable(&emptyTextured{textured{sprite: sp}})
	r.Reset()
	require.True(t, b.Update())
	assert.Equal(t, 0, r.Count("drawArrays"))
	assert.Equal(t, 1, r.Count("clear"))
}

func TestUpdateFlushesOnSpriteSheetChange(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block

	// Each image takes most of a sheet, so each gets its own.
	s1, err := b.AddSpriteSheetImage(solidImage(color.RGBA{R: 255, A: 255}), 1500, 1500)
	require.NoError(t, err)
	s2, err := b.AddSpriteSheetImage(solidImage(color.RGBA{G: 255, A: 255}), 1500, 1500)
	require.NoError(t, err)
	require.Len(t, b.SpriteSheets(), 2)
	require.NotSame(t, s1.Sheet, s2.Sheet)

	for _, sp := range []*sprites.Sprite{s1, s2, s1} {
		b.AddDrawable(&textured{sprite: sp})
	}
	r := e.recorder()
	r.Reset()

	b.Update()

	fs := b.Stats().LastFrame
	assert.Equal(t, 1, fs.Activations)
	assert.Equal(t, 3, fs.DrawCalls)

	draws := r.Named("drawArrays")
	require.Len(t, draws, 3)
	for _, d := range draws {
		assert.Equal(t, 6, d.Args[2])
	}

	var bound []uint32
	for _, c := range r.Named("bindTexture") {
		if tex := c.Args[1].(uint32); tex != 0 {
			bound = append(bound, tex)
		}
	}
	// Both sheets are uploaded first, then used by the three batches.
	t1, t2 := uint32(s1.Sheet.Texture()), uint32(s2.Sheet.Texture())
	assert.Equal(t, []uint32{t1, t2, t1, t2, t1}, bound)
	assert.Equal(t, 2, r.Count("texImage2D"))
}

func TestUpdateSkipsUnloadedSprites(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	b.AddDrawable(&textured{})
	r := e.recorder()
	r.Reset()

	b.Update()
	assert.Equal(t, 0, r.Count("drawArrays"))
	assert.Equal(t, 1, b.Stats().LastFrame.Activations)
	assert.Equal(t, 1, r.Count("clear"))
}

func TestUpdateProcessorGrouping(t *testing.T) {
	sp := func(b *Block) *sprites.Sprite {
		s, err := b.AddSpriteSheetImage(solidImage(color.RGBA{B: 255, A: 255}), 8, 8)
		require.NoError(t, err)
		return s
	}

	e := newTestEnv(t, Config{})
	b := e.block
	s := sp(b)
	b.AddDrawable(triangle())
	b.AddDrawable(&textured{sprite: s})
	b.AddDrawable(triangle())
	b.AddDrawable(&textured{sprite: s})
	r := e.recorder()
	r.Reset()

	b.Update()
	assert.Equal(t, 4, b.Stats().LastFrame.Activations)
	assert.Equal(t, 4, r.Count("useProgram"))
	assert.Equal(t, 4, r.Count("drawArrays"))

	e = newTestEnv(t, Config{})
	b = e.block
	s = sp(b)
	b.AddDrawable(triangle())
	b.AddDrawable(triangle())
	b.AddDrawable(&textured{sprite: s})
	b.AddDrawable(&textured{sprite: s})
	r = e.recorder()
	r.Reset()

	b.Update()
	assert.Equal(t, 2, b.Stats().LastFrame.Activations)
	assert.Equal(t, 2, r.Count("drawArrays"))
	assert.Equal(t, 3, b.Stats().LastFrame.DrawCalls)
}

func TestUpdateCustomDrawables(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	c := &custom{drawCalls: 2}
	b.AddDrawable(c)
	b.AddDrawable(&custom{})
	r := e.recorder()
	r.Reset()

	b.Update()
	require.Len(t, c.contexts, 1)
	assert.Same(t, r, c.contexts[0])
	assert.Equal(t, 2, b.Stats().LastFrame.DrawCalls)
	assert.Equal(t, 2, r.Count("drawArrays"))
	assert.Equal(t, 0, r.Count("clear"))
}

func TestProjection(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	b.AddDrawable(triangle())
	r := e.recorder()
	r.Reset()
	b.Update()

	w, h := float32(e.display.Width), float32(e.display.Height)
	m := b.ProjectionMatrix()
	p0 := m.TransformPoint([2]float32{0, 0})
	p1 := m.TransformPoint([2]float32{w, h})
	assert.InDelta(t, -1, p0[0], 1e-6)
	assert.InDelta(t, 1, p0[1], 1e-6)
	assert.InDelta(t, 1, p1[0], 1e-6)
	assert.InDelta(t, -1, p1[1], 1e-6)

	u := r.Named("uniformMatrix3fv")
	require.Len(t, u, 1)
	cm := m.ColumnMajor()
	assert.Equal(t, cm[:], u[0].Args[2])
	assert.Equal(t, false, u[0].Args[1])

	// Resizing the display resizes the canvas and the projection.
	e.display.Width = 320
	b.MarkDirty()
	b.Update()
	assert.Equal(t, [2]float64{320, 480}, e.canvas().CSSSize)
	assert.InDelta(t, 1, b.ProjectionMatrix().TransformPoint([2]float32{320, 0})[0], 1e-6)
}

func TestBackingScale(t *testing.T) {
	host := webgltest.NewHost()
	host.DevicePixelRatio = 2
	host.Samples = 0
	display := &webgltest.Display{Width: 100.5, Height: 50}

	b, err := New(display, host, Config{AllowBackingScaleAntialiasing: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.0, b.BackingScale())

	b.Update()
	c := host.Current()
	assert.Equal(t, [2]int{402, 200}, c.PixelSize)
	assert.Equal(t, [2]float64{100.5, 50}, c.CSSSize)
	assert.Equal(t, []any{0, 0, 402, 200}, c.Recorder().Named("viewport")[0].Args)

	host = webgltest.NewHost()
	host.DevicePixelRatio = 1.5
	b, err = New(display, host, Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1.5, b.BackingScale())
	b.Update()
	assert.Equal(t, [2]int{151, 75}, host.Current().PixelSize)
}

func TestBackingScaleOverride(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	sd := &scaledPolygon{polygon: *triangle(), scale: 2}
	b.AddDrawable(sd)
	b.Update()
	assert.Equal(t, 2.0, b.BackingScale())
	assert.Equal(t, [2]int{1280, 960}, e.canvas().PixelSize)

	// Only honored for the block's only drawable.
	b.AddDrawable(triangle())
	b.Update()
	assert.Equal(t, 1.0, b.BackingScale())
	assert.Equal(t, [2]int{640, 480}, e.canvas().PixelSize)
}

func TestVertexBufferDoubling(t *testing.T) {
	var proj [9]float32
	p := NewVertexColorPolygonsProcessor(&proj)
	r := webgl.NewRecorder(webgl.ContextAttributes{})
	require.NoError(t, p.InitializeContext(r))
	assert.Equal(t, InitialVertexCapacity, r.BufferSize(p.vb.buffer))

	rng := rand.New(rand.NewPCG(1, 2))
	for frame := range 20 {
		p.Activate()
		total := 0
		for range rng.IntN(20) {
			n := VertexColorStride * 3 * (1 + rng.IntN(30))
			d := &polygon{vertices: make([]float32, n)}
			p.ProcessDrawable(d)
			total += n

			c := p.Capacity()
			assert.GreaterOrEqual(t, c, total, "frame %d", frame)
			assert.True(t, math.IsPowerOfTwoMultiple(c, InitialVertexCapacity), "capacity %d", c)
		}
		r.Reset()
		p.Deactivate()

		if total > 0 {
			// The GL buffer always matches the array after a draw.
			assert.Equal(t, p.Capacity(), r.BufferSize(p.vb.buffer))
			assert.Equal(t, 1, r.Count("bufferData")+r.Count("bufferSubData"))
			assert.Equal(t, []any{uint32(webgl.Triangles), 0, total / VertexColorStride}, r.Named("drawArrays")[0].Args)
		} else {
			assert.Equal(t, 0, r.Count("drawArrays"))
		}
	}
}

func TestProcessorsRejectMismatchedDrawables(t *testing.T) {
	var proj [9]float32
	r := webgl.NewRecorder(webgl.ContextAttributes{})

	vc := NewVertexColorPolygonsProcessor(&proj)
	require.NoError(t, vc.InitializeContext(r))
	tx := NewTexturedTrianglesProcessor(&proj)
	require.NoError(t, tx.InitializeContext(r))
	cu := NewCustomProcessor()
	require.NoError(t, cu.InitializeContext(r))

	assert.Panics(t, func() { vc.ProcessDrawable(&textured{}) })
	assert.Panics(t, func() { tx.ProcessDrawable(triangle()) })
	assert.Panics(t, func() { cu.ProcessDrawable(triangle()) })
	assert.NotPanics(t, func() { cu.ProcessDrawable(&custom{}) })
}

func TestShaderFailure(t *testing.T) {
	var proj [9]float32
	r := webgl.NewRecorder(webgl.ContextAttributes{})
	r.FailShaderCompile = true
	assert.Error(t, NewTexturedTrianglesProcessor(&proj).InitializeContext(r))
	assert.Error(t, NewVertexColorPolygonsProcessor(&proj).InitializeContext(r))
}

func TestContextLossIsIdempotent(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	c := e.canvas()

	ev := c.LoseContext()
	assert.True(t, ev.DefaultPrevented())
	assert.False(t, c.Visible())
	assert.Equal(t, ContextLost, b.ContextState())
	assert.True(t, b.IsDirty())

	ev = c.LoseContext()
	assert.False(t, ev.DefaultPrevented())
	assert.False(t, c.Visible())
	assert.Equal(t, ContextLost, b.ContextState())
	assert.Equal(t, 1, b.Stats().ContextLoss)

	// Restoration when nothing was lost does nothing.
	e2 := newTestEnv(t, Config{})
	e2.block.OnContextRestoration(&webgl.Event{})
	assert.Equal(t, 0, e2.block.Stats().Restorations)
}

func TestContextLossAndRestoration(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	c := e.canvas()

	var changes []webgl.Context
	remove := b.OnContextChanged(func(ctx webgl.Context) { changes = append(changes, ctx) })
	defer remove()

	_, err := b.AddSpriteSheetImage(solidImage(color.RGBA{R: 255, A: 255}), 1500, 1500)
	require.NoError(t, err)
	sp, err := b.AddSpriteSheetImage(solidImage(color.RGBA{G: 255, A: 255}), 1500, 1500)
	require.NoError(t, err)
	b.AddDrawable(&textured{sprite: sp})
	b.AddDrawable(triangle())
	require.True(t, b.Update())

	lost := b.Context()
	c.LoseContext()
	assert.False(t, c.Visible())

	for range 5 {
		b.MarkDirty()
		assert.True(t, b.Update())
	}
	assert.Equal(t, ContextLost, b.ContextState())

	require.True(t, c.RestoreContext())
	restored := c.Recorder()
	assert.NotSame(t, lost, restored)
	assert.Same(t, restored, b.Context())
	assert.Equal(t, []webgl.Context{restored}, changes)
	assert.Equal(t, ContextLive, b.ContextState())
	assert.True(t, c.Visible())
	assert.Equal(t, 1, b.Stats().Restorations)

	// Each sprite sheet got one new texture, and the processors new
	// programs and buffers.
	assert.Equal(t, 2, restored.Count("createTexture"))
	assert.Equal(t, 2, restored.Count("linkProgram"))
	assert.Equal(t, 2, restored.Count("createBuffer"))

	restored.Reset()
	require.True(t, b.Update())
	assert.Equal(t, 2, restored.Count("texImage2D"))
	assert.Equal(t, 2, restored.Count("drawArrays"))

	// A second restoration is ignored.
	b.OnContextRestoration(&webgl.Event{})
	assert.Equal(t, 1, b.Stats().Restorations)
}

func TestShaderFailureOnRestoredContext(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	c := e.canvas()
	sp, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 4, 4)
	require.NoError(t, err)
	b.AddDrawable(triangle())
	b.AddDrawable(&textured{sprite: sp})
	require.True(t, b.Update())

	c.LoseContext()
	e.host.FailShaderCompile = true
	require.True(t, c.RestoreContext())
	restored := c.Recorder()
	assert.Same(t, restored, b.Context())

	// Nothing from the lost context may be used on the new one.
	restored.Reset()
	require.True(t, b.Update())
	assert.Equal(t, 0, restored.Count("useProgram"))
	assert.Equal(t, 0, restored.Count("drawArrays"))
	assert.Equal(t, 1, restored.Count("clear"))
	assert.Equal(t, 0, b.Stats().LastFrame.DrawCalls)
}

func TestAggressiveContextRecreation(t *testing.T) {
	e := newTestEnv(t, Config{AggressiveContextRecreation: true})
	b := e.block
	_, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 4, 4)
	require.NoError(t, err)
	old := e.canvas()

	var deferred []func()
	b.SetDeferFunc(func(fn func()) { deferred = append(deferred, fn) })

	old.LoseContext()
	b.Update()
	assert.Equal(t, ContextRecovering, b.ContextState())
	b.MarkDirty()
	b.Update()
	require.Len(t, deferred, 1, "only one rebuild may be pending")

	deferred[0]()
	assert.Equal(t, ContextLive, b.ContextState())
	require.Len(t, e.host.Canvases, 2)
	c := e.canvas()
	assert.NotSame(t, old, c)
	assert.Same(t, c, b.Canvas())
	assert.True(t, old.Disposed())
	assert.False(t, old.HasListeners())
	assert.True(t, c.HasListeners())
	assert.NotEqual(t, old.ID(), c.ID())
	assert.Equal(t, 1, c.Recorder().Count("createTexture"))
	assert.Len(t, e.host.Attached, 1)
}

func TestAggressiveRecreationWithDefaultDeferral(t *testing.T) {
	e := newTestEnv(t, Config{AggressiveContextRecreation: true})
	b := e.block
	e.canvas().LoseContext()

	b.Update()
	assert.Equal(t, ContextRecovering, b.ContextState())
	require.Len(t, e.host.Canvases, 1)

	// The rebuild runs at the start of the next update.
	b.Update()
	assert.Equal(t, ContextLive, b.ContextState())
	assert.Len(t, e.host.Canvases, 2)
}

func TestFailedRebuildKeepsCanvas(t *testing.T) {
	e := newTestEnv(t, Config{AggressiveContextRecreation: true})
	b := e.block
	old := e.canvas()
	old.LoseContext()

	e.host.FailContexts = true
	b.Update()
	assert.Equal(t, 1, b.RunDeferred())

	assert.Same(t, old, b.Canvas())
	assert.False(t, old.Disposed())
	assert.Equal(t, ContextLost, b.ContextState())
	assert.True(t, b.IsDirty(), "a failed rebuild should be retried")

	// A restoration of the old canvas still works.
	e.host.FailContexts = false
	require.True(t, old.RestoreContext())
	assert.Equal(t, ContextLive, b.ContextState())
	assert.Equal(t, 0, b.RunDeferred())
}

func TestSpriteTooLarge(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	_, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 16, 16)
	require.NoError(t, err)
	require.Len(t, b.SpriteSheets(), 1)

	sp, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 4096, 10)
	assert.ErrorIs(t, err, ErrSpriteTooLarge)
	assert.Nil(t, sp)
	// The sheet created for the attempt stays.
	assert.Len(t, b.SpriteSheets(), 2)
	assert.Equal(t, 0, b.SpriteSheets()[1].Len())
}

func TestRemoveSpriteSheetImage(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	img := solidImage(color.RGBA{A: 255})
	sp, err := b.AddSpriteSheetImage(img, 16, 16)
	require.NoError(t, err)
	again, err := b.AddSpriteSheetImage(img, 16, 16)
	require.NoError(t, err)
	assert.Same(t, sp, again)

	b.RemoveSpriteSheetImage(sp)
	assert.Equal(t, 1, sp.Sheet.Len())
	b.RemoveSpriteSheetImage(sp)
	assert.Equal(t, 0, sp.Sheet.Len())
	assert.Len(t, b.SpriteSheets(), 1)

	b.RemoveSpriteSheetImage(nil)
}

func TestMarkDirtyDrawable(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	d := triangle()
	b.AddDrawable(d)
	b.Update()

	b.MarkDirtyDrawable(d)
	assert.True(t, b.IsDirty())
	b.Update()
	assert.Equal(t, 1, d.updates)
	assert.Equal(t, 1, b.Stats().LastFrame.Updated)

	assert.Panics(t, func() { b.MarkDirtyDrawable(nil) })
	d.disposed = true
	assert.Panics(t, func() { b.MarkDirtyDrawable(d) })
}

func TestRemoveDrawableScrubsDirtyList(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	d, other := triangle(), triangle()
	b.AddDrawable(d)
	b.AddDrawable(other)
	b.MarkDirtyDrawable(d)
	b.MarkDirtyDrawable(other)
	b.MarkDirtyDrawable(d)

	b.RemoveDrawable(d)
	assert.Equal(t, 1, d.removed)
	assert.Nil(t, d.block)

	b.Update()
	assert.Equal(t, 0, d.updates)
	assert.Equal(t, 1, other.updates)

	// Removing it again is harmless.
	b.RemoveDrawable(d)
	assert.Equal(t, 1, d.removed)
}

func TestDrawableList(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	assert.Nil(t, b.FirstDrawable())
	assert.Nil(t, b.LastDrawable())

	rng := rand.New(rand.NewPCG(3, 4))
	var model []Drawable
	for i := range 500 {
		switch op := rng.IntN(3); {
		case op == 0 || len(model) == 0:
			d := triangle()
			b.AddDrawable(d)
			model = append(model, d)
			assert.Same(t, b, d.block)
		case op == 1:
			d := triangle()
			at := rng.IntN(len(model))
			b.InsertDrawableBefore(d, model[at])
			model = slices.Insert(model, at, Drawable(d))
		default:
			at := rng.IntN(len(model))
			b.RemoveDrawable(model[at])
			model = slices.Delete(model, at, at+1)
		}

		assert.Equal(t, b.FirstDrawable() == nil, b.LastDrawable() == nil, "step %d", i)
		got := slices.Collect(b.Drawables())
		require.Equal(t, len(model), len(got), "step %d", i)
		for j := range model {
			require.True(t, model[j] == got[j], "step %d: mismatch at %d", i, j)
		}
		if len(model) > 0 {
			assert.True(t, model[0] == b.FirstDrawable())
			assert.True(t, model[len(model)-1] == b.LastDrawable())
		}
		assert.Equal(t, len(model), b.DrawableCount())
	}

	d := triangle()
	b.AddDrawable(d)
	assert.Panics(t, func() { b.AddDrawable(d) })
}

func TestPreserveDrawingBuffer(t *testing.T) {
	e := newTestEnv(t, Config{PreserveDrawingBuffer: true})
	b := e.block
	r := e.recorder()

	r.Reset()
	b.Update()
	// Cleared up front, and not again even though nothing was drawn.
	assert.Equal(t, []string{"clear", "viewport", "flush"}, r.Names("clear", "viewport", "flush"))

	b.AddDrawable(triangle())
	r.Reset()
	b.Update()
	assert.Equal(t, []string{"clear", "viewport", "drawArrays", "flush"},
		r.Names("clear", "viewport", "drawArrays", "flush"))
}

func TestDisposeAndReinitialize(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	d := triangle()
	b.AddDrawable(d)
	_, err := b.AddSpriteSheetImage(solidImage(color.RGBA{A: 255}), 4, 4)
	require.NoError(t, err)
	old := e.canvas()

	b.Dispose()
	assert.True(t, b.IsDisposed())
	assert.True(t, old.Disposed())
	assert.Empty(t, e.host.Attached)
	assert.Equal(t, 1, d.removed)
	assert.Equal(t, 0, b.DrawableCount())
	b.MarkDirty()
	assert.False(t, b.Update())

	_, err = b.Initialize(e.display)
	require.NoError(t, err)
	assert.False(t, b.IsDisposed())
	require.Len(t, e.host.Attached, 1)
	c := e.canvas()
	assert.NotSame(t, old, c)
	// The sprite sheet survived and lives on the new context.
	assert.Len(t, b.SpriteSheets(), 1)
	assert.Equal(t, 1, c.Recorder().Count("createTexture"))
	assert.True(t, b.Update())
}

func TestHooksMarkDirty(t *testing.T) {
	e := newTestEnv(t, Config{})
	b := e.block
	b.Update()
	assert.False(t, b.IsDirty())
	b.OnIntervalChange()
	assert.True(t, b.IsDirty())
	b.Update()
	b.OnPotentiallyMovedDrawable(triangle())
	assert.True(t, b.IsDirty())
}
