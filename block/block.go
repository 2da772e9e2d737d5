// block/block.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package block implements a WebGL rendering block: a canvas with a GL
// context that paints an ordered list of drawables, batching runs of
// drawables of the same kind into as few draw calls as possible, and that
// recovers from the loss of its context.
package block

import (
	"errors"
	"fmt"
	"image"
	"iter"
	"sync/atomic"

	"github.com/glscene/glblock/log"
	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/sprites"
	"github.com/glscene/glblock/util"
	"github.com/glscene/glblock/webgl"
)

var canvasCounter atomic.Int64

// Block owns a canvas and its GL context, the three processors, the
// sprite sheets used by its textured drawables, and the ordered list of
// drawables it paints. It must only be used from the goroutine that owns
// the GL context.
type Block struct {
	display Display
	host    webgl.Host
	config  Config
	lg      *log.Logger

	canvas webgl.Canvas
	ctx    webgl.Context
	state  ContextState

	drawables      drawableList
	dirtyDrawables []Drawable
	spriteSheets   []*sprites.SpriteSheet

	// originalBackingScale is derived from the context; backingScale is
	// what is applied, which differs when a drawable overrides it.
	originalBackingScale float64
	backingScale         float64
	pixelSize            [2]int
	displaySize          [2]float64

	projection      math.Matrix3
	projectionArray [9]float32

	custom      *CustomProcessor
	vertexColor *VertexColorPolygonsProcessor
	textured    *TexturedTrianglesProcessor

	contextChanged util.Emitter[webgl.Context]

	deferred       util.DeferredQueue
	deferFunc      func(func())
	rebuildPending bool

	fit      Fit
	dirty    bool
	fitDirty bool
	disposed bool

	stats Stats
}

// New creates a block that fills display, with canvases created by host.
// It fails if no GL context can be created at all.
func New(display Display, host webgl.Host, config Config, lg *log.Logger) (*Block, error) {
	b := &Block{
		host:   host,
		config: config,
		lg:     lg,
	}
	b.drawables.init()
	b.deferFunc = b.deferred.Defer

	b.custom = NewCustomProcessor()
	b.vertexColor = NewVertexColorPolygonsProcessor(&b.projectionArray)
	b.textured = NewTexturedTrianglesProcessor(&b.projectionArray)

	lg.Debug("creating block", "config", config)

	return b.Initialize(display)
}

// Initialize (re)configures the block to fill display; a disposed block
// must be initialized again before it is used. The processors, sprite
// sheets and listeners are kept across initializations.
func (b *Block) Initialize(display Display) (*Block, error) {
	b.display = display
	b.fit = FitFullDisplay
	b.disposed = false
	b.dirty = true
	b.fitDirty = true
	b.dirtyDrawables = b.dirtyDrawables[:0]

	if b.canvas == nil {
		if err := b.rebuildCanvas(); err != nil {
			return nil, err
		}
	}

	b.ctx.Clear(webgl.ColorBufferBit)
	b.canvas.ResetTransform()

	return b, nil
}

// SetDeferFunc replaces the function used to schedule canvas rebuilds.
// By default they run at the start of the next Update.
func (b *Block) SetDeferFunc(fn func(func())) {
	if fn == nil {
		fn = b.deferred.Defer
	}
	b.deferFunc = fn
}

func (b *Block) contextAttributes() webgl.ContextAttributes {
	return webgl.ContextAttributes{
		Antialias:             true,
		PreserveDrawingBuffer: b.config.PreserveDrawingBuffer,
	}
}

// rebuildCanvas replaces the block's canvas with a new one. If no context
// can be created for the new canvas and the block already has a canvas,
// the block keeps the old one and nil is returned.
func (b *Block) rebuildCanvas() error {
	canvas, err := b.host.NewCanvas()
	var ctx webgl.Context
	if err == nil {
		if ctx, err = canvas.GetContext(b.contextAttributes()); err != nil {
			canvas.Dispose()
		}
	}
	if err != nil {
		if b.canvas != nil {
			b.lg.Debugf("canvas rebuild failed, keeping %s: %v", b.canvas.ID(), err)
			return nil
		}
		return fmt.Errorf("block: unable to create a GL context: %w", err)
	}

	if b.canvas != nil {
		b.canvas.RemoveContextListeners()
		b.host.Detach(b.canvas)
		b.canvas.Dispose()
	}

	canvas.SetID(fmt.Sprintf("webgl-block-canvas-%d", canvasCounter.Add(1)))
	canvas.AddContextListeners(b.OnContextLoss, b.OnContextRestoration)
	b.host.Attach(canvas)
	b.canvas = canvas
	b.stats.Rebuilds++
	b.lg.Info("built canvas", "canvas", canvas.ID(), "samples", ctx.Samples())

	return b.setupContext(ctx)
}

// setupContext makes ctx the block's context and (re)creates every GL
// object the block and its sprite sheets need on it.
func (b *Block) setupContext(ctx webgl.Context) error {
	if ctx == nil {
		return ErrNoContext
	}

	b.ctx = ctx
	b.state = ContextLive

	b.originalBackingScale = b.canvas.DevicePixelRatio()
	if b.config.AllowBackingScaleAntialiasing && ctx.Samples() == 0 {
		b.originalBackingScale *= 2
	}
	b.backingScale = b.originalBackingScale

	ctx.ClearColor(0, 0, 0, 0)
	ctx.Enable(webgl.Blend)
	ctx.BlendFunc(webgl.One, webgl.OneMinusSrcAlpha)

	b.dirty = true
	b.fitDirty = true

	var errs []error
	for _, p := range b.processors() {
		if err := p.InitializeContext(ctx); err != nil {
			b.lg.Errorf("%T: %v", p, err)
			errs = append(errs, err)
		}
	}
	for _, s := range b.spriteSheets {
		s.InitializeContext(ctx)
	}

	b.contextChanged.Emit(ctx)

	return errors.Join(errs...)
}

func (b *Block) processors() []Processor {
	return []Processor{b.custom, b.textured, b.vertexColor}
}

// OnContextLoss is the canvas's context-lost listener. It is a no-op if
// the context is already lost.
func (b *Block) OnContextLoss(ev webgl.ContextEvent) {
	if b.state != ContextLive {
		return
	}
	b.state = ContextLost
	b.stats.ContextLoss++

	// Without this the context will never be restored.
	ev.PreventDefault()

	b.canvas.SetVisible(false)
	b.dirty = true

	b.lg.Info("context lost", "canvas", b.canvas.ID())
}

// OnContextRestoration is the canvas's context-restored listener. It is
// a no-op unless the context is lost.
func (b *Block) OnContextRestoration(ev webgl.ContextEvent) {
	if b.state == ContextLive {
		return
	}

	ctx, err := b.canvas.GetContext(b.contextAttributes())
	if err != nil {
		b.lg.Warnf("%s: unable to get restored context: %v", b.canvas.ID(), err)
		return
	}
	if err := b.setupContext(ctx); err != nil {
		b.lg.Errorf("%s: restored context setup: %v", b.canvas.ID(), err)
	}
	b.canvas.SetVisible(true)
	b.stats.Restorations++

	b.lg.Info("context restored", "canvas", b.canvas.ID())
}

// delayedRebuildCanvas schedules a canvas rebuild; at most one is
// pending at a time. The rebuild is skipped if the context has come back
// in the meantime.
func (b *Block) delayedRebuildCanvas() {
	if b.rebuildPending {
		return
	}
	b.rebuildPending = true
	b.state = ContextRecovering

	b.deferFunc(func() {
		b.rebuildPending = false
		if b.disposed || b.state == ContextLive {
			return
		}
		if err := b.rebuildCanvas(); err != nil {
			b.lg.Warnf("canvas rebuild: %v", err)
		}
		if b.state != ContextLive {
			// Try again next frame.
			b.state = ContextLost
			b.dirty = true
		}
	})
}

// RunDeferred runs the pending deferred work (canvas rebuilds) now
// rather than at the start of the next Update; it returns the number of
// callbacks run.
func (b *Block) RunDeferred() int {
	return b.deferred.Run()
}

// SetFit selects how the canvas is sized; only FitFullDisplay is
// supported.
func (b *Block) SetFit(f Fit) error {
	if f != FitFullDisplay {
		return fmt.Errorf("%w: %s", ErrFitBoundsUnsupported, f)
	}
	b.fit = f
	return nil
}

func (b *Block) updateFit() {
	w, h := b.display.Size()
	if b.fitDirty || b.displaySize != [2]float64{w, h} {
		b.setSizeFullDisplay()
		b.fitDirty = false
	}
}

// setSizeFullDisplay sizes the canvas's pixels to the display at the
// backing scale and presents it at the display's size.
func (b *Block) setSizeFullDisplay() {
	w, h := b.display.Size()
	b.displaySize = [2]float64{w, h}
	b.pixelSize = [2]int{math.CeilInt(w * b.backingScale), math.CeilInt(h * b.backingScale)}

	b.canvas.SetPixelSize(b.pixelSize[0], b.pixelSize[1])
	b.canvas.SetCSSSize(w, h)
}

// applyScaleOverride lets a lone ScaledDrawable choose the backing scale
// of the whole block.
func (b *Block) applyScaleOverride() {
	scale := b.originalBackingScale
	if b.drawables.len() == 1 {
		if sd, ok := b.drawables.first().(ScaledDrawable); ok {
			if s, ok := sd.BackingScale(); ok {
				scale = b.originalBackingScale * s
			}
		}
	}
	if scale != b.backingScale {
		b.backingScale = scale
		b.fitDirty = true
	}
}

func (b *Block) processorFor(d Drawable) Processor {
	switch d.Renderer() {
	case RendererCustom:
		return b.custom
	case RendererTexturedTriangles:
		return b.textured
	case RendererVertexColorPolygons:
		return b.vertexColor
	default:
		panic(fmt.Sprintf("block: %T has unknown renderer %s", d, d.Renderer()))
	}
}

// Update paints the block if it is dirty and returns whether it did.
func (b *Block) Update() bool {
	b.deferred.Run()

	if !b.dirty || b.disposed {
		return false
	}
	b.dirty = false

	if b.state != ContextLive && b.config.AggressiveContextRecreation {
		b.delayedRebuildCanvas()
	}

	var fs FrameStats

	for len(b.dirtyDrawables) > 0 {
		n := len(b.dirtyDrawables) - 1
		d := b.dirtyDrawables[n]
		b.dirtyDrawables = b.dirtyDrawables[:n]
		d.Update()
		fs.Updated++
	}

	for _, s := range b.spriteSheets {
		s.UpdateTexture()
	}

	b.applyScaleOverride()
	b.updateFit()

	w, h := b.display.Size()
	b.projection = math.DisplayProjection(float32(w), float32(h))
	b.projectionArray = b.projection.ColumnMajor()

	ctx := b.ctx
	if b.config.PreserveDrawingBuffer {
		ctx.Clear(webgl.ColorBufferBit)
	}
	ctx.Viewport(0, 0, b.pixelSize[0], b.pixelSize[1])

	var current Processor
	for d := range b.drawables.all() {
		fs.Drawables++
		if !d.IsVisible() {
			fs.Skipped++
			continue
		}

		p := b.processorFor(d)
		if p != current {
			if current != nil {
				fs.DrawCalls += current.Deactivate()
			}
			current = p
			current.Activate()
			fs.Activations++
		}
		current.ProcessDrawable(d)
	}
	if current != nil {
		fs.DrawCalls += current.Deactivate()
	}

	// Nothing was drawn over the previous frame's contents.
	if fs.DrawCalls == 0 && !b.config.PreserveDrawingBuffer {
		ctx.Clear(webgl.ColorBufferBit)
	}

	ctx.Flush()

	b.stats.merge(fs)
	b.lg.Debug("painted block", "canvas", b.canvas.ID(), "frame", fs)

	return true
}

// Dispose releases the block's canvas and drawables. The sprite sheets and
// processors are kept so that the block can be initialized again.
func (b *Block) Dispose() {
	b.lg.Debug("disposing block", "stats", b.stats)

	for d := range b.drawables.all() {
		b.RemoveDrawable(d)
	}
	b.dirtyDrawables = nil

	if b.canvas != nil {
		b.canvas.RemoveContextListeners()
		b.host.Detach(b.canvas)
		b.canvas.Dispose()
		b.canvas = nil
	}
	b.ctx = nil
	b.rebuildPending = false
	b.dirty = false
	b.disposed = true
}

// MarkDirtyDrawable queues d to be updated before the next paint.
func (b *Block) MarkDirtyDrawable(d Drawable) {
	if d == nil {
		panic("block: nil drawable marked dirty")
	}
	if d.IsDisposed() {
		panic(fmt.Sprintf("block: disposed drawable %T marked dirty", d))
	}
	b.dirtyDrawables = append(b.dirtyDrawables, d)
	b.MarkDirty()
}

// MarkDirty requests a repaint at the next Update.
func (b *Block) MarkDirty() {
	b.dirty = true
}

func (b *Block) IsDirty() bool {
	return b.dirty
}

// AddDrawable appends d to the end of the block's drawables.
func (b *Block) AddDrawable(d Drawable) {
	b.InsertDrawableBefore(d, nil)
}

// InsertDrawableBefore inserts d before mark, or at the end if mark is
// nil.
func (b *Block) InsertDrawableBefore(d, mark Drawable) {
	if b.drawables.contains(d) {
		panic(fmt.Sprintf("block: %T added twice", d))
	}
	b.drawables.insertBefore(d, mark)
	d.OnAddToBlock(b)
	b.MarkDirty()
}

// RemoveDrawable removes d from the block. It is a no-op if d is not in
// the block.
func (b *Block) RemoveDrawable(d Drawable) {
	if !b.drawables.remove(d) {
		return
	}
	b.dirtyDrawables, _ = util.DeleteAll(b.dirtyDrawables, d)
	d.OnRemoveFromBlock(b)
	b.MarkDirty()
}

func (b *Block) FirstDrawable() Drawable {
	return b.drawables.first()
}

func (b *Block) LastDrawable() Drawable {
	return b.drawables.last()
}

// Drawables iterates over the block's drawables in paint order.
func (b *Block) Drawables() iter.Seq[Drawable] {
	return b.drawables.all()
}

func (b *Block) DrawableCount() int {
	return b.drawables.len()
}

// AddSpriteSheetImage places img, at width x height pixels, in the first
// sprite sheet with room for it, creating a new sheet if none has. If the
// image does not fit even in a new sheet, ErrSpriteTooLarge is returned;
// the new sheet is kept.
func (b *Block) AddSpriteSheetImage(img image.Image, width, height int) (*sprites.Sprite, error) {
	for _, s := range b.spriteSheets {
		if sp := s.AddImage(img, width, height); sp != nil {
			b.MarkDirty()
			return sp, nil
		}
	}

	s := sprites.NewSpriteSheet()
	sp := s.AddImage(img, width, height)
	if b.ctx != nil {
		s.InitializeContext(b.ctx)
	}
	b.spriteSheets = append(b.spriteSheets, s)
	b.lg.Debugf("created sprite sheet %d", len(b.spriteSheets))

	if sp == nil {
		return nil, fmt.Errorf("%w: %dx%d (maximum %dx%d)", ErrSpriteTooLarge, width, height,
			sprites.MaxDimension-2*sprites.Gutter, sprites.MaxDimension-2*sprites.Gutter)
	}
	b.MarkDirty()
	return sp, nil
}

// RemoveSpriteSheetImage releases a sprite returned by
// AddSpriteSheetImage.
func (b *Block) RemoveSpriteSheetImage(sp *sprites.Sprite) {
	if sp != nil && sp.Sheet != nil {
		sp.Sheet.RemoveImage(sp.Image)
	}
}

func (b *Block) SpriteSheets() []*sprites.SpriteSheet {
	return b.spriteSheets
}

func (b *Block) OnIntervalChange() {
	b.MarkDirty()
}

func (b *Block) OnPotentiallyMovedDrawable(d Drawable) {
	b.MarkDirty()
}

// OnContextChanged registers fn to be called with each new context the
// block sets up. The returned function unregisters it.
func (b *Block) OnContextChanged(fn func(webgl.Context)) (remove func()) {
	return b.contextChanged.AddListener(fn)
}

// Context returns the block's current context; it may be lost.
func (b *Block) Context() webgl.Context {
	return b.ctx
}

func (b *Block) Canvas() webgl.Canvas {
	return b.canvas
}

func (b *Block) ContextState() ContextState {
	return b.state
}

func (b *Block) IsContextLost() bool {
	return b.state != ContextLive
}

func (b *Block) IsDisposed() bool {
	return b.disposed
}

func (b *Block) BackingScale() float64 {
	return b.backingScale
}

// PixelSize returns the size of the canvas's drawing buffer.
func (b *Block) PixelSize() (int, int) {
	return b.pixelSize[0], b.pixelSize[1]
}

// ProjectionMatrix maps display coordinates to normalized device
// coordinates; it is recomputed by each Update.
func (b *Block) ProjectionMatrix() math.Matrix3 {
	return b.projection
}

func (b *Block) Stats() Stats {
	return b.stats
}

func (b *Block) Logger() *log.Logger {
	return b.lg
}
