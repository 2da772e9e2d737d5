// sprites/sprites_test.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sprites

import (
	"image"
	"image/color"
	"testing"

	"github.com/glscene/glblock/webgl"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinPackerAllocate(t *testing.T) {
	p := NewBinPacker(image.Rect(0, 0, 100, 100))

	a := p.Allocate(60, 40)
	require.NotNil(t, a)
	assert.Equal(t, image.Rect(0, 0, 60, 40), a.Bounds)

	b := p.Allocate(40, 100)
	require.NotNil(t, b)
	c := p.Allocate(60, 60)
	require.NotNil(t, c)

	for _, x := range []*Bin{a, b} {
		for _, y := range []*Bin{b, c} {
			if x != y {
				assert.False(t, x.Bounds.Overlaps(y.Bounds), "%s overlaps %s", x, y)
			}
		}
	}

	assert.Nil(t, p.Allocate(1, 1), "packer should be full")
	assert.Nil(t, p.Allocate(101, 1))
	assert.Nil(t, p.Allocate(0, 10))
}

func TestBinPackerDeallocateMerges(t *testing.T) {
	p := NewBinPacker(image.Rect(0, 0, 64, 64))

	var bins []*Bin
	for range 16 {
		b := p.Allocate(16, 16)
		require.NotNil(t, b)
		bins = append(bins, b)
	}
	assert.Nil(t, p.Allocate(16, 16))
	assert.False(t, p.Empty())

	for _, b := range bins {
		p.Deallocate(b)
	}
	assert.True(t, p.Empty())

	full := p.Allocate(64, 64)
	require.NotNil(t, full)
	assert.Equal(t, p.Bounds(), full.Bounds)

	p.Deallocate(full)
	assert.Panics(t, func() { p.Deallocate(full) })
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

// Scaling filters may be off by one in the low bits.
func assertOpaqueBlue(t *testing.T, c color.RGBA) {
	t.Helper()
	assert.Zero(t, c.R)
	assert.Zero(t, c.G)
	assert.InDelta(t, 255, int(c.B), 2)
	assert.InDelta(t, 255, int(c.A), 2)
}

func TestSpriteSheetAddImage(t *testing.T) {
	s := NewSpriteSheet()
	red := solid(10, 20, color.RGBA{R: 255, A: 255})

	sp := s.AddImage(red, 10, 20)
	require.NotNil(t, sp)
	assert.Same(t, s, sp.Sheet)
	assert.Equal(t, 10, sp.Bounds.Dx())
	assert.Equal(t, 20, sp.Bounds.Dy())
	assert.Equal(t, image.Pt(Gutter, Gutter), sp.Bounds.Min)
	assert.InDelta(t, float32(Gutter)/MaxDimension, sp.UVBounds.P0[0], 1e-7)
	assert.InDelta(t, float32(Gutter+20)/MaxDimension, sp.UVBounds.P1[1], 1e-7)

	assert.Equal(t, color.RGBA{R: 255, A: 255}, s.Atlas().RGBAAt(sp.Bounds.Min.X, sp.Bounds.Min.Y))
	assert.Equal(t, color.RGBA{}, s.Atlas().RGBAAt(0, 0), "gutter should be transparent")

	again := s.AddImage(red, 10, 20)
	assert.Same(t, sp, again)
	assert.Equal(t, 2, sp.RefCount())
	assert.Equal(t, 1, s.Len())
}

func TestSpriteSheetScalesImages(t *testing.T) {
	s := NewSpriteSheet()
	blue := solid(4, 4, color.RGBA{B: 255, A: 255})

	sp := s.AddImage(blue, 32, 16)
	require.NotNil(t, sp)
	assert.Equal(t, image.Rect(Gutter, Gutter, Gutter+32, Gutter+16), sp.Bounds)
	assertOpaqueBlue(t, s.Atlas().RGBAAt(sp.Bounds.Min.X+16, sp.Bounds.Min.Y+8))
}

func TestSpriteSheetTooLarge(t *testing.T) {
	s := NewSpriteSheet()
	assert.Nil(t, s.AddImage(solid(1, 1, color.RGBA{}), MaxDimension, MaxDimension))
	assert.Nil(t, s.AddImage(solid(1, 1, color.RGBA{}), MaxDimension-1, 10))
	assert.NotNil(t, s.AddImage(solid(1, 1, color.RGBA{}), MaxDimension-2*Gutter, 10))
}

func TestSpriteSheetReferenceCounting(t *testing.T) {
	s := NewSpriteSheet()
	// Each image takes a full half of the sheet.
	half := MaxDimension/2 - 2*Gutter
	a := solid(1, 1, color.RGBA{R: 255, A: 255})
	b := solid(1, 1, color.RGBA{G: 255, A: 255})
	c := solid(1, 1, color.RGBA{B: 255, A: 255})

	spa := s.AddImage(a, MaxDimension-2*Gutter, half)
	require.NotNil(t, spa)
	require.NotNil(t, s.AddImage(b, MaxDimension-2*Gutter, half))
	assert.Nil(t, s.AddImage(c, MaxDimension-2*Gutter, half))

	s.AddImage(a, MaxDimension-2*Gutter, half)
	s.RemoveImage(a)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 0, s.Cached())

	// Released but still cached: re-adding it reuses the same slot.
	s.RemoveImage(a)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.Cached())
	assert.Same(t, spa, s.AddImage(a, MaxDimension-2*Gutter, half))
	assert.Equal(t, 0, s.Cached())

	// Once released, a is evicted to make room for c.
	s.RemoveImage(a)
	spc := s.AddImage(c, MaxDimension-2*Gutter, half)
	require.NotNil(t, spc)
	assert.Equal(t, spa.Bounds, spc.Bounds)
	assert.Nil(t, spa.Sheet)
	assert.Equal(t, 0, s.Cached())
	assertOpaqueBlue(t, s.Atlas().RGBAAt(spc.Bounds.Min.X+8, spc.Bounds.Min.Y+8))

	// Removing unknown images is harmless.
	s.RemoveImage(solid(1, 1, color.RGBA{}))
}

func TestSpriteSheetUpdateTexture(t *testing.T) {
	s := NewSpriteSheet()
	s.UpdateTexture() // no context yet

	r := webgl.NewRecorder(webgl.ContextAttributes{})
	s.InitializeContext(r)
	assert.NotZero(t, s.Texture())
	assert.Equal(t, 1, r.Count("createTexture"))

	s.UpdateTexture()
	assert.Equal(t, 1, r.Count("texImage2D"))
	assert.Equal(t, 1, r.Count("generateMipmap"))
	assert.Contains(t, r.Named("texParameteri"),
		webgl.Call{Name: "texParameteri", Args: []any{uint32(webgl.Texture2D), uint32(webgl.TextureMinFilter), webgl.LinearMipmapLinear}})
	assert.False(t, s.Dirty())

	// Clean sheets are not uploaded again.
	s.UpdateTexture()
	assert.Equal(t, 1, r.Count("texImage2D"))

	s.AddImage(solid(2, 2, color.RGBA{A: 255}), 2, 2)
	assert.True(t, s.Dirty())
	s.UpdateTexture()
	assert.Equal(t, 2, r.Count("texImage2D"))

	// A new context gets a new texture and a full upload.
	r2 := webgl.NewRecorder(webgl.ContextAttributes{})
	s.InitializeContext(r2)
	s.UpdateTexture()
	assert.Equal(t, 1, r2.Count("texImage2D"))
	assert.Equal(t, 2, r.Count("texImage2D"))
}
