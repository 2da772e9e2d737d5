// sprites/spritesheet.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sprites packs images into texture atlases ("sprite sheets") and
// keeps the corresponding GL textures up to date.
package sprites

import (
	"image"
	"image/color"
	"slices"

	"github.com/glscene/glblock/math"
	"github.com/glscene/glblock/webgl"

	"golang.org/x/image/draw"
)

const (
	// MaxDimension is the width and height of every sprite sheet. 2048 is
	// the largest texture size that WebGL implementations are practically
	// guaranteed to support.
	MaxDimension = 2048
	// Gutter is the number of transparent pixels kept around each image so
	// that linear filtering does not bleed neighbors into it.
	Gutter = 1
)

// Sprite is a handle to an image packed into a sprite sheet.
type Sprite struct {
	Sheet *SpriteSheet
	Image image.Image
	// Bounds is the region of the atlas holding the image, in pixels.
	Bounds image.Rectangle
	// UVBounds is Bounds in normalized texture coordinates.
	UVBounds math.Extent2D

	bin   *Bin
	count int
}

// RefCount returns the number of outstanding AddImage calls for the
// sprite's image.
func (s *Sprite) RefCount() int {
	return s.count
}

// SpriteSheet is a texture atlas. Images are reference counted; when the
// last reference to an image is removed, its pixels stay in the atlas so
// that adding it again is free, and are only evicted when space is needed
// for a new image.
type SpriteSheet struct {
	atlas  *image.RGBA
	packer *BinPacker

	used   map[image.Image]*Sprite
	unused []*Sprite // least recently released first

	ctx     webgl.Context
	texture webgl.Texture
	dirty   bool
}

func NewSpriteSheet() *SpriteSheet {
	bounds := image.Rect(0, 0, MaxDimension, MaxDimension)
	return &SpriteSheet{
		atlas:  image.NewRGBA(bounds),
		packer: NewBinPacker(bounds),
		used:   make(map[image.Image]*Sprite),
		dirty:  true,
	}
}

// InitializeContext creates the sheet's texture on ctx. It is called
// whenever the owner gets a new context; the texture is (re)uploaded by
// the next UpdateTexture.
func (s *SpriteSheet) InitializeContext(ctx webgl.Context) {
	s.ctx = ctx
	s.texture = ctx.CreateTexture()
	s.dirty = true
}

// UpdateTexture uploads the atlas to the texture if it has changed since
// the last upload.
func (s *SpriteSheet) UpdateTexture() {
	if !s.dirty || s.ctx == nil {
		return
	}
	s.dirty = false

	ctx := s.ctx
	ctx.BindTexture(webgl.Texture2D, s.texture)
	ctx.TexImage2D(webgl.Texture2D, 0, s.atlas)
	ctx.TexParameteri(webgl.Texture2D, webgl.TextureMagFilter, webgl.Linear)
	ctx.TexParameteri(webgl.Texture2D, webgl.TextureMinFilter, webgl.LinearMipmapLinear)
	ctx.TexParameteri(webgl.Texture2D, webgl.TextureWrapS, webgl.ClampToEdge)
	ctx.TexParameteri(webgl.Texture2D, webgl.TextureWrapT, webgl.ClampToEdge)
	ctx.GenerateMipmap(webgl.Texture2D)
	ctx.BindTexture(webgl.Texture2D, 0)
}

func (s *SpriteSheet) Texture() webgl.Texture {
	return s.texture
}

func (s *SpriteSheet) Dirty() bool {
	return s.dirty
}

// Atlas returns the sheet's pixels; callers must not modify them.
func (s *SpriteSheet) Atlas() *image.RGBA {
	return s.atlas
}

// Len returns the number of images with outstanding references.
func (s *SpriteSheet) Len() int {
	return len(s.used)
}

// Cached returns the number of released images whose pixels are still
// in the atlas.
func (s *SpriteSheet) Cached() int {
	return len(s.unused)
}

// AddImage places img, scaled to width x height pixels, into the sheet
// and returns its sprite. If img is already in the sheet, its reference
// count is incremented and the existing sprite is returned. It returns
// nil if the image does not fit.
func (s *SpriteSheet) AddImage(img image.Image, width, height int) *Sprite {
	if sp, ok := s.used[img]; ok {
		sp.count++
		return sp
	}
	if i := slices.IndexFunc(s.unused, func(sp *Sprite) bool { return sp.Image == img }); i != -1 {
		sp := s.unused[i]
		s.unused = slices.Delete(s.unused, i, i+1)
		sp.count = 1
		s.used[img] = sp
		return sp
	}

	bin := s.packer.Allocate(width+2*Gutter, height+2*Gutter)
	for bin == nil && len(s.unused) > 0 {
		s.evict(s.unused[0])
		bin = s.packer.Allocate(width+2*Gutter, height+2*Gutter)
	}
	if bin == nil {
		return nil
	}

	// Clear the whole bin, gutter included, since it may hold the pixels
	// of an evicted image.
	draw.Draw(s.atlas, bin.Bounds, image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	r := bin.Bounds.Inset(Gutter)
	if b := img.Bounds(); b.Dx() == width && b.Dy() == height {
		draw.Draw(s.atlas, r, img, b.Min, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(s.atlas, r, img, b, draw.Src, nil)
	}

	sp := &Sprite{
		Sheet:  s,
		Image:  img,
		Bounds: r,
		UVBounds: math.Extent2D{
			P0: [2]float32{float32(r.Min.X), float32(r.Min.Y)},
			P1: [2]float32{float32(r.Max.X), float32(r.Max.Y)},
		}.Scale(1.0 / MaxDimension),
		bin:   bin,
		count: 1,
	}
	s.used[img] = sp
	s.dirty = true
	return sp
}

// RemoveImage releases a reference to img. Once no references remain,
// the image's space may be reclaimed by later additions.
func (s *SpriteSheet) RemoveImage(img image.Image) {
	sp, ok := s.used[img]
	if !ok {
		return
	}
	sp.count--
	if sp.count > 0 {
		return
	}
	delete(s.used, img)
	s.unused = append(s.unused, sp)
}

func (s *SpriteSheet) evict(sp *Sprite) {
	s.unused = slices.DeleteFunc(s.unused, func(u *Sprite) bool { return u == sp })
	s.packer.Deallocate(sp.bin)
	sp.bin = nil
	sp.Sheet = nil
	s.dirty = true
}
