// cmd/glblock/main_test.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/webgl/webgltest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	c, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)

	fn := filepath.Join(t.TempDir(), "glblock.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(`
title: test
window_size: [640, 480]
block:
  preserve_drawing_buffer: true
  aggressive_context_recreation: true
assets:
  - path: a.png
    width: 32
    height: 32
    scale: 2
`), 0o600))
	c, err = LoadConfig(fn)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Title)
	assert.Equal(t, [2]int{640, 480}, c.WindowSize)
	assert.True(t, c.Block.PreserveDrawingBuffer)
	assert.True(t, c.Block.AggressiveContextRecreation)
	// Unset fields keep their defaults.
	assert.True(t, c.Block.AllowBackingScaleAntialiasing)
	assert.Equal(t, DefaultConfig().Polygons, c.Polygons)
	require.Len(t, c.Assets, 1)
	assert.Equal(t, Asset{Path: "a.png", Width: 32, Height: 32, Scale: 2}, c.Assets[0])

	// Loading must not have modified the defaults.
	assert.Empty(t, DefaultConfig().Assets)

	require.NoError(t, os.WriteFile(fn, []byte("window_size: [0, 10]\nassets:\n  - width: 3\n"), 0o600))
	_, err = LoadConfig(fn)
	assert.ErrorContains(t, err, "invalid window size")
	assert.ErrorContains(t, err, "asset without a path")

	require.NoError(t, os.WriteFile(fn, []byte("title: [unterminated"), 0o600))
	_, err = LoadConfig(fn)
	assert.Error(t, err)
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	fn := filepath.Join(dir, name)
	f, err := os.Create(fn)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return fn
}

func TestAssetLoader(t *testing.T) {
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", 8, 4)
	b := writePNG(t, dir, "b.png", 3, 5)

	l := NewAssetLoader(4, nil)
	images, err := l.Load(a, b, a)
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, image.Rect(0, 0, 8, 4), images[0].Bounds())
	assert.Equal(t, image.Rect(0, 0, 3, 5), images[1].Bounds())
	assert.Equal(t, 2, l.Cached())

	// Cached images are returned without decoding.
	require.NoError(t, os.Remove(a))
	again, err := l.Load(a)
	require.NoError(t, err)
	assert.Same(t, images[0].(*image.NRGBA), again[0].(*image.NRGBA))

	_, err = l.Load(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.png"), []byte("not a png"), 0o600))
	_, err = l.Load(filepath.Join(dir, "bad.png"))
	assert.ErrorContains(t, err, "bad.png")
}

func TestScene(t *testing.T) {
	host := webgltest.NewHost()
	display := &webgltest.Display{Width: 800, Height: 600}
	b, err := block.New(display, host, block.Config{}, nil)
	require.NoError(t, err)

	config := DefaultConfig()
	config.Polygons = 6
	images := []image.Image{
		checkerboard(32, 8, color.White, color.Black),
		checkerboard(16, 4, color.White, color.Black),
	}
	s := NewScene(b, display, config, images)
	assert.Equal(t, 6+2+1, b.DrawableCount())
	assert.Len(t, b.SpriteSheets(), 1)

	r := host.Current().Recorder()
	r.Reset()
	require.True(t, b.Update())
	// One batch each of polygons, images and the sweep.
	assert.Equal(t, 3, r.Count("drawArrays"))
	assert.Equal(t, 3, b.Stats().LastFrame.Activations)

	s.Animate(1.5)
	assert.True(t, b.IsDirty())
	r.Reset()
	b.Update()
	assert.Equal(t, 6+1, b.Stats().LastFrame.Updated)
	assert.Equal(t, 3, r.Count("drawArrays"))

	s.ToggleImages()
	assert.Equal(t, 6+1, b.DrawableCount())
	assert.Equal(t, 2, b.SpriteSheets()[0].Cached())
	s.ToggleImages()
	assert.Equal(t, 0, b.SpriteSheets()[0].Cached())
	assert.True(t, b.LastDrawable() == s.sweepNode)

	// The sweep rebuilds its program on a restored context.
	host.Current().LoseContext()
	require.True(t, host.Current().RestoreContext())
	restored := host.Current().Recorder()
	restored.Reset()
	b.Update()
	assert.Equal(t, 1, restored.Count("linkProgram"))
	assert.Equal(t, 3, restored.Count("drawArrays"))

	s.Dispose()
	assert.Equal(t, 0, b.DrawableCount())
}
