// cmd/glblock/assets.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package main

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"runtime"
	"time"

	"github.com/glscene/glblock/log"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"
)

// AssetLoader decodes image files, keeping recently used images around
// so that showing them again does not require decoding them again.
type AssetLoader struct {
	cache *expirable.LRU[string, image.Image]
	lg    *log.Logger
}

func NewAssetLoader(size int, lg *log.Logger) *AssetLoader {
	return &AssetLoader{
		cache: expirable.NewLRU[string, image.Image](max(size, 1), nil, 30*time.Minute),
		lg:    lg,
	}
}

// Load returns the decoded images at the given paths, in order. Images
// that are not cached are decoded concurrently.
func (l *AssetLoader) Load(paths ...string) ([]image.Image, error) {
	images := make([]image.Image, len(paths))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for i, p := range paths {
		if img, ok := l.cache.Get(p); ok {
			images[i] = img
			continue
		}
		eg.Go(func() error {
			img, err := decodeImage(p)
			images[i] = img
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	for i, p := range paths {
		if !l.cache.Contains(p) {
			l.cache.Add(p, images[i])
			b := images[i].Bounds()
			l.lg.Debug("decoded image", "path", p, "width", b.Dx(), "height", b.Dy())
		}
	}
	return images, nil
}

func (l *AssetLoader) Cached() int {
	return l.cache.Len()
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}
