// drawables/triangulate_nocgo.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !cgo

package drawables

// Without cgo (including js/wasm builds) earcut is unavailable.
func triangulate(outer [][2]float32, holes [][][2]float32) [][3][2]float32 {
	return earClip(outer, holes)
}
