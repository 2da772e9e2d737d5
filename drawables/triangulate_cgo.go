// drawables/triangulate_cgo.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build cgo

package drawables

import (
	"github.com/mmp/earcut-go"
)

func triangulate(outer [][2]float32, holes [][][2]float32) [][3][2]float32 {
	if len(outer) < 3 {
		return nil
	}

	ring := func(loop [][2]float32) []earcut.Vertex {
		vertices := make([]earcut.Vertex, len(loop))
		for i, v := range loop {
			vertices[i].P = [2]float64{float64(v[0]), float64(v[1])}
		}
		return vertices
	}

	poly := earcut.Polygon{Rings: [][]earcut.Vertex{ring(outer)}}
	for _, h := range holes {
		if len(h) >= 3 {
			poly.Rings = append(poly.Rings, ring(h))
		}
	}

	var tris [][3][2]float32
	for _, tri := range earcut.Triangulate(poly) {
		var v32 [3][2]float32
		for i, v64 := range tri.Vertices {
			v32[i] = [2]float32{float32(v64.P[0]), float32(v64.P[1])}
		}
		tris = append(tris, v32)
	}
	return tris
}
