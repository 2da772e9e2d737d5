// math/geom.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float32
}

func (e Extent2D) Width() float32 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float32 {
	return e.P1[1] - e.P0[1]
}

func (e Extent2D) Scale(s float32) Extent2D {
	return Extent2D{P0: Scale2f(e.P0, s), P1: Scale2f(e.P1, s)}
}

// Lerp maps p in [0,1]^2 to the corresponding point inside the extent.
func (e Extent2D) Lerp(p [2]float32) [2]float32 {
	return [2]float32{e.P0[0] + p[0]*e.Width(), e.P0[1] + p[1]*e.Height()}
}
