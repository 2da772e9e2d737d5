// drawables/earclip.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package drawables

import (
	"cmp"
	"slices"
)

// earClip triangulates a polygon by ear clipping. Each hole is first
// joined to the outer ring with a bridge edge so that a single ring
// remains.
func earClip(outer [][2]float32, holes [][][2]float32) [][3][2]float32 {
	if len(outer) < 3 {
		return nil
	}

	ring := withWinding(outer, true)

	var hs [][][2]float32
	for _, h := range holes {
		if len(h) >= 3 {
			hs = append(hs, withWinding(h, false))
		}
	}
	// Rightmost holes first, so later bridges can't cross earlier ones.
	slices.SortFunc(hs, func(a, b [][2]float32) int {
		return cmp.Compare(maxX(b), maxX(a))
	})
	for _, h := range hs {
		ring = bridge(ring, h, hs)
	}

	return clipEars(ring)
}

func signedArea(pts [][2]float32) float32 {
	var a float32
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i][0]*pts[j][1] - pts[j][0]*pts[i][1]
	}
	return a / 2
}

// withWinding returns a copy of pts ordered counter-clockwise if ccw is
// set and clockwise otherwise.
func withWinding(pts [][2]float32, ccw bool) [][2]float32 {
	r := slices.Clone(pts)
	if (signedArea(r) > 0) != ccw {
		slices.Reverse(r)
	}
	return r
}

func maxX(pts [][2]float32) float32 {
	return slices.MaxFunc(pts, func(a, b [2]float32) int { return cmp.Compare(a[0], b[0]) })[0]
}

func cross(a, b, c [2]float32) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// segmentsCross reports whether ab and cd cross at a point interior to
// both.
func segmentsCross(a, b, c, d [2]float32) bool {
	d1, d2 := cross(a, b, c), cross(a, b, d)
	d3, d4 := cross(c, d, a), cross(c, d, b)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func crossesRing(a, b [2]float32, ring [][2]float32) bool {
	for i := range ring {
		if segmentsCross(a, b, ring[i], ring[(i+1)%len(ring)]) {
			return true
		}
	}
	return false
}

// bridge splices hole into ring at the ring vertex closest to the hole's
// rightmost vertex that it can see.
func bridge(ring, hole [][2]float32, holes [][][2]float32) [][2]float32 {
	m := 0
	for i, p := range hole {
		if p[0] > hole[m][0] {
			m = i
		}
	}
	hm := hole[m]

	dist := func(p [2]float32) float32 {
		dx, dy := p[0]-hm[0], p[1]-hm[1]
		return dx*dx + dy*dy
	}
	best, fallback := -1, 0
	for i, p := range ring {
		if dist(p) < dist(ring[fallback]) {
			fallback = i
		}
		if best != -1 && dist(p) >= dist(ring[best]) {
			continue
		}
		visible := !crossesRing(hm, p, ring)
		for _, h := range holes {
			visible = visible && !crossesRing(hm, p, h)
		}
		if visible {
			best = i
		}
	}
	if best == -1 {
		best = fallback
	}

	out := make([][2]float32, 0, len(ring)+len(hole)+2)
	out = append(out, ring[:best+1]...)
	for i := range len(hole) + 1 {
		out = append(out, hole[(m+i)%len(hole)])
	}
	out = append(out, ring[best])
	return append(out, ring[best+1:]...)
}

func pointInTriangle(p, a, b, c [2]float32) bool {
	d1, d2, d3 := cross(a, b, p), cross(b, c, p), cross(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// clipEars triangulates a counter-clockwise ring. Degenerate leftovers
// (collinear runs) are dropped.
func clipEars(pts [][2]float32) [][3][2]float32 {
	idx := make([]int, len(pts))
	for i := range idx {
		idx[i] = i
	}

	var tris [][3][2]float32
	for len(idx) > 2 {
		found := false
		for i := range idx {
			a := pts[idx[(i+len(idx)-1)%len(idx)]]
			b := pts[idx[i]]
			c := pts[idx[(i+1)%len(idx)]]
			if cross(a, b, c) <= 0 {
				continue
			}

			ear := true
			for _, j := range idx {
				p := pts[j]
				// Bridged rings repeat vertices.
				if p == a || p == b || p == c {
					continue
				}
				if pointInTriangle(p, a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}

			tris = append(tris, [3][2]float32{a, b, c})
			idx = slices.Delete(idx, i, i+1)
			found = true
			break
		}
		if !found {
			break
		}
	}
	return tris
}
