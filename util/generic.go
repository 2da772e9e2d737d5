// util/generic.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

// DeleteAll removes every element of s equal to v, preserving the order
// of the rest. It returns the updated slice and the number of elements
// removed.
func DeleteAll[V comparable](s []V, v V) ([]V, int) {
	n := 0
	for i := range s {
		if s[i] == v {
			continue
		}
		s[n] = s[i]
		n++
	}
	removed := len(s) - n
	clear(s[n:])
	return s[:n], removed
}
