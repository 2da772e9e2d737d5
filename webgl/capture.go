// webgl/capture.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package webgl

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// CaptureVersion is bumped whenever the Call encoding changes.
const CaptureVersion = 1

// CaptureFileExtension is the conventional suffix for capture files.
const CaptureFileExtension = ".glcap.msgpack.zst"

// Capture is a sequence of recorded GL calls along with the attributes
// of the context they were issued on.
type Capture struct {
	Version    int               `msgpack:"version"`
	Created    time.Time         `msgpack:"created"`
	Attributes ContextAttributes `msgpack:"attributes"`
	Calls      []Call            `msgpack:"calls"`
}

// Frames splits the capture at each flush; the flush call ends its
// frame. Calls after the last flush form a final, partial frame.
func (c Capture) Frames() [][]Call {
	var frames [][]Call
	start := 0
	for i, call := range c.Calls {
		if call.Name == "flush" {
			frames = append(frames, c.Calls[start:i+1])
			start = i + 1
		}
	}
	if start < len(c.Calls) {
		frames = append(frames, c.Calls[start:])
	}
	return frames
}

// Histogram returns the number of calls of each name.
func (c Capture) Histogram() map[string]int {
	h := make(map[string]int)
	for _, call := range c.Calls {
		h[call.Name]++
	}
	return h
}

// SortedNames returns the distinct call names, ordered by decreasing
// frequency and then by name.
func (c Capture) SortedNames() []string {
	h := c.Histogram()
	names := slices.Collect(maps.Keys(h))
	slices.SortFunc(names, func(a, b string) int {
		if h[a] != h[b] {
			return h[b] - h[a]
		}
		if a < b {
			return -1
		} else if a > b {
			return 1
		}
		return 0
	})
	return names
}

// SaveCapture writes c as msgpack compressed with zstd.
func SaveCapture(w io.Writer, c Capture) error {
	if c.Created.IsZero() {
		c.Created = time.Now().UTC()
	}

	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	defer zw.Close()

	if err := msgpack.NewEncoder(zw).Encode(c); err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to close zstd writer: %w", err)
	}
	return nil
}

// LoadCapture reads a capture written by SaveCapture.
func LoadCapture(r io.Reader) (Capture, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Capture{}, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()

	var c Capture
	if err := msgpack.NewDecoder(zr).Decode(&c); err != nil {
		return Capture{}, fmt.Errorf("failed to decode capture: %w", err)
	}
	if c.Version != CaptureVersion {
		return Capture{}, fmt.Errorf("capture version %d: only version %d is supported", c.Version, CaptureVersion)
	}
	return c, nil
}
