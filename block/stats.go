// block/stats.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"fmt"
	"log/slog"
)

// FrameStats describes a single painted frame.
type FrameStats struct {
	// DrawCalls is the sum of the counts reported by the processors.
	DrawCalls int
	// Activations counts processor activations; consecutive drawables
	// with the same renderer share one.
	Activations int
	Drawables   int
	Skipped     int // invisible drawables
	Updated     int // dirty drawables updated
}

func (fs FrameStats) String() string {
	return fmt.Sprintf("%d drawables (%d invisible, %d updated), %d processor activations, %d draw calls",
		fs.Drawables, fs.Skipped, fs.Updated, fs.Activations, fs.DrawCalls)
}

func (fs FrameStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("draw_calls", fs.DrawCalls),
		slog.Int("activations", fs.Activations),
		slog.Int("drawables", fs.Drawables),
		slog.Int("skipped", fs.Skipped),
		slog.Int("updated", fs.Updated),
	)
}

// Stats accumulates statistics over a block's lifetime.
type Stats struct {
	Frames       int
	DrawCalls    int
	Activations  int
	ContextLoss  int
	Restorations int
	Rebuilds     int
	LastFrame    FrameStats
}

func (s *Stats) merge(fs FrameStats) {
	s.Frames++
	s.DrawCalls += fs.DrawCalls
	s.Activations += fs.Activations
	s.LastFrame = fs
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("frames", s.Frames),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("activations", s.Activations),
		slog.Int("context_losses", s.ContextLoss),
		slog.Int("restorations", s.Restorations),
		slog.Int("rebuilds", s.Rebuilds),
		slog.Any("last_frame", s.LastFrame),
	)
}
