// block/config.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package block

import (
	"errors"
	"fmt"
	"log/slog"
)

var (
	ErrSpriteTooLarge       = errors.New("block: image does not fit in an empty sprite sheet")
	ErrFitBoundsUnsupported = errors.New("block: WebGL blocks always fit the full display")
	ErrNoContext            = errors.New("block: no GL context")
)

// Config holds the display-level options that affect a block. It is
// provided when the block is created and never read from global state.
type Config struct {
	// PreserveDrawingBuffer requests a context whose drawing buffer is
	// kept between frames; the block then clears it explicitly.
	PreserveDrawingBuffer bool `yaml:"preserve_drawing_buffer"`
	// AllowBackingScaleAntialiasing doubles the backing scale when the
	// context provides no multisampling.
	AllowBackingScaleAntialiasing bool `yaml:"allow_backing_scale_antialiasing"`
	// AggressiveContextRecreation rebuilds the canvas if a lost context
	// has not been restored by the next update.
	AggressiveContextRecreation bool `yaml:"aggressive_context_recreation"`
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("preserve_drawing_buffer", c.PreserveDrawingBuffer),
		slog.Bool("allow_backing_scale_antialiasing", c.AllowBackingScaleAntialiasing),
		slog.Bool("aggressive_context_recreation", c.AggressiveContextRecreation),
	)
}

// Fit is the strategy used to size a block's canvas.
type Fit int

const (
	// FitFullDisplay sizes the canvas to the whole display.
	FitFullDisplay Fit = iota
	// FitBounds sizes the canvas to the bounds of the block's content; it
	// is not supported by WebGL blocks.
	FitBounds
)

func (f Fit) String() string {
	switch f {
	case FitFullDisplay:
		return "full-display"
	case FitBounds:
		return "bounds"
	default:
		return fmt.Sprintf("Fit(%d)", int(f))
	}
}

// ContextState is the state of a block's GL context.
type ContextState int

const (
	// ContextLive: the block has a usable context.
	ContextLive ContextState = iota
	// ContextLost: the context was lost and the block is waiting for it
	// to be restored.
	ContextLost
	// ContextRecovering: the context was lost and a canvas rebuild has
	// been scheduled.
	ContextRecovering
)

func (s ContextState) String() string {
	switch s {
	case ContextLive:
		return "live"
	case ContextLost:
		return "lost"
	case ContextRecovering:
		return "recovering"
	default:
		return fmt.Sprintf("ContextState(%d)", int(s))
	}
}
