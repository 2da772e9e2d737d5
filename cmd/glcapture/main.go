// cmd/glcapture/main.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// glcapture summarizes GL capture files written by glblock -capture: the
// number of calls of each kind, per-frame draw counts, and optionally the
// full contents of a frame.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glscene/glblock/webgl"

	"github.com/apenwarr/fixconsole"
	"github.com/goforj/godump"
)

var (
	frames = flag.Bool("frames", false, "print the number of calls and draws in each frame")
	dump   = flag.Int("dump", -1, "dump all of the calls of the given frame")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: glcapture [flags] capture%s...\n", webgl.CaptureFileExtension)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	failed := false
	for _, fn := range flag.Args() {
		if err := report(os.Stdout, fn); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fn, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func report(w io.Writer, fn string) error {
	f, err := os.Open(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	c, err := webgl.LoadCapture(f)
	if err != nil {
		return err
	}

	fmt.Fprint(w, summarize(fn, c))

	if *frames {
		fmt.Fprint(w, frameTable(c))
	}

	if *dump >= 0 {
		fr := c.Frames()
		if *dump >= len(fr) {
			return fmt.Errorf("frame %d requested but capture only has %d", *dump, len(fr))
		}
		fmt.Fprintf(w, "frame %d:\n", *dump)
		godump.Fdump(w, fr[*dump])
	}
	return nil
}

func summarize(fn string, c webgl.Capture) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %d calls in %d frames, captured %s\n", fn, len(c.Calls), len(c.Frames()),
		c.Created.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "  antialias: %v, preserve drawing buffer: %v\n", c.Attributes.Antialias,
		c.Attributes.PreserveDrawingBuffer)

	h := c.Histogram()
	for _, name := range c.SortedNames() {
		fmt.Fprintf(&sb, "  %-26s %8d\n", name, h[name])
	}
	return sb.String()
}

func frameTable(c webgl.Capture) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "  %6s %8s %8s %8s\n", "frame", "calls", "draws", "uploads")
	for i, fr := range c.Frames() {
		var draws, uploads int
		for _, call := range fr {
			switch call.Name {
			case "drawArrays":
				draws++
			case "bufferData", "bufferSubData", "texImage2D":
				uploads++
			}
		}
		fmt.Fprintf(&sb, "  %6d %8d %8d %8d\n", i, len(fr), draws, uploads)
	}
	return sb.String()
}
