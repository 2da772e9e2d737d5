// cmd/glblock/main.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

// glblock opens a window and paints a demo scene with a WebGL block on
// top of desktop OpenGL. Context loss can be simulated from the keyboard
// to exercise recovery: L loses the context, R restores it, and I toggles
// the images.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/glscene/glblock/block"
	"github.com/glscene/glblock/log"
	"github.com/glscene/glblock/webgl"

	"github.com/apenwarr/fixconsole"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	configFile  = flag.String("config", "glblock.yaml", "YAML configuration file")
	logLevel    = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "log file directory")
	capturePath = flag.String("capture", "", "write the GL calls made to this file (extension "+webgl.CaptureFileExtension+")")
	polygons    = flag.Int("polygons", -1, "number of animated polygons (overrides the configuration)")
	preserve    = flag.Bool("preserve", false, "preserve the drawing buffer between frames")
	aggressive  = flag.Bool("aggressive", false, "rebuild the canvas rather than wait for a lost context to be restored")
	statsPeriod = flag.Duration("stats", 10*time.Second, "how often to log rendering statistics")
)

func init() {
	// OpenGL calls must all be made from the thread that created the
	// context; lock main to it.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	logSystemInfo(lg)

	config, err := LoadConfig(*configFile)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "polygons":
			config.Polygons = *polygons
		case "preserve":
			config.Block.PreserveDrawingBuffer = *preserve
		case "aggressive":
			config.Block.AggressiveContextRecreation = *aggressive
		}
	})
	lg.Info("configuration", "config", config)

	loader := NewAssetLoader(config.CacheSize, lg)
	images, err := loadImages(loader, config)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	host, err := webgl.NewGLFWHost(webgl.GLFWConfig{
		Title:      config.Title,
		WindowSize: config.WindowSize,
		EnableMSAA: config.MSAA,
		VSync:      config.VSync,
	}, lg)
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer host.Dispose()

	var blockHost webgl.Host = host
	var capture *webgl.CaptureHost
	if *capturePath != "" {
		capture = webgl.NewCaptureHost(host)
		blockHost = capture
	}

	b, err := block.New(host, blockHost, config.Block, lg.With("component", "block"))
	if err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scene := NewScene(b, host, config, images)

	host.Window().SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyL:
			host.LoseContext()
		case glfw.KeyR:
			host.RestoreContext()
		case glfw.KeyI:
			scene.ToggleImages()
		case glfw.KeyEscape:
			w.SetShouldClose(true)
		}
	})

	start := time.Now()
	lastStats := start
	for !host.ShouldClose() {
		host.PollEvents()

		scene.Animate(time.Since(start).Seconds())
		if b.Update() {
			host.SwapBuffers()
		}

		if time.Since(lastStats) > *statsPeriod {
			lg.Info("rendering", "stats", b.Stats())
			lastStats = time.Now()
		}
	}

	scene.Dispose()
	lg.Info("exiting", "stats", b.Stats(), "cached_images", loader.Cached())
	b.Dispose()

	if capture != nil {
		if err := writeCapture(*capturePath, capture.Capture()); err != nil {
			lg.Errorf("%s: %v", *capturePath, err)
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// loadImages decodes the configured assets, or generates a few images if
// there are none.
func loadImages(loader *AssetLoader, config Config) ([]image.Image, error) {
	if len(config.Assets) == 0 {
		return []image.Image{
			checkerboard(128, 16, color.White, color.NRGBA{R: 0x3c, G: 0x9d, B: 0xe6, A: 0xff}),
			checkerboard(64, 8, color.Black, color.NRGBA{R: 0xe6, G: 0x55, B: 0x3c, A: 0x80}),
			checkerboard(200, 50, color.NRGBA{G: 0xff, A: 0xff}, color.Transparent),
		}, nil
	}

	var paths []string
	for _, a := range config.Assets {
		paths = append(paths, a.Path)
	}
	return loader.Load(paths...)
}

func writeCapture(path string, c webgl.Capture) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := webgl.SaveCapture(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func logSystemInfo(lg *log.Logger) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		lg.Warnf("unable to get memory information: %v", err)
		return
	}
	lg.Info("memory",
		slog.Uint64("total_mb", vm.Total/(1024*1024)),
		slog.Uint64("available_mb", vm.Available/(1024*1024)),
		slog.Float64("used_percent", vm.UsedPercent))
}
