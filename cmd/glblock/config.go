// cmd/glblock/config.go
// Copyright(c) 2024-2026 glblock contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

//go:build !js

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/glscene/glblock/block"

	"github.com/brunoga/deep"
	"gopkg.in/yaml.v3"
)

// Config is the demo's configuration, read from a YAML file. Fields that
// are absent from the file keep their default values.
type Config struct {
	Title      string `yaml:"title"`
	WindowSize [2]int `yaml:"window_size"`
	MSAA       bool   `yaml:"msaa"`
	VSync      bool   `yaml:"vsync"`

	Block block.Config `yaml:"block"`

	// Polygons is the number of animated polygons in the scene.
	Polygons int `yaml:"polygons"`
	// Assets are images drawn from the block's sprite sheets; when there
	// are none, generated images are used.
	Assets []Asset `yaml:"assets"`
	// CacheSize is the number of decoded images kept for reuse.
	CacheSize int `yaml:"cache_size"`
}

type Asset struct {
	Path   string `yaml:"path"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	// Scale is a backing scale requested while the image is shown alone.
	Scale float64 `yaml:"scale"`
}

var defaultConfig = Config{
	Title:      "glblock",
	WindowSize: [2]int{1280, 800},
	MSAA:       true,
	VSync:      true,
	Block: block.Config{
		AllowBackingScaleAntialiasing: true,
	},
	Polygons:  24,
	CacheSize: 64,
}

func DefaultConfig() Config {
	return deep.MustCopy(defaultConfig)
}

// LoadConfig reads the configuration at path. The default configuration
// is returned if path is empty or does not exist.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	} else if err != nil {
		return config, err
	}

	if err := yaml.Unmarshal(b, &config); err != nil {
		return DefaultConfig(), fmt.Errorf("%s: %w", path, err)
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.WindowSize[0] <= 0 || c.WindowSize[1] <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.WindowSize[0], c.WindowSize[1]))
	}
	if c.Polygons < 0 {
		errs = append(errs, fmt.Errorf("invalid polygon count %d", c.Polygons))
	}
	for _, a := range c.Assets {
		if a.Path == "" {
			errs = append(errs, errors.New("asset without a path"))
		}
		if a.Width < 0 || a.Height < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid size %dx%d", a.Path, a.Width, a.Height))
		}
	}
	return errors.Join(errs...)
}

func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("title", c.Title),
		slog.Any("window_size", c.WindowSize),
		slog.Bool("msaa", c.MSAA),
		slog.Bool("vsync", c.VSync),
		slog.Any("block", c.Block),
		slog.Int("polygons", c.Polygons),
		slog.Int("assets", len(c.Assets)),
	)
}
