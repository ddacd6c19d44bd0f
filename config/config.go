// Package config loads the YAML configuration of a frame store.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eak1mov/go-libframes/apply"
	"github.com/eak1mov/go-libframes/assets"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/layout"
	"github.com/eak1mov/go-libframes/raster"
	"gopkg.in/yaml.v3"
)

// Index backends.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultSQLiteIndex is the index database file used when IndexPath is empty.
const DefaultSQLiteIndex = "index.sqlite"

// Config holds the settings of a frame store.
type Config struct {
	Root          string          `yaml:"root"`
	GridStep      int             `yaml:"grid_step"`
	AssetPrefix   string          `yaml:"asset_prefix"`
	IndexBackend  string          `yaml:"index_backend"`
	IndexPath     string          `yaml:"index_path"`
	PaletteMethod string          `yaml:"palette_method"`
	ApplyDelay    time.Duration   `yaml:"apply_delay"`
	ApplyTimeout  time.Duration   `yaml:"apply_timeout"`
	ItemIcon      string          `yaml:"item_icon"`
	DropOnBreak   string          `yaml:"drop_on_break"`
	Layout        layout.Patterns `yaml:"layout"`
}

// Default returns the configuration of a store rooted at root.
func Default(root string) *Config {
	cfg := &Config{Root: root}
	cfg.defaults()
	return cfg
}

func (c *Config) defaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.GridStep <= 0 {
		c.GridStep = frame.GridStep
	}
	if c.AssetPrefix == "" {
		c.AssetPrefix = assets.DefaultAssetPrefix
	}
	if c.IndexBackend == "" {
		c.IndexBackend = BackendJSON
	}
	if c.PaletteMethod == "" {
		c.PaletteMethod = raster.PaletteDominantColor.String()
	}
	if c.ApplyDelay <= 0 {
		c.ApplyDelay = apply.DefaultDelay
	}
	if c.ApplyTimeout <= 0 {
		c.ApplyTimeout = apply.DefaultTimeout
	}
	c.Layout = c.Layout.WithDefaults()
}

// LoadFile reads a YAML config file. Relative roots are resolved against
// the directory of the file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %v: %w", path, err)
	}
	if cfg.Root != "" && !filepath.IsAbs(cfg.Root) {
		cfg.Root = filepath.Join(filepath.Dir(path), cfg.Root)
	}
	cfg.defaults()
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	switch c.IndexBackend {
	case BackendJSON, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("config: unknown index backend %q", c.IndexBackend))
	}
	if _, ok := raster.ParsePaletteMethod(c.PaletteMethod); !ok {
		errs = append(errs, fmt.Errorf("config: unknown palette method %q", c.PaletteMethod))
	}
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// FileLayout returns the file layout of the store.
func (c *Config) FileLayout() (layout.Layout, error) {
	return layout.New(c.Root, c.Layout)
}

// IndexFile returns the index location for the configured backend.
func (c *Config) IndexFile() string {
	if c.IndexPath != "" {
		if filepath.IsAbs(c.IndexPath) {
			return c.IndexPath
		}
		return filepath.Join(c.Root, c.IndexPath)
	}
	if c.IndexBackend == BackendSQLite {
		return filepath.Join(c.Root, DefaultSQLiteIndex)
	}
	return layout.Layout{Root: c.Root, Patterns: c.Layout.WithDefaults()}.Index()
}

// Palette returns the configured palette method.
func (c *Config) Palette() raster.PaletteMethod {
	m, _ := raster.ParsePaletteMethod(c.PaletteMethod)
	return m
}
