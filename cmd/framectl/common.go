package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/eak1mov/go-libframes/config"
	"github.com/eak1mov/go-libframes/frame"
	"github.com/eak1mov/go-libframes/service"
)

// actor is the name the CLI acts under. The CLI grants itself every permission.
const actor = "framectl"

var (
	configPath = flag.String("config", "", "YAML config file")
	rootDir    = flag.String("root", "", "Store root directory (overrides config)")
	verbose    = flag.Bool("v", false, "Log library activity to stderr")
)

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if *configPath != "" {
		var err error
		if cfg, err = config.LoadFile(*configPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default(".")
	}
	if *rootDir != "" {
		cfg.Root = *rootDir
	}
	return cfg, nil
}

func logger() *slog.Logger {
	if !*verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func openService() (*service.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return service.New(cfg, service.WithLogger(logger()))
}

// coordsFlag parses "x,y,z" flags.
type coordsFlag struct {
	coords frame.Coords
	set    bool
}

func (f *coordsFlag) String() string {
	if !f.set {
		return ""
	}
	return f.coords.String()
}

func (f *coordsFlag) Set(s string) error {
	c, err := frame.ParseCoords(s)
	if err != nil {
		return err
	}
	f.coords, f.set = c, true
	return nil
}

// sizeFlag parses "WxH" flags.
type sizeFlag struct {
	size frame.SizeClass
}

func (f *sizeFlag) String() string {
	if !f.size.Valid() {
		return ""
	}
	return f.size.String()
}

func (f *sizeFlag) Set(s string) error {
	size, err := frame.ParseSizeClass(s)
	if err != nil {
		return err
	}
	f.size = size
	return nil
}

// alignmentFlag parses alignment names such as "bottom_left".
type alignmentFlag struct {
	alignment frame.Alignment
}

func (f *alignmentFlag) String() string {
	return strings.ToLower(f.alignment.String())
}

func (f *alignmentFlag) Set(s string) error {
	f.alignment = frame.ParseAlignment(s)
	return nil
}
