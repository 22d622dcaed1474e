package main

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/files"
	"github.com/valerio/go-emutools/emutools/pattern"
	"github.com/valerio/go-emutools/emutools/report"
	"github.com/valerio/go-emutools/emutools/surface"
	"github.com/valerio/go-emutools/emutools/timing"
)

// VIC-20 PAL picture
const (
	screenWidth  = 384
	screenHeight = 240
	maxColors    = 256
)

// vic20Colors is the 16-colour VIC-20 palette, 3 bytes per colour
var vic20Colors = []byte{
	0x00, 0x00, 0x00, // black
	0xFF, 0xFF, 0xFF, // white
	0xB6, 0x1F, 0x21, // red
	0x4D, 0xF0, 0xFF, // cyan
	0xB4, 0x3F, 0xFF, // purple
	0x44, 0xE2, 0x37, // green
	0x1A, 0x34, 0xFF, // blue
	0xDC, 0xD7, 0x1B, // yellow
	0xCA, 0x54, 0x00, // orange
	0xE9, 0xB0, 0x72, // light orange
	0xE7, 0x92, 0x93, // pink
	0x9A, 0xF7, 0xFD, // light cyan
	0xE0, 0x9F, 0xFF, // light purple
	0x8F, 0xE4, 0x93, // light green
	0x82, 0x90, 0xFF, // light blue
	0xE5, 0xDE, 0x85, // light yellow
}

type demoOptions struct {
	title        string
	titleAddon   string
	organization string
	app          string
	frames       int
	fullscreen   bool
	access       display.AccessMode
	quality      display.ScaleQuality
	format       display.PixelFormat
	pattern      pattern.Kind
	colors       []byte
	exit         func(code int)
}

// loadPalette reads a raw RGB palette file.
func loadPalette(path string) ([]byte, error) {
	data, err := files.Load(path, maxColors*3)
	if err != nil {
		return nil, fmt.Errorf("failed to load palette: %w", err)
	}
	if len(data) == 0 || len(data)%3 != 0 {
		return nil, fmt.Errorf("palette %s has %d bytes, expected a multiple of 3", path, len(data))
	}
	return data, nil
}

// runDemo opens a surface on driver and animates a test pattern through it,
// one frame every 20ms of emulated time.
func runDemo(driver backend.Driver, opts demoOptions, limiter timing.Limiter) error {
	reporterOpts := []report.Option{
		report.WithTitle(opts.title),
		report.WithResync(limiter.Start),
	}
	if opts.exit != nil {
		reporterOpts = append(reporterOpts, report.WithExit(opts.exit))
	}
	reporter := report.New(driver, reporterOpts...)

	cfg := display.Config{
		Title:         opts.title,
		Organization:  opts.organization,
		AppName:       opts.app,
		Resizable:     true,
		Fullscreen:    opts.fullscreen,
		TextureWidth:  screenWidth,
		TextureHeight: screenHeight,
		Format:        opts.format,
		Colors:        opts.colors,
		Quality:       opts.quality,
		Access:        opts.access,
		OnShutdown: func() {
			slog.Info("Emulator shutdown")
		},
	}

	surf, err := surface.New(driver, cfg)
	if err != nil {
		reporter.Fatal("Cannot open the display: %v", err)
		return err
	}
	defer surf.Close()
	reporter.SetWindow(surf.Window())

	palette := surf.Palette()
	if err := surf.RenderDummyFrame(palette[0], screenWidth, screenHeight); err != nil {
		return err
	}
	addon := ""
	if opts.titleAddon != "" {
		addon = " - " + opts.titleAddon
	}
	surf.SetTitleAddon(addon)

	kind := opts.pattern
	surf.OnKey(func(key string) {
		switch key {
		case "F11":
			if err := surf.ToggleFullScreen(); err != nil {
				reporter.Warning("Cannot switch full screen: %v", err)
			}
		case "Space", " ":
			kind = kind.Next()
			slog.Info("Switched test pattern", "pattern", kind)
		}
	})

	frameUnits := timing.FrameUnits(timing.PALRefreshHz, limiter.Unit())
	blink := false

	limiter.Start()
	for frame := 0; opts.frames == 0 || frame < opts.frames; frame++ {
		if !surf.HandleEvents() {
			slog.Info("Quit requested", "frame", frame)
			break
		}

		f, err := surf.Acquire()
		if err != nil {
			return fmt.Errorf("failed to acquire frame: %w", err)
		}
		pattern.Draw(f, palette, kind, pattern.Step(frame))
		if err := surf.Update(); err != nil {
			return err
		}

		limiter.Delay(frameUnits)

		if limiter.SecondsTrigger() {
			stats := limiter.Stats()
			slog.Info("Frame stats",
				"frames", stats.Frames,
				"skipped", stats.Skipped,
				"clamped", stats.Clamped,
				"drift_ms", limiter.Drift().Milliseconds())

			blink = !blink
			if blink {
				surf.SetTitleAddon(addon + " *")
			} else {
				surf.SetTitleAddon(addon)
			}
		}
	}

	slog.Info("Demo finished", "frames", limiter.Stats().Frames)
	return nil
}
