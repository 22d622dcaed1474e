package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/backend/headless"
	"github.com/valerio/go-emutools/emutools/backend/sdl2"
	"github.com/valerio/go-emutools/emutools/backend/terminal"
	"github.com/valerio/go-emutools/emutools/debuglog"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/pattern"
	"github.com/valerio/go-emutools/emutools/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "emutools"
	app.Description = "Display surface and frame pacing demo for 8-bit emulators"
	app.Usage = "emutools [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend: headless, terminal or sdl2",
			Value: "terminal",
		},
		cli.StringFlag{
			Name:  "access",
			Usage: "Pixel access mode: locked or shadow",
			Value: "shadow",
		},
		cli.IntFlag{
			Name:  "quality",
			Usage: "Render scale quality: 0 = nearest, 1 = linear, 2 = best",
			Value: int(display.QualityNearest),
		},
		cli.StringFlag{
			Name:  "format",
			Usage: "Texture pixel format, e.g. ARGB8888, ABGR8888 or ARGB2101010",
			Value: display.FormatARGB8888.String(),
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run, 0 runs until quit (required for headless)",
		},
		cli.BoolFlag{
			Name:  "unpaced",
			Usage: "Run frames as fast as possible (always on for headless)",
		},
		cli.BoolFlag{
			Name:  "fullscreen",
			Usage: "Start in full-screen mode",
		},
		cli.StringFlag{
			Name:  "title-addon",
			Usage: "Text appended to the window title",
		},
		cli.StringFlag{
			Name:  "pattern",
			Usage: "Test pattern: checkerboard, bars, stripes or diagonal",
			Value: pattern.Checkerboard.String(),
		},
		cli.StringFlag{
			Name:  "palette",
			Usage: "Raw RGB palette file, 3 bytes per colour (default: VIC-20 colours)",
		},
		cli.StringFlag{
			Name:  "debug-log",
			Usage: "Write debug logs to this file (- for stderr)",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save PNG snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runApp

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emutools", "error", err)
		os.Exit(1)
	}
}

func runApp(c *cli.Context) error {
	access, err := display.ParseAccessMode(c.String("access"))
	if err != nil {
		return err
	}
	quality := display.ScaleQuality(c.Int("quality"))
	if !quality.Valid() {
		return fmt.Errorf("invalid quality %d, expected 0, 1 or 2", c.Int("quality"))
	}
	format, err := display.ParsePixelFormat(c.String("format"))
	if err != nil {
		return err
	}
	kind, err := pattern.Parse(c.String("pattern"))
	if err != nil {
		return err
	}

	colors := vic20Colors
	if path := c.String("palette"); path != "" {
		colors, err = loadPalette(path)
		if err != nil {
			return err
		}
	}

	var logSink slog.Handler
	if path := c.String("debug-log"); path != "" {
		logger, closer, err := debuglog.Open(path, slog.LevelDebug)
		if err != nil {
			return err
		}
		defer closer.Close()
		slog.SetDefault(logger)
		if path != "-" {
			logSink = logger.Handler()
		}
	}

	driver, err := newDriver(c, logSink)
	if err != nil {
		return err
	}

	opts := demoOptions{
		title:        "emutools",
		titleAddon:   c.String("title-addon"),
		organization: "emutools",
		app:          "demo",
		frames:       c.Int("frames"),
		fullscreen:   c.Bool("fullscreen"),
		access:       access,
		quality:      quality,
		format:       format,
		pattern:      kind,
		colors:       colors,
	}
	return runDemo(driver, opts, newLimiter(c))
}

func newLimiter(c *cli.Context) timing.Limiter {
	if c.Bool("unpaced") || c.String("backend") == "headless" {
		return timing.NewNoOpLimiter()
	}
	return timing.NewPacer()
}

// newDriver creates the selected backend. logSink receives the debug log
// while the terminal backend owns stderr.
func newDriver(c *cli.Context, logSink slog.Handler) (backend.Driver, error) {
	switch name := c.String("backend"); name {
	case "headless":
		if c.Int("frames") <= 0 {
			return nil, errors.New("headless mode requires --frames option with a positive value")
		}
		if c.String("debug-log") == "" {
			handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			})
			slog.SetDefault(slog.New(handler))
		}

		snapshots, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), "emutools")
		if err != nil {
			return nil, err
		}
		if snapshots.Enabled {
			slog.Info("Saving snapshots", "interval", snapshots.Interval, "dir", snapshots.Directory)
		}
		return headless.New(headless.Options{Snapshots: snapshots}), nil
	case "terminal":
		var opts []terminal.Option
		if logSink != nil {
			opts = append(opts, terminal.WithLogSink(logSink))
		} else if c.String("debug-log") == "-" {
			opts = append(opts, terminal.WithLogLevel(slog.LevelDebug))
		}
		return terminal.New(opts...), nil
	case "sdl2":
		return sdl2.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}
