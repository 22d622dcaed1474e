package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "gen_snapshots_table"
	app.Description = "Builds an HTML table of the PNG snapshots saved by headless runs"
	app.Usage = "gen_snapshots_table --snapshots DIR [--out FILE]"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "snapshots",
			Usage: "Snapshots directory",
		},
		cli.StringFlag{
			Name:  "out",
			Usage: "Markdown file to update between the snapshot markers (created when missing)",
			Value: "SNAPSHOTS.md",
		},
		cli.IntFlag{
			Name:  "cols",
			Usage: "Number of columns per row",
			Value: 4,
		},
		cli.IntFlag{
			Name:  "width",
			Usage: "Image width in pixels",
			Value: 192,
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error generating snapshot table", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	dir := c.String("snapshots")
	if dir == "" {
		cli.ShowAppHelp(c)
		return errNoSnapshotDir
	}

	items, err := collect(dir)
	if err != nil {
		return err
	}

	out := c.String("out")
	if err := writeTable(out, renderTable(items, dir, c.Int("cols"), c.Int("width"))); err != nil {
		return err
	}
	slog.Info("Snapshot table written", "file", out, "snapshots", len(items))
	return nil
}
