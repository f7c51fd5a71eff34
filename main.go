package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"mbmp/bundle"
	"mbmp/config"
	"mbmp/convert"
	"mbmp/edit"
	"mbmp/parallel"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Config   kong.ConfigFlag `help:"TOML file with default flag values"`
	Workers  int             `help:"Number of parallel workers, 0 for one per CPU" default:"0"`
	LogLevel string          `help:"Minimum log level" enum:"debug,info,warn,error" default:"info"`
	LogJSON  bool            `help:"Log as JSON instead of text"`

	Convert convert.CLICmd   `cmd:"" help:"Convert a folder of images to or from MBMP"`
	Info    edit.InfoCmd     `cmd:"" help:"Describe image files"`
	Crop    edit.CropCmd     `cmd:"" help:"Extract a rectangle into a new MBMP file"`
	Draw    edit.DrawCmd     `cmd:"" help:"Overwrite part of an image with another one"`
	Pack    bundle.PackCmd   `cmd:"" help:"Append several images into one MBMP bundle"`
	Unpack  bundle.UnpackCmd `cmd:"" help:"Split an MBMP bundle into standalone files"`
}

func setupLogging(level string, json bool) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if json {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Validate installs the logger as soon as the flags are known, before any
// command hook or Run gets to log.
func (c *CLI) Validate() error {
	return setupLogging(c.LogLevel, c.LogJSON)
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("mbmp"),
		kong.Description("Convert, inspect and edit MBMP managed bitmaps."),
		kong.UsageOnError(),
		kong.Configuration(config.TOML, config.DefaultPaths...),
		kong.BindTo(os.Stdout, (*io.Writer)(nil)),
	)

	pool := parallel.Start(cli.Workers)
	slog.Debug("running", "command", kctx.Command(), "workers", pool.Workers())

	err := kctx.Run(pool)
	kctx.FatalIfErrorf(err)
}
