package main

import (
	"io"
	"os"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/logger"
	"github.com/lyj289/3d-geojson-viewer/internal/preview"
	"github.com/lyj289/3d-geojson-viewer/internal/processor"
	"github.com/lyj289/3d-geojson-viewer/internal/report"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	OutDir      string `short:"o" long:"out"         env:"RENDER_OUT"   description:"Output directory" default:"out"`
	Format      string `short:"f" long:"format"      env:"RENDER_FORMAT" description:"Output format" choice:"png" choice:"webp" choice:"html" default:"png"`
	View        string `short:"v" long:"view"        env:"RENDER_VIEW"  description:"Camera preset" choice:"default" choice:"xy" choice:"xz" choice:"yz" default:"default"`
	Width       int    `short:"W" long:"width"       env:"RENDER_WIDTH" description:"Preview width in pixels" default:"800"`
	Height      int    `short:"H" long:"height"      env:"RENDER_HEIGHT" description:"Preview height in pixels" default:"600"`
	Concurrency int    `short:"p" long:"concurrency" env:"CONCURRENCY"  description:"Concurrency" default:"4"`
	Force       bool   `short:"F" long:"force"       description:"Force overwrite of existing files"`

	Args struct {
		Inputs []string `positional-arg-name:"FILE" required:"1"`
	} `positional-args:"yes"`
}

func main() {
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	view, err := scene.ParseView(opts.View)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid view")
	}

	if opts.Width <= 0 || opts.Width > config.MaxPreviewSide {
		opts.Width = config.DefaultPreviewWidth
	}
	if opts.Height <= 0 || opts.Height > config.MaxPreviewSide {
		opts.Height = config.DefaultPreviewHeight
	}

	var render processor.Renderer
	if opts.Format == "html" {
		render = func(w io.Writer, series []scene.Series) error {
			return report.Write(w, series, report.Options{})
		}
	} else {
		format, err := preview.ParseFormat(opts.Format)
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid format")
		}
		o := preview.Options{View: view, Format: format, Width: opts.Width, Height: opts.Height}
		render = func(w io.Writer, series []scene.Series) error {
			return preview.Render(w, series, o)
		}
	}

	log.Info().
		Int("files", len(opts.Args.Inputs)).
		Str("format", opts.Format).
		Str("view", string(view)).
		Int("concurrency", opts.Concurrency).
		Msg("Starting render")

	results := processor.ProcessFiles(opts.Args.Inputs, opts.OutDir, opts.Format, opts.Concurrency, opts.Force, render)

	var rendered, skipped, failed int
	for _, res := range results {
		switch {
		case res.Err != nil:
			failed++
		case res.Skipped:
			skipped++
		default:
			rendered++
		}
	}

	log.Info().
		Int("rendered", rendered).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("Render finished")

	if failed > 0 {
		os.Exit(1)
	}
}
