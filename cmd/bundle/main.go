package main

import (
	"fmt"
	"log"
	"os"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/page"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Output      string `short:"o" long:"out"          description:"Output file" default:"index.html"`
	Title       string `short:"t" long:"title"        description:"Page title"`
	EchartsHost string `short:"e" long:"echarts-host" description:"CDN prefix for echarts and echarts-gl"`
	APIBase     string `short:"a" long:"api-base"     description:"Path prefix of the viewer API when served behind a reverse proxy, e.g. /viewer"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	cfg := config.Default()
	if opts.Title != "" {
		cfg.Title = opts.Title
	}
	if opts.EchartsHost != "" {
		cfg.EchartsHost = opts.EchartsHost
	}

	finalHTML, err := page.Build(page.Data{
		Title:       cfg.Title,
		EchartsHost: cfg.EchartsHost,
		APIBase:     opts.APIBase,
	})
	if err != nil {
		log.Fatal("error build page:", err)
	}

	err = os.WriteFile(opts.Output, finalHTML, 0644)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("bundle done:", opts.Output)
}
