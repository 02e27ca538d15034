package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lyj289/3d-geojson-viewer/internal/report"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in"     description:"Input GeoJSON file path. Reads from stdin if empty"`
	Output string `short:"o" long:"out"    description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" choice:"html" default:"json"`
	View   string `short:"v" long:"view"   description:"Camera preset" choice:"default" choice:"xy" choice:"xz" choice:"yz" default:"default"`
	Title  string `short:"t" long:"title"  description:"Report title (html format)" default:"GeoJSON scene"`
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

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading input file: %v\n", err)
			os.Exit(1)
		}
	} else {
		inputData, err = io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", err)
			os.Exit(1)
		}
	}

	view, err := scene.ParseView(opts.View)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	series, err := scene.TransformBytes(inputData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error transforming GeoJSON: %v\n", err)
		os.Exit(1)
	}

	option := scene.NewOption(series, view)

	// marshal
	var outputData []byte
	switch opts.Format {
	case "yaml":
		outputData, err = yaml.Marshal(option)
	case "html":
		var buf bytes.Buffer
		err = report.Write(&buf, series, report.Options{Title: opts.Title})
		outputData = buf.Bytes()
	default:
		outputData, err = json.MarshalIndent(option, "", "  ")
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d series to %s (format: %s)\n", len(series), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
