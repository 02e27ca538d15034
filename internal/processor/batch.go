package processor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

// ErrDuplicateOutput is returned for an input whose output path is already
// claimed by an earlier input in the same batch.
var ErrDuplicateOutput = errors.New("output path already used by another input")

// Renderer writes one transformed document to w.
type Renderer func(w io.Writer, series []scene.Series) error

// Result is the outcome of one input file.
type Result struct {
	Err     error
	Input   string
	Output  string
	Skipped bool
}

type job struct {
	Input  string
	Output string
}

// OutputPath maps an input file to <outDir>/<base name>.<ext>.
func OutputPath(input, outDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+"."+ext)
}

// ProcessFiles transforms every input with up to concurrency workers and hands
// the series to render. Existing outputs are kept unless force is set.
// Results come back in input order. Inputs that map to an output path taken
// by an earlier input fail with ErrDuplicateOutput and are not rendered.
func ProcessFiles(inputs []string, outDir, ext string, concurrency int, force bool, render Renderer) []Result {
	if concurrency <= 0 {
		concurrency = 1
	}

	jobs := make(chan int, len(inputs))
	results := make([]Result, len(inputs))

	claimed := make(map[string]string, len(inputs))
	for i, input := range inputs {
		out := OutputPath(input, outDir, ext)
		if first, ok := claimed[out]; ok {
			err := fmt.Errorf("%w: %s", ErrDuplicateOutput, first)
			log.Error().
				Err(err).
				Str("input", input).
				Str("output", out).
				Msg("Failed to process file")
			results[i] = Result{Input: input, Output: out, Err: err}
			continue
		}
		claimed[out] = input
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				j := job{Input: inputs[i], Output: OutputPath(inputs[i], outDir, ext)}
				skipped, err := processFile(j, force, render)
				if err != nil {
					log.Error().
						Err(err).
						Str("input", j.Input).
						Msg("Failed to process file")
				}
				results[i] = Result{Input: j.Input, Output: j.Output, Skipped: skipped, Err: err}
			}
		}()
	}
	wg.Wait()

	return results
}

func processFile(j job, force bool, render Renderer) (bool, error) {
	// Check existence if not forcing overwrite
	if !force {
		if info, err := os.Stat(j.Output); err == nil && info.Size() > 0 {
			log.Debug().Str("output", j.Output).Msg("Output exists, skipping")
			return true, nil
		}
	}

	data, err := os.ReadFile(j.Input)
	if err != nil {
		return false, err
	}

	series, err := scene.TransformBytes(data)
	if err != nil {
		return false, fmt.Errorf("transform: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(j.Output), 0755); err != nil {
		return false, err
	}

	if err := writeOutput(j.Output, series, render); err != nil {
		return false, err
	}

	log.Debug().
		Str("input", j.Input).
		Str("output", j.Output).
		Int("series", len(series)).
		Msg("File rendered")

	return false, nil
}

// writeOutput renders into path and removes the file on any failure, so a
// partial output is never mistaken for a finished one.
func writeOutput(path string, series []scene.Series, render Renderer) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	bw := bufio.NewWriter(f)
	if err = render(bw, series); err != nil {
		_ = f.Close()
		return err
	}
	if err = bw.Flush(); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
