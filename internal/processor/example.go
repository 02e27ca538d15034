// Package processor loads and batch-processes GeoJSON documents.
package processor

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

// LoadExample resolves the GeoJSON shown on page load.
// Inline data from config wins, then Example as an http(s) URL or a local
// path. It returns "" when no example is configured. The document must
// transform cleanly so a bad config is caught at startup.
func LoadExample(client *http.Client, cfg *config.Config) (string, error) {
	var (
		text string
		err  error
	)

	switch {
	case cfg.ExampleInline != "":
		log.Info().Msg("Using inline example data from config")
		text = cfg.ExampleInline

	case strings.HasPrefix(cfg.Example, "http://") || strings.HasPrefix(cfg.Example, "https://"):
		log.Info().Str("source", cfg.Example).Msg("Downloading example data")
		text, err = fetch(client, cfg.Example)

	case cfg.Example != "":
		log.Info().Str("path", cfg.Example).Msg("Reading example data")
		var data []byte
		data, err = os.ReadFile(cfg.Example)
		text = string(data)

	default:
		return "", nil
	}

	if err != nil {
		return "", err
	}

	series, err := scene.TransformBytes([]byte(text))
	if err != nil {
		return "", fmt.Errorf("example data: %w", err)
	}

	log.Debug().Int("series", len(series)).Msg("Example data loaded")
	return text, nil
}

func fetch(client *http.Client, url string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", err
	}
	// Explicitly ignore close error as it's a read-only operation
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(data), nil
}
