// Package config handles configuration loading and shared data structures.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied to missing or zero config values.
const (
	DefaultTitle          = "3D GeoJSON Viewer"
	DefaultEchartsHost    = "https://cdn.jsdelivr.net/npm/"
	DefaultMaxUploadBytes = 16 << 20
	DefaultSessionTTL     = 30 * time.Minute
	DefaultPreviewWidth   = 800
	DefaultPreviewHeight  = 600
	MaxPreviewSide        = 4096
)

// Config represents the root configuration file structure.
type Config struct {
	Title       string `yaml:"title,omitempty" json:"title"`
	EchartsHost string `yaml:"echarts_host,omitempty" json:"-"`

	// Example is a path or http(s) URL of the GeoJSON shown on page load.
	Example string `yaml:"example,omitempty" json:"-"`
	// ExampleInline is GeoJSON text defined directly in config.yaml; it wins over Example.
	ExampleInline string `yaml:"example_geojson,omitempty" json:"-"`

	Preview        Preview       `yaml:"preview,omitempty" json:"preview"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes,omitempty" json:"max_upload_bytes"`
	SessionTTL     time.Duration `yaml:"session_ttl,omitempty" json:"-"`
}

// Preview holds the default raster preview size.
type Preview struct {
	Width  int `yaml:"width,omitempty" json:"width"`
	Height int `yaml:"height,omitempty" json:"height"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads and parses the YAML configuration file from the specified path.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.EchartsHost == "" {
		c.EchartsHost = DefaultEchartsHost
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = DefaultSessionTTL
	}
	if c.Preview.Width <= 0 || c.Preview.Width > MaxPreviewSide {
		c.Preview.Width = DefaultPreviewWidth
	}
	if c.Preview.Height <= 0 || c.Preview.Height > MaxPreviewSide {
		c.Preview.Height = DefaultPreviewHeight
	}
}
