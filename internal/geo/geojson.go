// Package geo handles GeoJSON data structures and coordinate normalization.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Geometry types the viewer draws. Anything else is carried through but not plotted.
const (
	TypePoint      = "Point"
	TypeLineString = "LineString"
)

var (
	// ErrNoFeatures is returned when a collection has nothing to take an origin from.
	ErrNoFeatures = errors.New("feature collection has no features")
	// ErrMissingGeometry is returned for a feature with a null or absent geometry.
	ErrMissingGeometry = errors.New("feature has no geometry")
	// ErrBadCoordinates is returned when coordinates do not match the geometry type.
	ErrBadCoordinates = errors.New("coordinates do not match geometry type")
	// ErrBadPosition is returned for a position with fewer than two numbers.
	ErrBadPosition = errors.New("position needs at least longitude and latitude")
	// ErrPositionRange is returned when a position leaves the float64 range once normalized.
	ErrPositionRange = errors.New("normalized position is out of range")
)

// FeatureCollection represents a collection of geographic features.
// It follows the standard GeoJSON structure.
type FeatureCollection struct {
	Type     string    `json:"type" yaml:"type"`
	Features []Feature `json:"features" yaml:"features"`
}

// Feature represents a single geographic feature with geometry and properties.
type Feature struct {
	Properties map[string]any `json:"properties" yaml:"properties"`
	Geometry   *Geometry      `json:"geometry" yaml:"geometry"`
	Type       string         `json:"type" yaml:"type"`
}

// Geometry keeps coordinates raw because their nesting depends on Type.
type Geometry struct {
	Type        string          `json:"type" yaml:"type"`
	Coordinates json.RawMessage `json:"coordinates" yaml:"-"`
}

// Name returns the "name" property, or "" when it is absent or not a string.
func (f Feature) Name() string {
	name, _ := f.Properties["name"].(string)
	return name
}

// Parse decodes a GeoJSON document.
func Parse(data []byte) (*FeatureCollection, error) {
	var fc FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	return &fc, nil
}

// PointCoordinates decodes the single position of a Point geometry.
func (g *Geometry) PointCoordinates() (Position, error) {
	var raw []float64
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrBadCoordinates, g.Type, err)
	}

	return NewPosition(raw)
}

// LineCoordinates decodes the ordered positions of a LineString geometry.
func (g *Geometry) LineCoordinates() ([]Position, error) {
	var raw [][]float64
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadCoordinates, g.Type, err)
	}

	line := make([]Position, 0, len(raw))
	for i, r := range raw {
		p, err := NewPosition(r)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		line = append(line, p)
	}

	return line, nil
}

// Origin returns the base point of a collection: the first position of the
// first feature's geometry. A Point contributes its own coordinate; for any
// other geometry the first element of its coordinates must be a position.
func (fc *FeatureCollection) Origin() (Position, error) {
	if fc == nil || len(fc.Features) == 0 {
		return Position{}, ErrNoFeatures
	}

	g := fc.Features[0].Geometry
	if g == nil {
		return Position{}, fmt.Errorf("feature 0: %w", ErrMissingGeometry)
	}

	if g.Type == TypePoint {
		return g.PointCoordinates()
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(g.Coordinates, &raw); err != nil {
		return Position{}, fmt.Errorf("%w: %s: %v", ErrBadCoordinates, g.Type, err)
	}
	if len(raw) == 0 {
		return Position{}, fmt.Errorf("%w: %s has no positions", ErrBadCoordinates, g.Type)
	}

	var first []float64
	if err := json.Unmarshal(raw[0], &first); err != nil {
		return Position{}, fmt.Errorf("%w: first element of %s is not a position", ErrBadCoordinates, g.Type)
	}

	return NewPosition(first)
}
