// Package scene turns GeoJSON features into drawable 3D series and assembles
// the chart option handed to the browser's echarts-gl surface.
package scene

import (
	"fmt"

	"github.com/lyj289/3d-geojson-viewer/internal/geo"
)

// Kind is the echarts-gl series type.
type Kind string

// Series kinds produced by Transform.
const (
	KindLine    Kind = "line3D"
	KindScatter Kind = "scatter3D"
)

// Fixed series styling.
const (
	LineWidth  = 4
	LineColor  = "red"
	SymbolSize = 3
)

// Series is one drawable: a polyline or a point cloud in the normalized frame.
type Series struct {
	Kind Kind           `json:"type" yaml:"type"`
	Name string         `json:"name,omitempty" yaml:"name,omitempty"`
	Data []geo.Position `json:"data" yaml:"data"`
}

// IsLine reports whether s is a line series.
func (s Series) IsLine() bool { return s.Kind == KindLine }

// TransformBytes parses a GeoJSON document and transforms it.
func TransformBytes(data []byte) ([]Series, error) {
	fc, err := geo.Parse(data)
	if err != nil {
		return nil, err
	}

	return Transform(fc)
}

// Transform builds the series list for a feature collection.
//
// Every LineString yields a line series, and every feature, whatever its
// type, yields a scatter series that holds the point for a Point feature and
// nothing otherwise. Series of feature i precede those of feature i+1.
// A nil collection fails like an empty one.
func Transform(fc *geo.FeatureCollection) ([]Series, error) {
	origin, err := fc.Origin()
	if err != nil {
		return nil, err
	}

	series := make([]Series, 0, 2*len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d: %w", i, geo.ErrMissingGeometry)
		}

		if f.Geometry.Type == geo.TypeLineString {
			line, err := f.Geometry.LineCoordinates()
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			data, err := geo.NormalizeAll(line, origin)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			series = append(series, Series{
				Kind: KindLine,
				Name: f.Name(),
				Data: data,
			})
		}

		var points []geo.Position
		if f.Geometry.Type == geo.TypePoint {
			p, err := f.Geometry.PointCoordinates()
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			points = append(points, p)
		}
		data, err := geo.NormalizeAll(points, origin)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		series = append(series, Series{
			Kind: KindScatter,
			Data: data,
		})
	}

	return series, nil
}
