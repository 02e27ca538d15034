package geo

import (
	"fmt"
	"math"
)

// Display scales applied after subtracting the origin. They only make a small
// GPS track legible on an orthographic plot; this is not a projection.
const (
	HorizontalScale = 1e6
	AltitudeScale   = 1e2
)

// Position is a [lng, lat, alt] triple.
type Position [3]float64

// NewPosition builds a Position from a decoded GeoJSON position.
// A two-element position is treated as having zero altitude; extra elements are ignored.
func NewPosition(raw []float64) (Position, error) {
	if len(raw) < 2 {
		return Position{}, fmt.Errorf("%w: got %d values", ErrBadPosition, len(raw))
	}

	p := Position{raw[0], raw[1], 0}
	if len(raw) > 2 {
		p[2] = raw[2]
	}

	return p, nil
}

// Lng returns the longitude.
func (p Position) Lng() float64 { return p[0] }

// Lat returns the latitude.
func (p Position) Lat() float64 { return p[1] }

// Alt returns the altitude.
func (p Position) Alt() float64 { return p[2] }

// IsFinite reports whether every component of p is a finite number.
func (p Position) IsFinite() bool {
	for _, v := range p {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// Normalize moves p into the local frame centred on origin:
//
//	x = (lng - origin.lng) * 1e6
//	y = (lat - origin.lat) * 1e6
//	z = (alt - origin.alt) * 1e2
func Normalize(p, origin Position) Position {
	return Position{
		(p.Lng() - origin.Lng()) * HorizontalScale,
		(p.Lat() - origin.Lat()) * HorizontalScale,
		(p.Alt() - origin.Alt()) * AltitudeScale,
	}
}

// NormalizeAll applies Normalize to every position, preserving order.
// The result is never nil so it marshals as an empty array. A position that
// overflows once normalized fails with ErrPositionRange.
func NormalizeAll(ps []Position, origin Position) ([]Position, error) {
	out := make([]Position, 0, len(ps))
	for i, p := range ps {
		n := Normalize(p, origin)
		if !n.IsFinite() {
			return nil, fmt.Errorf("position %d: %w", i, ErrPositionRange)
		}
		out = append(out, n)
	}

	return out, nil
}
