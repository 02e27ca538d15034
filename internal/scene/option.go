package scene

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lyj289/3d-geojson-viewer/internal/geo"
)

// View is a camera preset for the 3D grid.
type View string

// Camera presets. ViewDefault leaves the angles to the chart library.
const (
	ViewDefault View = "default"
	ViewXY      View = "xy"
	ViewXZ      View = "xz"
	ViewYZ      View = "yz"
)

// ParseView accepts a preset name; the empty string is the default view.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "", ViewDefault:
		return ViewDefault, nil
	case ViewXY, ViewXZ, ViewYZ:
		return v, nil
	default:
		return "", fmt.Errorf("unknown view %q", s)
	}
}

// Angles returns the viewControl alpha/beta of the preset.
// ok is false for the default view.
func (v View) Angles() (alpha, beta float64, ok bool) {
	switch v {
	case ViewXY:
		return 90, 0, true
	case ViewXZ:
		return 0, 0, true
	case ViewYZ:
		return 0, 90, true
	default:
		return 0, 0, false
	}
}

// Option is the complete scene description for one render. It is a value:
// every change builds a new Option, and the surface always receives it whole.
type Option struct {
	series []Series
	view   View
}

// NewOption builds an option from a series list and a camera preset.
func NewOption(series []Series, view View) Option {
	if view == "" {
		view = ViewDefault
	}

	return Option{series: cloneSeries(series), view: view}
}

// Series returns a copy of the option's series.
func (o Option) Series() []Series { return cloneSeries(o.series) }

// View returns the camera preset.
func (o Option) View() View {
	if o.view == "" {
		return ViewDefault
	}
	return o.view
}

// WithView returns a copy of o with another camera preset.
func (o Option) WithView(v View) Option { return NewOption(o.series, v) }

// Document is the echarts option as it goes over the wire.
type Document struct {
	Tooltip         struct{}         `json:"tooltip" yaml:"tooltip"`
	BackgroundColor string           `json:"backgroundColor" yaml:"backgroundColor"`
	XAxis3D         Axis3D           `json:"xAxis3D" yaml:"xAxis3D"`
	YAxis3D         Axis3D           `json:"yAxis3D" yaml:"yAxis3D"`
	ZAxis3D         Axis3D           `json:"zAxis3D" yaml:"zAxis3D"`
	Grid3D          Grid3D           `json:"grid3D" yaml:"grid3D"`
	Series          []SeriesDocument `json:"series" yaml:"series"`
}

// Axis3D is an axis config of the 3D grid.
type Axis3D struct {
	Type string `json:"type" yaml:"type"`
}

// Grid3D is the 3D grid config.
type Grid3D struct {
	ViewControl ViewControl `json:"viewControl" yaml:"viewControl"`
}

// ViewControl holds the projection and optional camera angles.
type ViewControl struct {
	Alpha      *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Beta       *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
	Projection string   `json:"projection" yaml:"projection"`
}

// SeriesDocument is one series in the wire format.
type SeriesDocument struct {
	LineStyle  *LineStyle     `json:"lineStyle,omitempty" yaml:"lineStyle,omitempty"`
	Type       Kind           `json:"type" yaml:"type"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Data       []geo.Position `json:"data" yaml:"data"`
	SymbolSize int            `json:"symbolSize,omitempty" yaml:"symbolSize,omitempty"`
}

// LineStyle is the style of a line series.
type LineStyle struct {
	Color string `json:"color" yaml:"color"`
	Width int    `json:"width" yaml:"width"`
}

// Document renders the option into its wire form.
func (o Option) Document() Document {
	doc := Document{
		BackgroundColor: "#fff",
		XAxis3D:         Axis3D{Type: "value"},
		YAxis3D:         Axis3D{Type: "value"},
		ZAxis3D:         Axis3D{Type: "value"},
		Grid3D:          Grid3D{ViewControl: ViewControl{Projection: "orthographic"}},
		Series:          make([]SeriesDocument, 0, len(o.series)),
	}

	if alpha, beta, ok := o.View().Angles(); ok {
		doc.Grid3D.ViewControl.Alpha = &alpha
		doc.Grid3D.ViewControl.Beta = &beta
	}

	for _, s := range o.series {
		sd := SeriesDocument{Type: s.Kind, Name: s.Name, Data: s.Data}
		if sd.Data == nil {
			sd.Data = []geo.Position{}
		}
		switch s.Kind {
		case KindLine:
			sd.LineStyle = &LineStyle{Width: LineWidth, Color: LineColor}
		case KindScatter:
			sd.SymbolSize = SymbolSize
		}
		doc.Series = append(doc.Series, sd)
	}

	return doc
}

// MarshalJSON implements json.Marshaler.
func (o Option) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Document())
}

// MarshalYAML implements yaml.Marshaler.
func (o Option) MarshalYAML() (any, error) {
	return o.Document(), nil
}

func cloneSeries(in []Series) []Series {
	out := make([]Series, len(in))
	for i, s := range in {
		out[i] = s
		out[i].Data = append([]geo.Position(nil), s.Data...)
		if s.Data != nil && out[i].Data == nil {
			out[i].Data = []geo.Position{}
		}
	}
	return out
}
