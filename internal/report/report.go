// Package report renders a scene as a standalone go-echarts HTML page.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lyj289/3d-geojson-viewer/internal/geo"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

// DefaultAssetsHost serves the echarts scripts referenced by the page.
const DefaultAssetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Options controls the report page.
type Options struct {
	Title      string
	AssetsHost string
	Width      string
	Height     string
}

func (o *Options) defaults() {
	if o.Title == "" {
		o.Title = "GeoJSON scene"
	}
	if o.AssetsHost == "" {
		o.AssetsHost = DefaultAssetsHost
	}
	if o.Width == "" {
		o.Width = "900px"
	}
	if o.Height == "" {
		o.Height = "700px"
	}
}

// Write renders the line series into a Line3D chart and all points into a
// Scatter3D chart, both on one page.
func Write(w io.Writer, series []scene.Series, o Options) error {
	o.defaults()

	lines := charts.NewLine3D()
	lines.SetGlobalOptions(globalOpts(o, "Tracks", fmt.Sprintf("%d lines", countLines(series)))...)

	points := charts.NewScatter3D()
	points.SetGlobalOptions(globalOpts(o, "Points", fmt.Sprintf("%d points", countPoints(series)))...)

	var all []opts.Chart3DData
	for i, s := range series {
		if s.IsLine() {
			name := s.Name
			if name == "" {
				name = fmt.Sprintf("line %d", i)
			}
			lines.AddSeries(name, chartData(s.Data),
				charts.WithLineStyleOpts(opts.LineStyle{Width: scene.LineWidth, Color: scene.LineColor}))
			continue
		}
		all = append(all, chartData(s.Data)...)
	}
	points.AddSeries("points", all,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: scene.SymbolSize}))

	page := components.NewPage()
	page.SetAssetsHost(o.AssetsHost)
	page.PageTitle = o.Title
	page.AddCharts(lines, points)

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	return nil
}

func globalOpts(o Options, title, subtitle string) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  o.Title,
			Width:      o.Width,
			Height:     o.Height,
			AssetsHost: o.AssetsHost,
		}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "x", Type: "value"}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "y", Type: "value"}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "z", Type: "value"}),
	}
}

func chartData(ps []geo.Position) []opts.Chart3DData {
	data := make([]opts.Chart3DData, 0, len(ps))
	for _, p := range ps {
		data = append(data, opts.Chart3DData{Value: []interface{}{p[0], p[1], p[2]}})
	}
	return data
}

func countLines(series []scene.Series) int {
	n := 0
	for _, s := range series {
		if s.IsLine() {
			n++
		}
	}
	return n
}

func countPoints(series []scene.Series) int {
	n := 0
	for _, s := range series {
		if !s.IsLine() {
			n += len(s.Data)
		}
	}
	return n
}
