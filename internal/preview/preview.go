// Package preview rasterizes a scene onto the plane of a camera preset.
package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"

	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

// Format is an output image encoding.
type Format string

// Supported formats.
const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// ParseFormat accepts "png" or "webp".
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPNG, FormatWebP:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported preview format %q", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatWebP {
		return "image/webp"
	}
	return "image/png"
}

// Options controls a preview render.
type Options struct {
	Title  string
	View   scene.View
	Format Format
	Width  int
	Height int
}

const (
	// plots are drawn at this multiple of the target size, then scaled down
	supersample = 2
	// vgimg renders at 96 dpi
	dpi = 96
)

var (
	lineColor  = color.RGBA{R: 255, A: 255}
	pointColor = color.RGBA{R: 32, G: 96, B: 200, A: 255}
)

// Render draws the series orthographically onto the preset's plane and writes
// the encoded image to w. The default view is drawn as the XY plane.
func Render(w io.Writer, series []scene.Series, o Options) error {
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("invalid preview size %dx%d", o.Width, o.Height)
	}
	if o.Format == "" {
		o.Format = FormatPNG
	}

	p, err := buildPlot(series, o)
	if err != nil {
		return err
	}

	width := vg.Length(o.Width*supersample) * vg.Inch / dpi
	height := vg.Length(o.Height*supersample) * vg.Inch / dpi
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("plot writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	src, err := png.Decode(&buf)
	if err != nil {
		return fmt.Errorf("decode plot: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	log.Debug().
		Str("view", string(o.View)).
		Str("format", string(o.Format)).
		Int("width", o.Width).
		Int("height", o.Height).
		Int("series", len(series)).
		Msg("Preview rendered")

	switch o.Format {
	case FormatWebP:
		return webp.Encode(w, dst, &webp.Options{Lossless: false, Quality: 85})
	case FormatPNG:
		return png.Encode(w, dst)
	default:
		return fmt.Errorf("unsupported preview format %q", o.Format)
	}
}

// Plane returns the indices of the normalized coordinates shown by a view and
// their axis labels.
func Plane(v scene.View) (h, vert int, hLabel, vLabel string) {
	switch v {
	case scene.ViewXZ:
		return 0, 2, "x", "z"
	case scene.ViewYZ:
		return 1, 2, "y", "z"
	default:
		return 0, 1, "x", "y"
	}
}

func buildPlot(series []scene.Series, o Options) (*plot.Plot, error) {
	h, v, hLabel, vLabel := Plane(o.View)

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = hLabel
	p.Y.Label.Text = vLabel

	var xs, ys []float64
	for _, s := range series {
		if len(s.Data) == 0 {
			continue
		}

		pts := make(plotter.XYs, len(s.Data))
		for i, pos := range s.Data {
			pts[i].X, pts[i].Y = pos[h], pos[v]
			xs = append(xs, pos[h])
			ys = append(ys, pos[v])
		}

		if s.IsLine() {
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("line series %q: %w", s.Name, err)
			}
			line.Width = vg.Points(scene.LineWidth * supersample / 2)
			line.Color = lineColor
			p.Add(line)
			continue
		}

		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("point series: %w", err)
		}
		sc.GlyphStyle.Shape = vgdraw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(scene.SymbolSize * supersample / 2)
		sc.GlyphStyle.Color = pointColor
		p.Add(sc)
	}

	p.X.Min, p.X.Max = paddedRange(xs)
	p.Y.Min, p.Y.Max = paddedRange(ys)

	return p, nil
}

// paddedRange returns the bounds of vs with 5% padding, or [-1, 1] when the
// values span no distance.
func paddedRange(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return -1, 1
	}

	lo, hi = floats.Min(vs), floats.Max(vs)
	span := hi - lo
	if span == 0 {
		return lo - 1, hi + 1
	}

	pad := span * 0.05
	return lo - pad, hi + pad
}
