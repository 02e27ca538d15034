package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyj289/3d-geojson-viewer/internal/geo"
	"github.com/lyj289/3d-geojson-viewer/internal/scene"
)

func sampleSeries() []scene.Series {
	return []scene.Series{
		{Kind: scene.KindLine, Name: "walk", Data: []geo.Position{{0, 0, 0}, {1e6, 2e6, 300}, {2e6, 1e6, 100}}},
		{Kind: scene.KindScatter, Data: []geo.Position{}},
		{Kind: scene.KindScatter, Data: []geo.Position{{5e5, 5e5, 50}}},
	}
}

func TestRenderPNG(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Render(&buf, sampleSeries(), Options{View: scene.ViewXZ, Format: FormatPNG, Width: 320, Height: 200})
	require.NoError(t, err)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())
}

func TestRenderWebP(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Render(&buf, sampleSeries(), Options{Format: FormatWebP, Width: 64, Height: 64})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("RIFF")))
}

func TestRenderEmptyScene(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, nil, Options{Width: 50, Height: 50}))
	assert.NotZero(t, buf.Len())
}

func TestRenderRejectsBadSize(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	assert.Error(t, Render(&buf, nil, Options{Width: 0, Height: 10}))
}

func TestPlane(t *testing.T) {
	t.Parallel()

	h, v, _, _ := Plane(scene.ViewDefault)
	assert.Equal(t, []int{0, 1}, []int{h, v})
	h, v, _, _ = Plane(scene.ViewXZ)
	assert.Equal(t, []int{0, 2}, []int{h, v})
	h, v, hl, vl := Plane(scene.ViewYZ)
	assert.Equal(t, []int{1, 2}, []int{h, v})
	assert.Equal(t, "y", hl)
	assert.Equal(t, "z", vl)
}

func TestPaddedRange(t *testing.T) {
	t.Parallel()

	lo, hi := paddedRange(nil)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 1.0, hi)

	lo, hi = paddedRange([]float64{3, 3})
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 4.0, hi)

	lo, hi = paddedRange([]float64{0, 10})
	assert.InDelta(t, -0.5, lo, 1e-9)
	assert.InDelta(t, 10.5, hi, 1e-9)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("WEBP")
	require.NoError(t, err)
	assert.Equal(t, "image/webp", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
