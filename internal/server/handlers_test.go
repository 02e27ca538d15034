package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyj289/3d-geojson-viewer/internal/config"
	"github.com/lyj289/3d-geojson-viewer/internal/viewer"
)

const exampleDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{"name":"example"},"geometry":{"type":"LineString","coordinates":[[0,0,0],[0.001,0.002,3]]}}
]}`

const pointDoc = `{"type":"FeatureCollection","features":[
  {"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[10,20,5]}}
]}`

type stateResponse struct {
	Option struct {
		Grid3D struct {
			ViewControl struct {
				Alpha *float64 `json:"alpha"`
			} `json:"viewControl"`
		} `json:"grid3D"`
		Series []struct {
			Type string `json:"type"`
		} `json:"series"`
	} `json:"option"`
	Text     string `json:"text"`
	Download string `json:"download"`
	Class    string `json:"class"`
	View     string `json:"view"`
	Valid    bool   `json:"valid"`
	Panel    bool   `json:"panel"`
}

type testClient struct {
	t    *testing.T
	http *http.Client
	base string
}

func newTestServer(t *testing.T, example string) *testClient {
	t.Helper()

	cfg := config.Default()
	cfg.Preview = config.Preview{Width: 120, Height: 90}
	srv := httptest.NewServer(NewServerContext(cfg, []byte("<html>viewer</html>"), example).Routes())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := srv.Client()
	client.Jar = jar

	return &testClient{t: t, http: client, base: srv.URL}
}

func (c *testClient) do(method, path, contentType string, body io.Reader) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, body)
	require.NoError(c.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (c *testClient) state(method, path, contentType string, body io.Reader) stateResponse {
	c.t.Helper()
	resp := c.do(method, path, contentType, body)
	require.Equal(c.t, http.StatusOK, resp.StatusCode)

	var st stateResponse
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&st))
	return st
}

func TestHandleIndex(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	resp := c.do(http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "<html>viewer</html>", string(body))

	req, _ := http.NewRequest(http.MethodGet, c.base+"/", nil)
	req.Header.Set("If-None-Match", resp.Header.Get("ETag"))
	cached, err := c.http.Do(req)
	require.NoError(t, err)
	_ = cached.Body.Close()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)

	assert.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/nope", "", nil).StatusCode)
	assert.Equal(t, http.StatusNoContent, c.do(http.MethodGet, "/favicon.ico", "", nil).StatusCode)
}

func TestStateStartsWithExample(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, exampleDoc)

	st := c.state(http.MethodGet, "/api/state", "", nil)
	assert.True(t, st.Valid)
	assert.Equal(t, exampleDoc, st.Text)
	require.Len(t, st.Option.Series, 2)
	assert.Equal(t, "line3D", st.Option.Series[0].Type)
	assert.Equal(t, "scatter3D", st.Option.Series[1].Type)
}

func TestEditFlow(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	st := c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(pointDoc))
	assert.True(t, st.Valid)
	require.Len(t, st.Option.Series, 1)

	st = c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(`{"broken"`))
	assert.False(t, st.Valid)
	assert.Equal(t, viewer.ClassInvalid, st.Class)
	// the previous scene stays
	assert.Len(t, st.Option.Series, 1)

	decoded, err := viewer.DecodeDownloadLink(st.Download)
	require.NoError(t, err)
	assert.Equal(t, `{"broken"`, decoded)

	st = c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(""))
	assert.True(t, st.Valid)

	resp := c.do(http.MethodGet, "/api/edit", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestDropMultipartAndText(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "point.geojson")
	require.NoError(t, err)
	_, err = io.WriteString(fw, pointDoc)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	st := c.state(http.MethodPost, "/api/drop", mw.FormDataContentType(), &body)
	assert.True(t, st.Valid)
	assert.Equal(t, pointDoc, st.Text)
	assert.False(t, st.Panel)

	typed := newTestServer(t, "").state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(pointDoc))
	assert.Equal(t, typed.Option, st.Option)

	st = c.state(http.MethodPost, "/api/drop", "text/plain", strings.NewReader(exampleDoc))
	assert.Equal(t, exampleDoc, st.Text)
	assert.Len(t, st.Option.Series, 2)
}

func TestDragAndView(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, exampleDoc)

	st := c.state(http.MethodPost, "/api/drag", "application/json", strings.NewReader(`{"zone":"map","event":"dragenter"}`))
	assert.True(t, st.Panel)
	st = c.state(http.MethodPost, "/api/drag", "application/json", strings.NewReader(`{"zone":"overlay","event":"dragleave"}`))
	assert.False(t, st.Panel)

	resp := c.do(http.MethodPost, "/api/drag", "application/json", strings.NewReader(`{"zone":"map","event":"click"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st = c.state(http.MethodPost, "/api/view", "application/json", strings.NewReader(`{"view":"xy"}`))
	assert.Equal(t, "xy", st.View)
	require.NotNil(t, st.Option.Grid3D.ViewControl.Alpha)
	assert.Equal(t, 90.0, *st.Option.Grid3D.ViewControl.Alpha)

	resp = c.do(http.MethodPost, "/api/view", "application/json", strings.NewReader(`{"view":"diagonal"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownload(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, exampleDoc)

	resp := c.do(http.MethodGet, "/api/download", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "geojson.json")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, exampleDoc, string(body))
}

func TestPreviewAndReport(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, exampleDoc)

	resp := c.do(http.MethodGet, "/api/preview.png?view=xz&width=64", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())

	resp = c.do(http.MethodGet, "/api/preview.png?view=diagonal", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodGet, "/api/report", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "example")
}

func TestEditOverflowKeepsSessionReadable(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	overflow := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0,0],[1,1,1e307]]}}]}`

	c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(pointDoc))
	st := c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(overflow))
	assert.False(t, st.Valid)
	assert.Len(t, st.Option.Series, 1)

	st = c.state(http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, overflow, st.Text)
	assert.Len(t, st.Option.Series, 1)

	resp := c.do(http.MethodPost, "/api/transform", "application/geo+json", strings.NewReader(overflow))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]any{"bad": make(chan int)})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"failed to encode response"}`, rec.Body.String())
}

func TestTransform(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	resp := c.do(http.MethodPost, "/api/transform?view=yz", "application/geo+json", strings.NewReader(pointDoc))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var opt struct {
		Series []struct {
			Data [][3]float64 `json:"data"`
		} `json:"series"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&opt))
	require.Len(t, opt.Series, 1)
	assert.Equal(t, [][3]float64{{0, 0, 0}}, opt.Series[0].Data)

	resp = c.do(http.MethodPost, "/api/transform", "application/geo+json", strings.NewReader(`{"features":[]}`))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = c.do(http.MethodPost, "/api/transform?view=up", "application/geo+json", strings.NewReader(pointDoc))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	c := newTestServer(t, "")

	c.state(http.MethodPost, "/api/edit", "text/plain", strings.NewReader(pointDoc))
	resp := c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "geoviewer_transforms_total")
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/api/edit", routeLabel("/api/edit"))
	assert.Equal(t, "other", routeLabel("/api/whatever"))
}
