// Package page assembles the minified viewer page from the embedded assets.
package page

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/lyj289/3d-geojson-viewer/assets"
)

// Data are the values substituted into the page template.
type Data struct {
	Title       string
	EchartsHost string
	// APIBase is a path prefix for API calls when the server sits behind a
	// reverse proxy; empty means the site root.
	APIBase string
}

type templateData struct {
	Data
	CSS string
	JS  string
}

// Build minifies the stylesheet and script, renders them into the page
// template and minifies the resulting HTML.
func Build(d Data) ([]byte, error) {
	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)
	m.AddFunc("text/javascript", js.Minify)

	cssMin, err := m.String("text/css", assets.Style)
	if err != nil {
		return nil, fmt.Errorf("minify CSS: %w", err)
	}

	jsMin, err := m.String("text/javascript", assets.Script)
	if err != nil {
		return nil, fmt.Errorf("minify JS: %w", err)
	}

	tmpl, err := template.New("index").Parse(assets.IndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Data: d, CSS: cssMin, JS: jsMin}); err != nil {
		return nil, fmt.Errorf("execute template: %w", err)
	}

	finalHTML, err := m.Bytes("text/html", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minify HTML: %w", err)
	}

	return finalHTML, nil
}
