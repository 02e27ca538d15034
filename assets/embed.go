// Package assets embeds the viewer page sources.
package assets

import _ "embed"

// IndexTemplate is the page skeleton, rendered with text/template.
//
//go:embed index.html.tpl
var IndexTemplate string

// Style is the page stylesheet.
//
//go:embed style.css
var Style string

// Script wires the page DOM to the viewer API.
//
//go:embed script.js
var Script string
