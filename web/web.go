// Package web holds the embedded HTML templates.
package web

import "embed"

//go:embed templates/*.html
var TemplatesFS embed.FS
