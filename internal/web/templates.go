package web

import (
	"embed"
	"html/template"
)

// templatesFS embeds the HTML templates for server-side rendering.
//
//go:embed templates/*.html
var templatesFS embed.FS

// Template names.
const (
	indexTemplate   = "index.html"
	confirmTemplate = "confirm_delete.html"
	errorTemplate   = "error.html"
)

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"selected": func(a, b string) bool { return a == b },
	}).ParseFS(templatesFS, "templates/*.html")
}
