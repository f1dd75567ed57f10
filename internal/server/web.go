package server

import (
	"embed"
	"html/template"
)

//go:embed web/*.tmpl
var assets embed.FS

func indexTemplate() *template.Template {
	return template.Must(template.ParseFS(assets, "web/*.tmpl"))
}
