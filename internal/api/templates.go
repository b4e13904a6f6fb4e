package api

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*
var templateFS embed.FS

type templates struct {
	tmpl *template.Template
}

// newTemplates parses the embedded HTML templates with custom functions.
func newTemplates() *templates {
	funcs := template.FuncMap{
		"riskHex": riskHex,
		"pct":     formatPct,
	}
	return &templates{
		tmpl: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

func (t *templates) render(w io.Writer, name string, data any) error {
	return t.tmpl.ExecuteTemplate(w, name, data)
}
