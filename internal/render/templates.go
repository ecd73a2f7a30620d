package render

import (
	"database/sql"
	"embed"
	"html/template"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

// newTemplates parses the embedded HTML templates with custom functions.
func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"float": formatFloat,
	}
	return template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

var tmpl = newTemplates()

// formatFloat renders v with the given number of decimals, or -1 for the
// shortest exact form. NULL renders as "n/a".
func formatFloat(v sql.NullFloat64, decimals int) string {
	if !v.Valid {
		return "n/a"
	}
	return strconv.FormatFloat(v.Float64, 'f', decimals, 64)
}
