package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"datetime": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("Jan 2, 2006 15:04")
	},
}

// Templates parses the embedded page templates. Each page is addressed by its file name.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

// Static serves the embedded scripts under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
