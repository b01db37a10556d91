package site

import (
	"embed"
	"html/template"
	"time"

	"github.com/decoambiente/decoambiente-backend/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

func FuncMap(locale string) template.FuncMap {
	return template.FuncMap{
		"price": func(v float64) string {
			return utils.FormatPrice(v, locale)
		},
		"truncate": utils.Truncate,
		"year": func() int {
			return time.Now().Year()
		},
	}
}

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates(locale string) (*template.Template, error) {
	return template.New("site").Funcs(FuncMap(locale)).ParseFS(templateFS, "templates/*.html")
}
