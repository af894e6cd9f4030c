package api

import (
	"embed"
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matprat/matprat/backend/internal/middleware"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"join":       strings.Join,
	"add":        func(a, b int) int { return a + b },
	"amount": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"contains": func(list []string, s string) bool {
		for _, v := range list {
			if v == s {
				return true
			}
		}
		return false
	},
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
}

// page fills the keys every template's header expects.
func page(c *gin.Context, title, active string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["ActivePage"] = active
	data["Username"] = ""
	if claims, ok := middleware.CurrentUser(c); ok {
		data["Username"] = claims.Username
	}
	return data
}
