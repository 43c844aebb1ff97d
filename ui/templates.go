package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"f3":   func(v float64) string { return fmt.Sprintf("%.3f", v) },
		"f2":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"join": strings.Join,
		"add":  func(a, b int) int { return a + b },
	}
	return template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
}

// renderTemplate executes a template into a buffer first so a failure never sends a
// half-written page
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("template error for %s: %v", name, err)
		c.String(http.StatusInternalServerError, "Template rendering failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
