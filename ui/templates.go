package ui

import (
	"bytes"
	"html/template"
	"math"
	"net/http"
	"strings"

	"goeda/domain/dataset"
	apperrors "goeda/internal/errors"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int { return a + b },
		// stat renders an optional statistic the way a dataframe does.
		"stat": func(v *float64) string {
			if v == nil {
				return "NaN"
			}
			return dataset.FormatFloat(*v)
		},
		"round4": func(f float64) string {
			return dataset.FormatFloat(math.Round(f*1e4) / 1e4)
		},
		"markdown": renderMarkdown,
		"join":     strings.Join,
		"has": func(list []string, s string) bool {
			for _, v := range list {
				if v == s {
					return true
				}
			}
			return false
		},
	}
}

// renderMarkdown converts trusted page copy to HTML.
func renderMarkdown(src string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(dedent(src)), p, renderer))
}

// dedent strips the common leading whitespace of src's lines so indented
// string literals are not read as code blocks.
func dedent(src string) string {
	lines := strings.Split(strings.Trim(src, "\n"), "\n")
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent <= 0 {
		return strings.Join(lines, "\n")
	}
	for i, l := range lines {
		if len(l) >= indent {
			lines[i] = l[indent:]
		}
	}
	return strings.Join(lines, "\n")
}

// renderTemplate executes a template into a buffer first so a failure never
// leaves a half written page.
func (s *Server) renderTemplate(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error().Err(err).Str("template", name).Msg("template rendering failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "code": apperrors.CodeInternalError})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn().Err(err).Str("template", name).Msg("error writing template response")
	}
}
