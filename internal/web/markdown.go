package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in descriptions is not passed through (no html.WithUnsafe).
var markdownRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

func renderMarkdownHTML(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var b bytes.Buffer
	if err := markdownRenderer.Convert([]byte(src), &b); err != nil {
		return "<pre>" + template.HTMLEscapeString(src) + "</pre>"
	}
	return b.String()
}

// handleDescription serves a task's description rendered as an HTML fragment.
func (s *Server) handleDescription(c *gin.Context) {
	id := c.Param("id")
	tasks, err := s.backend.GetTasks(c)
	if err != nil {
		s.abortErr(c, err)
		return
	}
	for _, t := range tasks {
		if t.ID == id {
			c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(renderMarkdownHTML(t.Description)))
			return
		}
	}
	abortNotFound(c, "task", id)
}
