package http

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer turns generated plan markdown into HTML. Raw HTML in the
// model output is not passed through.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

func wantsHTML(c *gin.Context) bool {
	return c.Query("format") == "html"
}

// respondText writes AI-generated markdown either inside the JSON payload
// or, with ?format=html, as a rendered page.
func (s *Server) respondText(c *gin.Context, status int, text string, payload gin.H) {
	if !wantsHTML(c) {
		c.JSON(status, payload)
		return
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(text), &buf); err != nil {
		s.fail(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func attachment(c *gin.Context, filename, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}
