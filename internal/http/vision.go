package http

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrivision-go/internal/apperr"
)

// readImage buffers the multipart "image" field, refusing anything over
// the upload limit.
func (s *Server) readImage(c *gin.Context) ([]byte, bool) {
	limit := s.Config.MaxUploadBytes()
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		badRequest(c, "image file is required")
		return nil, false
	}
	defer file.Close()
	if header.Size > limit {
		s.fail(c, apperr.ErrTooLarge)
		return nil, false
	}
	raw, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		badRequest(c, "failed to read file")
		return nil, false
	}
	if int64(len(raw)) > limit {
		s.fail(c, apperr.ErrTooLarge)
		return nil, false
	}
	return raw, true
}

func (s *Server) analyze(c *gin.Context, run func(ctx context.Context, raw []byte) (string, error)) {
	raw, ok := s.readImage(c)
	if !ok {
		return
	}
	ctx, cancel := s.withTimeout(c)
	defer cancel()

	out, err := run(ctx, raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondText(c, http.StatusOK, out, gin.H{"result": out})
}

// POST /v1/vision/freshness
func (s *Server) visionFreshness(c *gin.Context) {
	s.analyze(c, s.Vision.CheckFreshness)
}

// POST /v1/vision/dish
func (s *Server) visionDish(c *gin.Context) {
	s.analyze(c, s.Vision.IdentifyDish)
}
