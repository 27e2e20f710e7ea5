package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"nutrivision-go/internal/ai"
	"nutrivision-go/internal/apperr"
)

var errorClasses = []struct {
	err    error
	status int
	code   string
}{
	{apperr.ErrDuplicateIdentity, http.StatusConflict, "duplicate_identity"},
	{apperr.ErrInvalidToken, http.StatusBadRequest, "invalid_token"},
	{apperr.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperr.ErrProfileIncomplete, http.StatusUnprocessableEntity, "profile_incomplete"},
	{apperr.ErrInvalidFormat, http.StatusUnprocessableEntity, "invalid_image"},
	{apperr.ErrTooLowResolution, http.StatusUnprocessableEntity, "image_resolution_too_low"},
	{apperr.ErrTooLarge, http.StatusRequestEntityTooLarge, "file_too_large"},
	{apperr.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{apperr.ErrSessionExpired, http.StatusUnauthorized, "session_expired"},
	{ai.ErrUnavailable, http.StatusServiceUnavailable, "ai_unavailable"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// fail writes the response for err. Unclassified errors are logged and
// reported without detail.
func (s *Server) fail(c *gin.Context, err error) {
	if ve, ok := apperr.IsValidation(err); ok {
		body := gin.H{"error": "validation_failed", "field": ve.Field, "message": ve.Reason}
		if len(ve.Details) > 0 {
			body["details"] = ve.Details
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}
	for _, class := range errorClasses {
		if errors.Is(err, class.err) {
			c.JSON(class.status, gin.H{"error": class.code, "message": err.Error()})
			return
		}
	}

	s.Log.WithError(err).WithField("path", c.Request.URL.Path).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "message": msg})
}
