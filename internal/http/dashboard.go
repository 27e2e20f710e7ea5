package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrivision-go/internal/dashboard"
	"nutrivision-go/internal/profiles"
)

// GET /v1/dashboard
func (s *Server) getDashboard(c *gin.Context) {
	sum, err := s.Dashboard.Summary(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":      sum,
		"bmi_category": profiles.BMICategory(sum.Latest.BMI),
	})
}

// GET /v1/dashboard/export
func (s *Server) exportDashboard(c *gin.Context) {
	var buf bytes.Buffer
	if err := s.Dashboard.Export(c.Request.Context(), userID(c), &buf); err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, dashboard.ExportFilename, dashboard.ExportMIMEType, buf.Bytes())
}
