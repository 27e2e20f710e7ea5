package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/profiles"
)

// GET /v1/profile
func (s *Server) getProfile(c *gin.Context) {
	latest, err := s.Profiles.Latest(c.Request.Context(), userID(c))
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		s.fail(c, err)
		return
	}

	resp := gin.H{"profile": latest, "defaults": profiles.Defaults(latest)}
	if latest != nil {
		resp["bmi_category"] = profiles.BMICategory(latest.BMI)
	}
	c.JSON(http.StatusOK, resp)
}

// POST /v1/profile
func (s *Server) saveProfile(c *gin.Context) {
	var survey profiles.Survey
	if err := c.ShouldBindJSON(&survey); err != nil {
		badRequest(c, err.Error())
		return
	}

	bmi, err := s.Profiles.SaveProfile(c.Request.Context(), userID(c), survey)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"bmi":          bmi,
		"bmi_category": profiles.BMICategory(bmi),
		"message":      "Profile saved successfully!",
	})
}
