package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrivision-go/internal/feedback"
)

// GET /v1/feedback/plan
func (s *Server) feedbackPlan(c *gin.Context) {
	plan, err := s.Feedback.CurrentPlan(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondText(c, http.StatusOK, plan.PlanText, gin.H{
		"plan":       plan.PlanText,
		"created_at": plan.CreatedAt,
		"compliance": feedback.Compliance,
	})
}

// POST /v1/feedback
func (s *Server) recordFeedback(c *gin.Context) {
	var input struct {
		Rating     int    `json:"rating" binding:"required"`
		Compliance string `json:"compliance" binding:"required"`
		Feedback   string `json:"feedback"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	// Ratings always apply to the plan the user currently has.
	plan, err := s.Feedback.CurrentPlan(c.Request.Context(), userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	row, err := s.Feedback.Record(c.Request.Context(), userID(c), feedback.Input{
		PlanText:   plan.PlanText,
		Rating:     input.Rating,
		Compliance: input.Compliance,
		Comment:    input.Feedback,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"feedback": row,
		"message":  "Thanks for your feedback! Future plans will consider your input.",
	})
}
