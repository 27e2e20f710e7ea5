package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/plans"
)

type dietPlanRequest struct {
	plans.DietSurvey
	ForceRegenerate bool `json:"force_regenerate"`
}

type workoutPlanRequest struct {
	plans.WorkoutSurvey
	ForceRegenerate bool `json:"force_regenerate"`
}

// withTimeout bounds a collaborator-backed request.
func (s *Server) withTimeout(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.Config.RequestTimeout())
}

func planPayload(r *plans.Result) gin.H {
	return gin.H{
		"plan":        r.Plan,
		"cached":      r.Cached,
		"fingerprint": r.Fingerprint,
		"created_at":  r.CreatedAt,
		"filename":    plans.ExportFilename(plans.KindDiet, 0),
	}
}

// POST /v1/diet-plan
func (s *Server) dietPlan(c *gin.Context) {
	var req dietPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx, cancel := s.withTimeout(c)
	defer cancel()

	res, err := s.Planner.GetOrGenerateDietPlan(ctx, userID(c), req.DietSurvey, req.ForceRegenerate)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respondText(c, http.StatusOK, res.Plan, planPayload(res))
}

// POST /v1/workout-plan
func (s *Server) workoutPlan(c *gin.Context) {
	var req workoutPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx, cancel := s.withTimeout(c)
	defer cancel()

	res, err := s.Planner.GetOrGenerateWorkoutPlan(ctx, userID(c), req.WorkoutSurvey, req.ForceRegenerate)
	if err != nil {
		s.fail(c, err)
		return
	}
	payload := planPayload(res)
	delete(payload, "fingerprint")
	payload["filename"] = plans.ExportFilename(plans.KindWorkout, 0)
	s.respondText(c, http.StatusOK, res.Plan, payload)
}

// GET /v1/diet-plans, GET /v1/workout-plans
func (s *Server) listPlans(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := s.Planner.History(c.Request.Context(), userID(c), kind)
		if err != nil {
			s.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plans": entries})
	}
}

// GET /v1/diet-plans/:index/download, GET /v1/workout-plans/:index/download
func (s *Server) downloadPastPlan(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		index, err := strconv.Atoi(c.Param("index"))
		if err != nil || index < 1 {
			badRequest(c, "index must be a positive integer")
			return
		}
		entry, err := s.Planner.PastPlan(c.Request.Context(), userID(c), kind, index)
		if err != nil {
			s.fail(c, err)
			return
		}
		attachment(c, entry.Filename, "text/plain; charset=utf-8", []byte(entry.Plan))
	}
}

// GET /v1/plans/current/:kind/download
func (s *Server) downloadCurrentPlan(c *gin.Context) {
	kind := c.Param("kind")
	if !plans.ValidKind(kind) {
		s.fail(c, errors.Wrapf(apperr.ErrNotFound, "unknown plan kind %q", kind))
		return
	}
	entry, err := s.Planner.CurrentPlan(c.Request.Context(), userID(c), kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	attachment(c, entry.Filename, "text/plain; charset=utf-8", []byte(entry.Plan))
}
