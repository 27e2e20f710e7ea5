// Package feedback records how users rated the diet plan they were given.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

// Compliance answers offered with each rating.
var Compliance = []string{"Yes", "Partially", "No"}

const (
	MinRating = 1
	MaxRating = 5
)

type Repository interface {
	Create(ctx context.Context, f *models.DietFeedback) error
	Latest(ctx context.Context, userID uint) (*models.DietFeedback, error)
}

type PlanSource interface {
	Latest(ctx context.Context, userID uint) (*models.DietPlan, error)
}

// Input is a rating submitted against a plan text.
type Input struct {
	PlanText   string `json:"plan"`
	Rating     int    `json:"rating"`
	Compliance string `json:"compliance"`
	Comment    string `json:"feedback"`
}

type Service struct {
	feedback Repository
	plans    PlanSource
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(feedback Repository, plans PlanSource, log *logrus.Logger) *Service {
	return &Service{feedback: feedback, plans: plans, log: log, now: time.Now}
}

// CurrentPlan returns the diet plan a user would be rating.
func (s *Service) CurrentPlan(ctx context.Context, userID uint) (*models.DietPlan, error) {
	p, err := s.plans.Latest(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, errors.Wrap(apperr.ErrNotFound, "no diet plan found, generate one first")
	}
	return p, err
}

// Record appends a rating. Ratings are never edited.
func (s *Service) Record(ctx context.Context, userID uint, in Input) (*models.DietFeedback, error) {
	if in.Rating < MinRating || in.Rating > MaxRating {
		return nil, apperr.Invalid("rating", "must be between 1 and 5")
	}
	in.Compliance = strings.TrimSpace(in.Compliance)
	if !contains(Compliance, in.Compliance) {
		return nil, apperr.Invalid("compliance", "must be one of Yes, Partially, No")
	}

	row := &models.DietFeedback{
		UserID:     userID,
		PlanText:   in.PlanText,
		Rating:     in.Rating,
		Compliance: in.Compliance,
		Feedback:   strings.TrimSpace(in.Comment),
		CreatedAt:  s.now(),
	}
	if err := s.feedback.Create(ctx, row); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "rating": in.Rating}).Info("diet feedback recorded")
	return row, nil
}

// Latest returns the most recent rating, or apperr.ErrNotFound.
func (s *Service) Latest(ctx context.Context, userID uint) (*models.DietFeedback, error) {
	return s.feedback.Latest(ctx, userID)
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
