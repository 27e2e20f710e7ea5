// Package dashboard summarises a user's profile history and plan activity.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

type ProfileHistory interface {
	History(ctx context.Context, userID uint) ([]models.Profile, error)
}

type DietPlans interface {
	List(ctx context.Context, userID uint) ([]models.DietPlan, error)
}

type WorkoutPlans interface {
	List(ctx context.Context, userID uint) ([]models.WorkoutPlan, error)
}

type BMIPoint struct {
	Date time.Time `json:"date"`
	BMI  float64   `json:"bmi"`
}

type ActivityCount struct {
	Level string `json:"activity_level"`
	Count int    `json:"count"`
}

type Summary struct {
	Latest                *models.Profile `json:"latest_profile"`
	BMITrend              []BMIPoint      `json:"bmi_trend"`
	ActivityDistribution  []ActivityCount `json:"activity_distribution"`
	DietPlansGenerated    int             `json:"diet_plans_generated"`
	WorkoutPlansGenerated int             `json:"workout_plans_generated"`
}

type Service struct {
	profiles ProfileHistory
	diets    DietPlans
	workouts WorkoutPlans
}

func NewService(profiles ProfileHistory, diets DietPlans, workouts WorkoutPlans) *Service {
	return &Service{profiles: profiles, diets: diets, workouts: workouts}
}

type data struct {
	history  []models.Profile
	diets    []models.DietPlan
	workouts []models.WorkoutPlan
}

func (s *Service) load(ctx context.Context, userID uint) (*data, error) {
	history, err := s.profiles.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, errors.Wrap(apperr.ErrNotFound, "no profile data available, please fill out your profile")
	}
	diets, err := s.diets.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	workouts, err := s.workouts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &data{history: history, diets: diets, workouts: workouts}, nil
}

// Summary builds the dashboard view. History is expected oldest first.
func (s *Service) Summary(ctx context.Context, userID uint) (*Summary, error) {
	d, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest := d.history[len(d.history)-1]
	out := &Summary{
		Latest:                &latest,
		BMITrend:              []BMIPoint{},
		DietPlansGenerated:    len(d.diets),
		WorkoutPlansGenerated: len(d.workouts),
	}

	counts := map[string]int{}
	for _, p := range d.history {
		if p.BMI > 0 {
			out.BMITrend = append(out.BMITrend, BMIPoint{Date: p.CreatedAt, BMI: p.BMI})
		}
		counts[p.ActivityLevel]++
	}
	for level, n := range counts {
		out.ActivityDistribution = append(out.ActivityDistribution, ActivityCount{Level: level, Count: n})
	}
	sort.Slice(out.ActivityDistribution, func(i, j int) bool {
		return out.ActivityDistribution[i].Level < out.ActivityDistribution[j].Level
	})
	return out, nil
}
