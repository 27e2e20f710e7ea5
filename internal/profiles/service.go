package profiles

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

type Repository interface {
	Create(ctx context.Context, p *models.Profile) error
	Latest(ctx context.Context, userID uint) (*models.Profile, error)
	History(ctx context.Context, userID uint) ([]models.Profile, error)
}

type Service struct {
	profiles Repository
	log      *logrus.Logger
	now      func() time.Time
}

func NewService(profiles Repository, log *logrus.Logger) *Service {
	return &Service{profiles: profiles, log: log, now: time.Now}
}

// SaveProfile validates the survey and appends a new history row. It
// returns the computed BMI.
func (s *Service) SaveProfile(ctx context.Context, userID uint, survey Survey) (float64, error) {
	survey = survey.normalize()
	if err := schema.Validate(survey); err != nil {
		return 0, err
	}
	if survey.Height <= 0 || survey.Weight <= 0 {
		return 0, apperr.Invalid("profile", "height and weight must be greater than 0")
	}

	bmi := BMI(survey.Height, survey.Weight)
	if math.IsInf(bmi, 0) || math.IsNaN(bmi) {
		return 0, apperr.Invalid("profile", "height and weight do not give a valid BMI")
	}

	p := &models.Profile{
		UserID:         userID,
		Name:           survey.Name,
		Gender:         survey.Gender,
		BodyType:       survey.BodyType,
		ActivityLevel:  survey.ActivityLevel,
		Height:         survey.Height,
		Weight:         survey.Weight,
		BMI:            bmi,
		Goal:           survey.Goal,
		WeightLossRate: survey.WeightLossRate,
		WorkoutType:    survey.WorkoutType,
		GymFocus:       survey.GymFocus,
		CreatedAt:      s.now(),
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "bmi": p.BMI}).Info("profile saved")
	return p.BMI, nil
}

// Latest returns the current profile or apperr.ErrNotFound.
func (s *Service) Latest(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.profiles.Latest(ctx, userID)
}

func (s *Service) History(ctx context.Context, userID uint) ([]models.Profile, error) {
	return s.profiles.History(ctx, userID)
}

// Defaults pre-fills the profile page from the latest submission, falling
// back to the first option for anything missing or no longer offered.
func Defaults(p *models.Profile) Survey {
	d := Survey{
		Gender:         Genders[0],
		BodyType:       BodyTypes[0],
		ActivityLevel:  ActivityLevels[0],
		Goal:           Goals[0],
		WeightLossRate: WeightLossRates[0],
		WorkoutType:    WorkoutTypes[0],
		GymFocus:       GymFocuses[0],
	}
	if p == nil {
		return d
	}

	d.Name = p.Name
	d.Height = p.Height
	d.Weight = p.Weight
	pick := func(dst *string, v string, options []string) {
		if slices.Contains(options, v) {
			*dst = v
		}
	}
	pick(&d.Gender, p.Gender, Genders)
	pick(&d.BodyType, p.BodyType, BodyTypes)
	pick(&d.ActivityLevel, p.ActivityLevel, ActivityLevels)
	pick(&d.Goal, p.Goal, Goals)
	pick(&d.WeightLossRate, p.WeightLossRate, WeightLossRates)
	pick(&d.WorkoutType, p.WorkoutType, WorkoutTypes)
	pick(&d.GymFocus, p.GymFocus, GymFocuses)
	return d
}
