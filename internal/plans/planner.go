package plans

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"nutrivision-go/internal/ai"
	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/metrics"
	"nutrivision-go/internal/models"
	"nutrivision-go/internal/profiles"
)

// DefaultFreshness is how long a workout plan is served without regeneration.
const DefaultFreshness = 14 * 24 * time.Hour

type ProfileSource interface {
	Latest(ctx context.Context, userID uint) (*models.Profile, error)
}

type FeedbackSource interface {
	Latest(ctx context.Context, userID uint) (*models.DietFeedback, error)
}

type DietRepository interface {
	Create(ctx context.Context, p *models.DietPlan) error
	FindByFingerprint(ctx context.Context, userID uint, fingerprint string) (*models.DietPlan, error)
	Latest(ctx context.Context, userID uint) (*models.DietPlan, error)
	List(ctx context.Context, userID uint) ([]models.DietPlan, error)
}

type WorkoutRepository interface {
	Create(ctx context.Context, p *models.WorkoutPlan) error
	Latest(ctx context.Context, userID uint) (*models.WorkoutPlan, error)
	List(ctx context.Context, userID uint) ([]models.WorkoutPlan, error)
}

type Completer interface {
	Complete(ctx context.Context, r ai.Request) (string, error)
}

// Result is a plan served to the user, either reused or freshly generated.
type Result struct {
	Plan        string    `json:"plan"`
	Cached      bool      `json:"cached"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Planner struct {
	profiles  ProfileSource
	feedback  FeedbackSource
	diets     DietRepository
	workouts  WorkoutRepository
	ai        Completer
	model     string
	freshness time.Duration
	metrics   *metrics.Metrics
	log       *logrus.Logger
	now       func() time.Time
	flights   singleflight.Group
}

type Options struct {
	Model     string
	Freshness time.Duration
	Metrics   *metrics.Metrics
}

func NewPlanner(
	profileSrc ProfileSource,
	feedbackSrc FeedbackSource,
	diets DietRepository,
	workouts WorkoutRepository,
	completer Completer,
	log *logrus.Logger,
	opts Options,
) *Planner {
	if opts.Freshness <= 0 {
		opts.Freshness = DefaultFreshness
	}
	return &Planner{
		profiles:  profileSrc,
		feedback:  feedbackSrc,
		diets:     diets,
		workouts:  workouts,
		ai:        completer,
		model:     opts.Model,
		freshness: opts.Freshness,
		metrics:   opts.Metrics,
		log:       log,
		now:       time.Now,
	}
}

// currentProfile returns the latest profile if its BMI is plausible.
func (p *Planner) currentProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	prof, err := p.profiles.Latest(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, errors.Wrap(apperr.ErrProfileIncomplete, "no profile data found, please fill out your profile first")
	}
	if err != nil {
		return nil, err
	}
	if prof.BMI < profiles.MinPlausibleBMI || math.IsInf(prof.BMI, 0) || math.IsNaN(prof.BMI) {
		return nil, errors.Wrap(apperr.ErrProfileIncomplete, "BMI value is too low or missing, please update your profile with valid height and weight")
	}
	return prof, nil
}

// GetOrGenerateDietPlan serves the stored plan for the same profile and
// answers, or generates and appends a new one. A stored plan is reused as
// is, however old it is.
func (p *Planner) GetOrGenerateDietPlan(ctx context.Context, userID uint, survey DietSurvey, force bool) (*Result, error) {
	survey = survey.normalize()
	if err := dietSchema.Validate(survey); err != nil {
		return nil, err
	}
	prof, err := p.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	fp, err := DietFingerprint(prof, survey)
	if err != nil {
		return nil, err
	}

	if !force {
		existing, err := p.diets.FindByFingerprint(ctx, userID, fp)
		switch {
		case err == nil:
			p.metrics.PlanCache(KindDiet, true)
			return &Result{Plan: existing.PlanText, Cached: true, Fingerprint: fp, CreatedAt: existing.CreatedAt}, nil
		case !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
		p.metrics.PlanCache(KindDiet, false)
	}

	key := fmt.Sprintf("diet:%d:%s", userID, fp)
	v, err, _ := p.flights.Do(key, func() (interface{}, error) {
		return p.generateDiet(ctx, userID, prof, survey, fp)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (p *Planner) generateDiet(ctx context.Context, userID uint, prof *models.Profile, survey DietSurvey, fp string) (*Result, error) {
	fb, err := p.feedback.Latest(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	prompt, err := buildDietPrompt(prof, survey, fb)
	if err != nil {
		return nil, errors.Wrap(err, "build diet prompt")
	}
	text, err := p.complete(ctx, KindDiet, ai.Request{
		Model:       p.model,
		System:      dietSystemPrompt,
		User:        []ai.Part{ai.Text(prompt)},
		Temperature: ptr(dietTemperature),
		MaxTokens:   dietMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	row := &models.DietPlan{
		UserID:           userID,
		Fingerprint:      fp,
		PlanText:         text,
		DietType:         survey.DietType,
		Allergens:        survey.Allergens,
		OtherAllergy:     survey.OtherAllergy,
		HealthConditions: survey.HealthConditions,
		Supplements:      survey.Supplements,
		CreatedAt:        p.now(),
	}
	if err := p.diets.Create(ctx, row); err != nil {
		return nil, err
	}
	p.log.WithFields(logrus.Fields{"user_id": userID, "fingerprint": fp}).Info("diet plan generated")
	return &Result{Plan: text, Fingerprint: fp, CreatedAt: row.CreatedAt}, nil
}

// GetOrGenerateWorkoutPlan serves the most recent workout plan while it is
// younger than the freshness window, whatever preferences it was built
// from. Otherwise, or when forced, it generates and appends a new one.
func (p *Planner) GetOrGenerateWorkoutPlan(ctx context.Context, userID uint, survey WorkoutSurvey, force bool) (*Result, error) {
	survey = survey.normalize()
	if err := workoutSchema.Validate(survey); err != nil {
		return nil, err
	}
	prof, err := p.currentProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !force {
		existing, err := p.workouts.Latest(ctx, userID)
		switch {
		case err == nil && p.now().Sub(existing.CreatedAt) < p.freshness:
			p.metrics.PlanCache(KindWorkout, true)
			return &Result{Plan: existing.PlanText, Cached: true, CreatedAt: existing.CreatedAt}, nil
		case err != nil && !errors.Is(err, apperr.ErrNotFound):
			return nil, err
		}
		p.metrics.PlanCache(KindWorkout, false)
	}

	key := fmt.Sprintf("workout:%d", userID)
	v, err, _ := p.flights.Do(key, func() (interface{}, error) {
		return p.generateWorkout(ctx, userID, prof, survey)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Result), nil
}

func (p *Planner) generateWorkout(ctx context.Context, userID uint, prof *models.Profile, survey WorkoutSurvey) (*Result, error) {
	prompt, err := buildWorkoutPrompt(prof, survey)
	if err != nil {
		return nil, errors.Wrap(err, "build workout prompt")
	}
	text, err := p.complete(ctx, KindWorkout, ai.Request{
		Model:       p.model,
		System:      workoutSystemPrompt,
		User:        []ai.Part{ai.Text(prompt)},
		Temperature: ptr(workoutTemperature),
		MaxTokens:   workoutMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	row := &models.WorkoutPlan{
		UserID:          userID,
		PlanText:        text,
		WorkoutTimePref: survey.TimePref,
		DurationPref:    survey.DurationPref,
		Injuries:        survey.Injuries,
		Equipment:       survey.Equipment,
		CreatedAt:       p.now(),
	}
	if err := p.workouts.Create(ctx, row); err != nil {
		return nil, err
	}
	p.log.WithField("user_id", userID).Info("workout plan generated")
	return &Result{Plan: text, CreatedAt: row.CreatedAt}, nil
}

func (p *Planner) complete(ctx context.Context, kind string, r ai.Request) (string, error) {
	start := time.Now()
	text, err := p.ai.Complete(ctx, r)
	p.metrics.ObserveAI(kind+"_plan", err, time.Since(start))
	if err != nil {
		return "", errors.Wrapf(err, "generate %s plan", kind)
	}
	return text, nil
}

func ptr[T any](v T) *T { return &v }
