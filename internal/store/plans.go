package store

import (
	"context"

	"gorm.io/gorm"

	"nutrivision-go/internal/models"
)

type DietPlans struct {
	db *gorm.DB
}

func NewDietPlans(db *gorm.DB) *DietPlans {
	return &DietPlans{db: db}
}

func (s *DietPlans) Create(ctx context.Context, p *models.DietPlan) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create diet plan")
}

// FindByFingerprint returns the newest plan stored under the fingerprint.
func (s *DietPlans) FindByFingerprint(ctx context.Context, userID uint, fingerprint string) (*models.DietPlan, error) {
	var p models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND profile_fingerprint = ?", userID, fingerprint).
		Order("created_at desc, id desc").
		First(&p).Error
	if err != nil {
		return nil, translate(err, "find diet plan by fingerprint")
	}
	return &p, nil
}

func (s *DietPlans) Latest(ctx context.Context, userID uint) (*models.DietPlan, error) {
	var p models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&p).Error
	if err != nil {
		return nil, translate(err, "latest diet plan")
	}
	return &p, nil
}

// List returns every plan, newest first.
func (s *DietPlans) List(ctx context.Context, userID uint) ([]models.DietPlan, error) {
	var rows []models.DietPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&rows).Error
	return rows, translate(err, "list diet plans")
}

type WorkoutPlans struct {
	db *gorm.DB
}

func NewWorkoutPlans(db *gorm.DB) *WorkoutPlans {
	return &WorkoutPlans{db: db}
}

func (s *WorkoutPlans) Create(ctx context.Context, p *models.WorkoutPlan) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create workout plan")
}

func (s *WorkoutPlans) Latest(ctx context.Context, userID uint) (*models.WorkoutPlan, error) {
	var p models.WorkoutPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&p).Error
	if err != nil {
		return nil, translate(err, "latest workout plan")
	}
	return &p, nil
}

func (s *WorkoutPlans) List(ctx context.Context, userID uint) ([]models.WorkoutPlan, error) {
	var rows []models.WorkoutPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&rows).Error
	return rows, translate(err, "list workout plans")
}
