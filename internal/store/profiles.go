package store

import (
	"context"

	"gorm.io/gorm"

	"nutrivision-go/internal/models"
)

type Profiles struct {
	db *gorm.DB
}

func NewProfiles(db *gorm.DB) *Profiles {
	return &Profiles{db: db}
}

func (s *Profiles) Create(ctx context.Context, p *models.Profile) error {
	return translate(s.db.WithContext(ctx).Create(p).Error, "create profile")
}

func (s *Profiles) Latest(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&p).Error
	if err != nil {
		return nil, translate(err, "latest profile")
	}
	return &p, nil
}

// History returns every submission, oldest first.
func (s *Profiles) History(ctx context.Context, userID uint) ([]models.Profile, error) {
	var rows []models.Profile
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at asc, id asc").
		Find(&rows).Error
	return rows, translate(err, "profile history")
}
