package store

import (
	"context"

	"gorm.io/gorm"

	"nutrivision-go/internal/models"
)

type Feedback struct {
	db *gorm.DB
}

func NewFeedback(db *gorm.DB) *Feedback {
	return &Feedback{db: db}
}

func (s *Feedback) Create(ctx context.Context, f *models.DietFeedback) error {
	return translate(s.db.WithContext(ctx).Create(f).Error, "create feedback")
}

func (s *Feedback) Latest(ctx context.Context, userID uint) (*models.DietFeedback, error) {
	var f models.DietFeedback
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		First(&f).Error
	if err != nil {
		return nil, translate(err, "latest feedback")
	}
	return &f, nil
}
