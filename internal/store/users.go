package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"nutrivision-go/internal/apperr"
	"nutrivision-go/internal/models"
)

type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

func (s *Users) Create(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error, "create user")
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err, "find user by email")
	}
	return &user, nil
}

func (s *Users) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, translate(err, "find user by username")
	}
	return &user, nil
}

// FindByIdentifier matches either the username or the email column.
func (s *Users) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "find user by identifier")
	}
	return &user, nil
}

func (s *Users) SetResetToken(ctx context.Context, userID uint, token string) error {
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("reset_token", token).Error
	return translate(err, "set reset token")
}

// ResetPassword replaces the hash and clears the reset token in one
// statement, provided the token is still the pending one. A token that was
// already consumed yields apperr.ErrInvalidToken.
func (s *Users) ResetPassword(ctx context.Context, userID uint, token, passwordHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND reset_token = ?", userID, token).
		Updates(map[string]any{"password_hash": passwordHash, "reset_token": nil})
	if res.Error != nil {
		return translate(res.Error, "reset password")
	}
	if res.RowsAffected == 0 {
		return errors.WithStack(apperr.ErrInvalidToken)
	}
	return nil
}
